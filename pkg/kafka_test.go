package pkg

import (
	"reflect"
	"sort"
	"testing"
)

func TestSplitBrokers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "localhost:9092", want: []string{"localhost:9092"}},
		{name: "list", input: "k1:9092, k2:9092 ,k3:9092", want: []string{"k1:9092", "k2:9092", "k3:9092"}},
		{name: "blanks", input: " , ,", want: nil},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitBrokers(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitBrokers(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(" "); err == nil {
		t.Error("NewKafkaPublisher() error = nil, want missing brokers error")
	}
}

func TestHeaderCarrier(t *testing.T) {
	c := headerCarrier{}
	c.Set("traceparent", "00-abc-def-01")
	c.Set("tracestate", "vendor=1")

	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get() = %q", got)
	}

	keys := c.Keys()
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"traceparent", "tracestate"}) {
		t.Errorf("Keys() = %v", keys)
	}
}
