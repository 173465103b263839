package remote

import (
	"errors"
	"testing"

	"github.com/appetiteclub/apt"
)

func TestDecodeSuccessResponse(t *testing.T) {
	resp := &apt.SuccessResponse{Data: map[string]interface{}{
		"id":   "6f1c2a5e-3f3d-4d5e-9c1f-1b2a3c4d5e6f",
		"name": "Ada",
	}}

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeSuccessResponse(resp, &out); err != nil {
		t.Fatalf("decodeSuccessResponse() error = %v", err)
	}
	if out.Name != "Ada" || out.ID == "" {
		t.Errorf("decodeSuccessResponse() = %+v", out)
	}

	if err := decodeSuccessResponse(nil, &out); err == nil {
		t.Error("decodeSuccessResponse(nil) error = nil, want error")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "statusCode", err: errors.New("request failed with status 404"), want: true},
		{name: "message", err: errors.New("Customer Not Found"), want: true},
		{name: "other", err: errors.New("status 503"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
