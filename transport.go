package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/seating/pkg"
)

const (
	notificationStream   = "RESERVATIONS"
	notificationConsumer = "seating-notifications"
)

// newNotificationPublisher picks the bus for reservation notifications from
// notify.transport. Plain NATS reuses natsPublisher.
func newNotificationPublisher(config *apt.Config, natsPublisher *pkg.NATSPublisher, logger apt.Logger) (events.Publisher, func() error, error) {
	transport := strings.ToLower(config.GetStringOrDef("notify.transport", "nats"))

	switch transport {
	case "nats":
		return natsPublisher, func() error { return nil }, nil

	case "jetstream":
		stream, err := pkg.NewNATSStream(pkg.NATSStreamConfig{
			URL:          config.GetStringOrDef("nats.url", "nats://localhost:4222"),
			StreamName:   notificationStream,
			Topic:        pkg.ReservationNotificationTopic,
			ConsumerName: notificationConsumer,
			MaxAge:       72 * time.Hour,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Reservation notifications on JetStream", "stream", notificationStream)
		return stream, stream.Close, nil

	case "kafka":
		publisher, err := pkg.NewKafkaPublisher(config.GetStringOrDef("kafka.brokers", "localhost:9092"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Reservation notifications on Kafka")
		return publisher, publisher.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown notify.transport %q", transport)
}
