package reservations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/seating/pkg"
)

// EventNotifier hands notifications to a message bus. Delivery to the
// customer (SMS, email) is done by whoever consumes the topic.
type EventNotifier struct {
	publisher events.Publisher
	topic     string
}

func NewEventNotifier(publisher events.Publisher, topic string) *EventNotifier {
	if topic == "" {
		topic = pkg.ReservationNotificationTopic
	}
	return &EventNotifier{publisher: publisher, topic: topic}
}

func (n *EventNotifier) Publish(ctx context.Context, notification Notification) error {
	if notification.EventType == "" {
		notification.EventType = pkg.EventReservationNotification
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("cannot marshal reservation notification: %w", err)
	}

	if err := n.publisher.Publish(ctx, n.topic, payload); err != nil {
		return fmt.Errorf("cannot publish reservation notification: %w", err)
	}
	return nil
}
