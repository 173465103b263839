package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const LoyaltyEventReservationCompleted = "reservation completed"

type Customer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

// CustomerDirectory resolves customers. Missing customers are reported with
// an error wrapping ErrNotFound.
type CustomerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
}

type LoyaltyRuleEngine interface {
	CalculatePoints(ctx context.Context, customer *Customer, purchaseAmount float64, eventName string, partySize int) (int, error)
	ApplyPoints(ctx context.Context, customer *Customer, points int, eventType string) error
}

type NotificationAction string

const (
	NotifyCreated   NotificationAction = "created"
	NotifyConfirmed NotificationAction = "confirmed"
	NotifyUpdated   NotificationAction = "updated"
	NotifyCancelled NotificationAction = "cancelled"
)

// Notification is the payload handed to the Notifier. Rendering it into a
// message is the notifier's business.
type Notification struct {
	EventType      string             `json:"event_type"`
	Action         NotificationAction `json:"action"`
	ReservationID  string             `json:"reservation_id"`
	CustomerID     string             `json:"customer_id"`
	ContactName    string             `json:"contact_name,omitempty"`
	ContactPhone   string             `json:"contact_phone,omitempty"`
	ContactEmail   string             `json:"contact_email,omitempty"`
	TableID        string             `json:"table_id,omitempty"`
	TableName      string             `json:"table_name,omitempty"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
	NumberOfPeople int                `json:"number_of_people"`
	Status         Status             `json:"status"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// Notifier delivers reservation notifications. Implementations must not
// block for long; the service already calls them off the request path.
type Notifier interface {
	Publish(ctx context.Context, n Notification) error
}
