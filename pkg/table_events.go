package pkg

import "time"

const (
	// TableStatusTopic delivers authoritative status changes for tables.
	TableStatusTopic = "tables.status"
	// ReservationNotificationTopic carries customer-facing reservation notices.
	ReservationNotificationTopic = "reservations.notifications"

	// EventTableStatusChanged identifies a table status change event payload.
	EventTableStatusChanged = "table.status.changed"
	// EventReservationNotification identifies a reservation notification payload.
	EventReservationNotification = "reservation.notification"
)

// TableStatusEvent captures a FREE/OCCUPIED flip caused by a reservation
// transition so floor displays can follow along.
type TableStatusEvent struct {
	EventType      string    `json:"event_type"`
	TableID        string    `json:"table_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
