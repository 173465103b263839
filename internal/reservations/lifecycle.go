package reservations

type SideEffectKind int

const (
	SetTableStatus SideEffectKind = iota + 1
	EmitNotification
	AccrueLoyalty
)

func (k SideEffectKind) String() string {
	switch k {
	case SetTableStatus:
		return "set_table_status"
	case EmitNotification:
		return "emit_notification"
	case AccrueLoyalty:
		return "accrue_loyalty"
	}
	return "unknown"
}

// SideEffect is a consequence of entering a status. Only the field matching
// Kind is meaningful.
type SideEffect struct {
	Kind         SideEffectKind
	TableStatus  TableStatus
	Action       NotificationAction
	LoyaltyEvent string
}

func tableStatusEffect(status TableStatus) SideEffect {
	return SideEffect{Kind: SetTableStatus, TableStatus: status}
}

func notificationEffect(action NotificationAction) SideEffect {
	return SideEffect{Kind: EmitNotification, Action: action}
}

func loyaltyEffect(event string) SideEffect {
	return SideEffect{Kind: AccrueLoyalty, LoyaltyEvent: event}
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Enter returns the side effects of creating a reservation directly in the
// given status. Only PENDING and CONFIRMED are entry states.
func Enter(initial Status) ([]SideEffect, error) {
	switch initial {
	case StatusPending:
		return []SideEffect{notificationEffect(NotifyCreated)}, nil
	case StatusConfirmed:
		return []SideEffect{
			tableStatusEffect(TableOccupied),
			notificationEffect(NotifyCreated),
		}, nil
	}
	return nil, &TransitionError{To: initial}
}

// Transition validates current -> requested and returns the resulting status
// and its side effects. On error the returned status is current.
func Transition(current, requested Status) (Status, []SideEffect, error) {
	if !CanTransition(current, requested) {
		return current, nil, &TransitionError{From: current, To: requested}
	}

	switch requested {
	case StatusConfirmed:
		return requested, []SideEffect{
			tableStatusEffect(TableOccupied),
			notificationEffect(NotifyConfirmed),
		}, nil
	case StatusCompleted:
		return requested, []SideEffect{
			tableStatusEffect(TableFree),
			loyaltyEffect(LoyaltyEventReservationCompleted),
		}, nil
	case StatusCancelled:
		return requested, []SideEffect{
			tableStatusEffect(TableFree),
			notificationEffect(NotifyCancelled),
		}, nil
	}

	return current, nil, &TransitionError{From: current, To: requested}
}
