package reservations

import (
	"errors"
	"reflect"
	"testing"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		to          Status
		wantStatus  Status
		wantEffects []SideEffect
		wantErr     bool
	}{
		{
			name:       "pendingToConfirmed",
			from:       StatusPending,
			to:         StatusConfirmed,
			wantStatus: StatusConfirmed,
			wantEffects: []SideEffect{
				{Kind: SetTableStatus, TableStatus: TableOccupied},
				{Kind: EmitNotification, Action: NotifyConfirmed},
			},
		},
		{
			name:       "pendingToCancelled",
			from:       StatusPending,
			to:         StatusCancelled,
			wantStatus: StatusCancelled,
			wantEffects: []SideEffect{
				{Kind: SetTableStatus, TableStatus: TableFree},
				{Kind: EmitNotification, Action: NotifyCancelled},
			},
		},
		{
			name:       "confirmedToCompleted",
			from:       StatusConfirmed,
			to:         StatusCompleted,
			wantStatus: StatusCompleted,
			wantEffects: []SideEffect{
				{Kind: SetTableStatus, TableStatus: TableFree},
				{Kind: AccrueLoyalty, LoyaltyEvent: LoyaltyEventReservationCompleted},
			},
		},
		{
			name:       "confirmedToCancelled",
			from:       StatusConfirmed,
			to:         StatusCancelled,
			wantStatus: StatusCancelled,
			wantEffects: []SideEffect{
				{Kind: SetTableStatus, TableStatus: TableFree},
				{Kind: EmitNotification, Action: NotifyCancelled},
			},
		},
		{name: "pendingToCompleted", from: StatusPending, to: StatusCompleted, wantStatus: StatusPending, wantErr: true},
		{name: "pendingToPending", from: StatusPending, to: StatusPending, wantStatus: StatusPending, wantErr: true},
		{name: "confirmedToPending", from: StatusConfirmed, to: StatusPending, wantStatus: StatusConfirmed, wantErr: true},
		{name: "confirmedToConfirmed", from: StatusConfirmed, to: StatusConfirmed, wantStatus: StatusConfirmed, wantErr: true},
		{name: "cancelledToConfirmed", from: StatusCancelled, to: StatusConfirmed, wantStatus: StatusCancelled, wantErr: true},
		{name: "cancelledToPending", from: StatusCancelled, to: StatusPending, wantStatus: StatusCancelled, wantErr: true},
		{name: "completedToCancelled", from: StatusCompleted, to: StatusCancelled, wantStatus: StatusCompleted, wantErr: true},
		{name: "unknownTarget", from: StatusPending, to: Status("SEATED"), wantStatus: StatusPending, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, effects, err := Transition(tt.from, tt.to)

			if got != tt.wantStatus {
				t.Errorf("Transition() status = %s, want %s", got, tt.wantStatus)
			}

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Transition() error = %v, want ErrInvalidTransition", err)
				}
				var trErr *TransitionError
				if !errors.As(err, &trErr) || trErr.From != tt.from || trErr.To != tt.to {
					t.Errorf("Transition() error = %#v, want From=%s To=%s", err, tt.from, tt.to)
				}
				if len(effects) != 0 {
					t.Errorf("Transition() effects = %v, want none", effects)
				}
				return
			}

			if err != nil {
				t.Fatalf("Transition() error = %v", err)
			}
			if !reflect.DeepEqual(effects, tt.wantEffects) {
				t.Errorf("Transition() effects = %+v, want %+v", effects, tt.wantEffects)
			}
		})
	}
}

func TestEnter(t *testing.T) {
	tests := []struct {
		name        string
		initial     Status
		wantEffects []SideEffect
		wantErr     bool
	}{
		{
			name:        "pending",
			initial:     StatusPending,
			wantEffects: []SideEffect{{Kind: EmitNotification, Action: NotifyCreated}},
		},
		{
			name:    "confirmed",
			initial: StatusConfirmed,
			wantEffects: []SideEffect{
				{Kind: SetTableStatus, TableStatus: TableOccupied},
				{Kind: EmitNotification, Action: NotifyCreated},
			},
		},
		{name: "completed", initial: StatusCompleted, wantErr: true},
		{name: "cancelled", initial: StatusCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effects, err := Enter(tt.initial)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Enter() error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Enter() error = %v", err)
			}
			if !reflect.DeepEqual(effects, tt.wantEffects) {
				t.Errorf("Enter() effects = %+v, want %+v", effects, tt.wantEffects)
			}
		})
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

	for _, from := range []Status{StatusCompleted, StatusCancelled} {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}
