package loyalty

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/appetiteclub/seating/internal/reservations"
)

type mockRuleProvider struct {
	rules map[string]*Rule
	err   error
}

func (m *mockRuleProvider) RuleFor(ctx context.Context, eventName string) (*Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rules[eventName], nil
}

type credit struct {
	customerID uuid.UUID
	points     int
	eventType  string
}

type mockLedger struct {
	credits []credit
	err     error
}

func (m *mockLedger) Credit(ctx context.Context, customerID uuid.UUID, points int, eventType string) error {
	if m.err != nil {
		return m.err
	}
	m.credits = append(m.credits, credit{customerID: customerID, points: points, eventType: eventType})
	return nil
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name      string
		rule      *Rule
		partySize int
		want      int
	}{
		{name: "nilRule", rule: nil, partySize: 4, want: 0},
		{name: "inactiveRule", rule: &Rule{Points: 10, Active: false}, partySize: 4, want: 0},
		{name: "flatRule", rule: &Rule{Points: 10, Active: true}, partySize: 4, want: 10},
		{name: "perPerson", rule: &Rule{Points: 10, PerPerson: true, Active: true}, partySize: 4, want: 40},
		{name: "perPersonZeroParty", rule: &Rule{Points: 10, PerPerson: true, Active: true}, partySize: 0, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Points(tt.rule, tt.partySize); got != tt.want {
				t.Errorf("Points() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEngineCalculatePoints(t *testing.T) {
	customer := &reservations.Customer{ID: uuid.New(), Name: "Ada"}
	rules := map[string]*Rule{
		reservations.LoyaltyEventReservationCompleted: {EventName: reservations.LoyaltyEventReservationCompleted, Points: 5, PerPerson: true, Active: true},
		"birthday visit": {EventName: "birthday visit", Points: 50, Active: false},
	}

	tests := []struct {
		name      string
		provider  *mockRuleProvider
		customer  *reservations.Customer
		event     string
		partySize int
		want      int
		wantErr   bool
	}{
		{
			name:      "perPersonRule",
			provider:  &mockRuleProvider{rules: rules},
			customer:  customer,
			event:     reservations.LoyaltyEventReservationCompleted,
			partySize: 3,
			want:      15,
		},
		{
			name:      "inactiveRule",
			provider:  &mockRuleProvider{rules: rules},
			customer:  customer,
			event:     "birthday visit",
			partySize: 3,
			want:      0,
		},
		{
			name:      "unknownEvent",
			provider:  &mockRuleProvider{rules: rules},
			customer:  customer,
			event:     "review posted",
			partySize: 3,
			want:      0,
		},
		{
			name:     "providerFailure",
			provider: &mockRuleProvider{err: errors.New("loyalty service down")},
			customer: customer,
			event:    reservations.LoyaltyEventReservationCompleted,
			wantErr:  true,
		},
		{
			name:     "nilCustomer",
			provider: &mockRuleProvider{rules: rules},
			event:    reservations.LoyaltyEventReservationCompleted,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.provider, &mockLedger{}, nil)

			got, err := engine.CalculatePoints(context.Background(), tt.customer, 0, tt.event, tt.partySize)

			if (err != nil) != tt.wantErr {
				t.Fatalf("CalculatePoints() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CalculatePoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEngineApplyPoints(t *testing.T) {
	customer := &reservations.Customer{ID: uuid.New()}

	tests := []struct {
		name        string
		ledger      *mockLedger
		customer    *reservations.Customer
		points      int
		wantCredits int
		wantErr     bool
	}{
		{name: "credits", ledger: &mockLedger{}, customer: customer, points: 20, wantCredits: 1},
		{name: "zeroPointsSkipped", ledger: &mockLedger{}, customer: customer, points: 0, wantCredits: 0},
		{name: "ledgerFailure", ledger: &mockLedger{err: errors.New("conflict")}, customer: customer, points: 20, wantErr: true},
		{name: "nilCustomer", ledger: &mockLedger{}, points: 20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&mockRuleProvider{}, tt.ledger, nil)

			err := engine.ApplyPoints(context.Background(), tt.customer, tt.points, reservations.LoyaltyEventReservationCompleted)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyPoints() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(tt.ledger.credits) != tt.wantCredits {
				t.Fatalf("ApplyPoints() credits = %d, want %d", len(tt.ledger.credits), tt.wantCredits)
			}
			if tt.wantCredits == 1 {
				c := tt.ledger.credits[0]
				if c.customerID != customer.ID || c.points != tt.points || c.eventType != reservations.LoyaltyEventReservationCompleted {
					t.Errorf("ApplyPoints() credit = %+v", c)
				}
			}
		})
	}
}
