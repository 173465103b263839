package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/seating/internal/reservations"
)

// Rule awards points for a named event. PerPerson rules multiply by the
// party size.
type Rule struct {
	ID        uuid.UUID `json:"id"`
	EventName string    `json:"event_name"`
	Points    int       `json:"points"`
	PerPerson bool      `json:"per_person"`
	Active    bool      `json:"active"`
}

// RuleProvider returns the rule for an event, or (nil, nil) when none exists.
type RuleProvider interface {
	RuleFor(ctx context.Context, eventName string) (*Rule, error)
}

// Ledger records point movements on a customer balance.
type Ledger interface {
	Credit(ctx context.Context, customerID uuid.UUID, points int, eventType string) error
}

// Engine evaluates loyalty rules and credits the ledger.
type Engine struct {
	rules  RuleProvider
	ledger Ledger
	logger apt.Logger
}

func NewEngine(rules RuleProvider, ledger Ledger, logger apt.Logger) *Engine {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Engine{
		rules:  rules,
		ledger: ledger,
		logger: logger,
	}
}

// CalculatePoints ignores purchaseAmount; no reservation rule is spend based.
func (e *Engine) CalculatePoints(ctx context.Context, customer *reservations.Customer, purchaseAmount float64, eventName string, partySize int) (int, error) {
	if customer == nil {
		return 0, errors.New("customer is required")
	}

	rule, err := e.rules.RuleFor(ctx, eventName)
	if err != nil {
		return 0, fmt.Errorf("cannot load loyalty rule %q: %w", eventName, err)
	}
	if rule == nil || !rule.Active {
		e.logger.Debug("no active loyalty rule", "event", eventName)
		return 0, nil
	}

	return Points(rule, partySize), nil
}

func (e *Engine) ApplyPoints(ctx context.Context, customer *reservations.Customer, points int, eventType string) error {
	if customer == nil {
		return errors.New("customer is required")
	}
	if points <= 0 {
		return nil
	}
	if err := e.ledger.Credit(ctx, customer.ID, points, eventType); err != nil {
		return fmt.Errorf("cannot credit %d points to customer %s: %w", points, customer.ID, err)
	}
	return nil
}

// Points is rule.Points times the party size for per-person rules, with the
// party counted as at least one.
func Points(rule *Rule, partySize int) int {
	if rule == nil || !rule.Active {
		return 0
	}
	if !rule.PerPerson {
		return rule.Points
	}
	if partySize < 1 {
		partySize = 1
	}
	return rule.Points * partySize
}
