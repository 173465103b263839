package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/seating/internal/loyalty"
)

// LoyaltyClient reads rules from and credits points on the loyalty service.
type LoyaltyClient struct {
	client *apt.ServiceClient
	logger apt.Logger
}

type loyaltyCreditRequest struct {
	CustomerID string `json:"customer_id"`
	Points     int    `json:"points"`
	EventType  string `json:"event_type"`
}

func NewLoyaltyClient(config *apt.Config, logger apt.Logger) (*LoyaltyClient, error) {
	url, _ := config.GetString("services.loyalty.url")
	if url == "" {
		return nil, fmt.Errorf("services.loyalty.url is required")
	}

	client := apt.NewServiceClient(url)
	if client == nil {
		return nil, fmt.Errorf("failed to create loyalty service client")
	}

	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return &LoyaltyClient{
		client: client,
		logger: logger,
	}, nil
}

// RuleFor returns the first rule whose event name matches, case-insensitively.
func (c *LoyaltyClient) RuleFor(ctx context.Context, eventName string) (*loyalty.Rule, error) {
	resp, err := c.client.List(ctx, "loyalty-rules")
	if err != nil {
		return nil, fmt.Errorf("failed to list loyalty rules: %w", err)
	}

	var rules []loyalty.Rule
	if err := decodeSuccessResponse(resp, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode loyalty rules: %w", err)
	}

	for i := range rules {
		if strings.EqualFold(rules[i].EventName, eventName) {
			return &rules[i], nil
		}
	}

	return nil, nil
}

func (c *LoyaltyClient) Credit(ctx context.Context, customerID uuid.UUID, points int, eventType string) error {
	req := loyaltyCreditRequest{
		CustomerID: customerID.String(),
		Points:     points,
		EventType:  eventType,
	}

	if _, err := c.client.Create(ctx, "loyalty-transactions", req); err != nil {
		return fmt.Errorf("failed to credit loyalty points: %w", err)
	}

	c.logger.Debug("loyalty points credited", "customer_id", customerID.String(), "points", points)
	return nil
}
