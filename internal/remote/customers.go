package remote

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/seating/internal/reservations"
)

// CustomerClient resolves customers against the customers service.
type CustomerClient struct {
	client *apt.ServiceClient
	logger apt.Logger
}

type customerResource struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func NewCustomerClient(config *apt.Config, logger apt.Logger) (*CustomerClient, error) {
	url, _ := config.GetString("services.customers.url")
	if url == "" {
		return nil, fmt.Errorf("services.customers.url is required")
	}

	client := apt.NewServiceClient(url)
	if client == nil {
		return nil, fmt.Errorf("failed to create customers service client")
	}

	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return &CustomerClient{
		client: client,
		logger: logger,
	}, nil
}

func (c *CustomerClient) FindByID(ctx context.Context, id uuid.UUID) (*reservations.Customer, error) {
	resp, err := c.client.Get(ctx, "customers", id.String())
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("customer %s: %w", id, reservations.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	var res customerResource
	if err := decodeSuccessResponse(resp, &res); err != nil {
		return nil, fmt.Errorf("failed to decode customer %s: %w", id, err)
	}

	parsed, err := uuid.Parse(res.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id %q: %w", res.ID, err)
	}

	return &reservations.Customer{
		ID:    parsed,
		Name:  res.Name,
		Email: res.Email,
		Phone: res.Phone,
	}, nil
}
