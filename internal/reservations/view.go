package reservations

import (
	"context"

	"github.com/google/uuid"
)

// ReservationView is the outward shape of a reservation with customer and
// table names resolved.
type ReservationView struct {
	ID             uuid.UUID  `json:"id"`
	CustomerID     uuid.UUID  `json:"customer_id"`
	CustomerName   string     `json:"customer_name,omitempty"`
	TableID        *uuid.UUID `json:"table_id,omitempty"`
	TableName      string     `json:"table_name,omitempty"`
	ContactName    string     `json:"contact_name,omitempty"`
	ContactPhone   string     `json:"contact_phone,omitempty"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	NumberOfPeople int        `json:"number_of_people"`
	Status         Status     `json:"status"`
	Source         Source     `json:"source"`
	Notes          string     `json:"notes,omitempty"`
}

func (v *ReservationView) GetID() uuid.UUID {
	return v.ID
}

func (v *ReservationView) ResourceType() string {
	return "reservation"
}

func (s *Service) view(res *Reservation, customer *Customer, table *Table) *ReservationView {
	v := &ReservationView{
		ID:             res.ID,
		CustomerID:     res.CustomerID,
		TableID:        res.TableID,
		ContactName:    res.ContactName,
		ContactPhone:   res.ContactPhone,
		Date:           res.ReservationDate,
		Time:           res.ReservationTime,
		NumberOfPeople: res.NumberOfPeople,
		Status:         res.Status,
		Source:         res.Source,
		Notes:          res.Notes,
	}
	if customer != nil {
		v.CustomerName = customer.Name
	}
	if table != nil {
		v.TableName = table.DisplayName()
	}
	return v
}

// viewCache memoises lookups while rendering a list.
type viewCache struct {
	customers map[uuid.UUID]*Customer
	tables    map[uuid.UUID]*Table
}

func newViewCache() *viewCache {
	return &viewCache{
		customers: map[uuid.UUID]*Customer{},
		tables:    map[uuid.UUID]*Table{},
	}
}

// resolveView fills in names on a best effort basis; a failed lookup leaves
// the name empty.
func (s *Service) resolveView(ctx context.Context, res *Reservation, cache *viewCache) *ReservationView {
	customer, ok := cache.customers[res.CustomerID]
	if !ok {
		customer = s.effectCustomer(ctx, nil, res.CustomerID)
		cache.customers[res.CustomerID] = customer
	}

	var table *Table
	if id := res.tableID(); id != uuid.Nil {
		t, ok := cache.tables[id]
		if !ok {
			found, err := s.tables.Get(ctx, id)
			if err != nil {
				s.logger.Debug("cannot resolve table for view", "table_id", id.String(), "error", err)
			}
			t = found
			cache.tables[id] = t
		}
		table = t
	}

	return s.view(res, customer, table)
}

func (s *Service) views(ctx context.Context, list []*Reservation) []*ReservationView {
	cache := newViewCache()
	out := make([]*ReservationView, 0, len(list))
	for _, res := range list {
		out = append(out, s.resolveView(ctx, res, cache))
	}
	return out
}
