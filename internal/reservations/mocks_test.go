package reservations

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	messages    []publishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type publishedMessage struct {
	topic string
	data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, publishedMessage{topic: topic, data: msg})
	return nil
}

func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var topics []string
	for _, msg := range m.messages {
		topics = append(topics, msg.topic)
	}
	return topics
}

// MockTableRepo is an in-memory TableRepo that stores copies
type MockTableRepo struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]Table
	saves  int

	ListByStatusFunc func(ctx context.Context, status TableStatus) ([]*Table, error)
	GetFunc          func(ctx context.Context, id uuid.UUID) (*Table, error)
	SaveFunc         func(ctx context.Context, table *Table) error
}

func NewMockTableRepo(tables ...*Table) *MockTableRepo {
	m := &MockTableRepo{tables: make(map[uuid.UUID]Table)}
	for _, t := range tables {
		m.tables[t.ID] = *t
	}
	return m
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = *table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, number string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.Number == number {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		table := t
		result = append(result, &table)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *MockTableRepo) ListByStatus(ctx context.Context, status TableStatus) ([]*Table, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	all, _ := m.List(ctx)
	var result []*Table
	for _, t := range all {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table.ID]; !ok {
		return fmt.Errorf("table not found")
	}
	m.tables[table.ID] = *table
	m.saves++
	return nil
}

func (m *MockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[id]; !ok {
		return fmt.Errorf("table not found")
	}
	delete(m.tables, id)
	return nil
}

func (m *MockTableRepo) status(id uuid.UUID) TableStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables[id].Status
}

func (m *MockTableRepo) setStatus(id uuid.UUID, status TableStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tables[id]
	t.Status = status
	m.tables[id] = t
}

// MockReservationRepo is an in-memory ReservationRepo that stores copies
type MockReservationRepo struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]Reservation

	CreateFunc                   func(ctx context.Context, reservation *Reservation) error
	ListActiveForTableOnDateFunc func(ctx context.Context, tableID uuid.UUID, date string, excludeID *uuid.UUID) ([]*Reservation, error)
}

func NewMockReservationRepo(reservations ...*Reservation) *MockReservationRepo {
	m := &MockReservationRepo{reservations: make(map[uuid.UUID]Reservation)}
	for _, r := range reservations {
		m.reservations[r.ID] = *r
	}
	return m
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = *reservation
	return nil
}

func (m *MockReservationRepo) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *MockReservationRepo) filter(keep func(r Reservation) bool) []*Reservation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if keep(r) {
			res := r
			result = append(result, &res)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ReservationDate != result[j].ReservationDate {
			return result[i].ReservationDate < result[j].ReservationDate
		}
		return result[i].ReservationTime < result[j].ReservationTime
	})
	return result
}

func (m *MockReservationRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Reservation, error) {
	return m.filter(func(r Reservation) bool { return r.CustomerID == customerID }), nil
}

func (m *MockReservationRepo) ListByDateRange(ctx context.Context, from, to string) ([]*Reservation, error) {
	return m.filter(func(r Reservation) bool {
		return r.ReservationDate >= from && r.ReservationDate <= to
	}), nil
}

func (m *MockReservationRepo) ListActiveForTableOnDate(ctx context.Context, tableID uuid.UUID, date string, excludeID *uuid.UUID) ([]*Reservation, error) {
	if m.ListActiveForTableOnDateFunc != nil {
		return m.ListActiveForTableOnDateFunc(ctx, tableID, date, excludeID)
	}
	return m.filter(func(r Reservation) bool {
		if excludeID != nil && r.ID == *excludeID {
			return false
		}
		return r.tableID() == tableID && r.ReservationDate == date && r.Status.IsActive()
	}), nil
}

func (m *MockReservationRepo) ListActiveForTable(ctx context.Context, tableID uuid.UUID, fromDate string) ([]*Reservation, error) {
	return m.filter(func(r Reservation) bool {
		return r.tableID() == tableID && r.ReservationDate >= fromDate && r.Status.IsActive()
	}), nil
}

func (m *MockReservationRepo) Save(ctx context.Context, reservation *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[reservation.ID]; !ok {
		return fmt.Errorf("reservation not found")
	}
	m.reservations[reservation.ID] = *reservation
	return nil
}

func (m *MockReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[id]; !ok {
		return fmt.Errorf("reservation not found")
	}
	delete(m.reservations, id)
	return nil
}

func (m *MockReservationRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reservations)
}

// MockTransactor records lock calls and runs units directly
type MockTransactor struct {
	mu    sync.Mutex
	locks []string
	units int

	LockTableDateFunc func(ctx context.Context, tableID uuid.UUID, date string) error
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.units++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *MockTransactor) LockTableDate(ctx context.Context, tableID uuid.UUID, date string) error {
	if m.LockTableDateFunc != nil {
		return m.LockTableDateFunc(ctx, tableID, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks = append(m.locks, tableID.String()+":"+date)
	return nil
}

// MockCustomerDirectory resolves customers from a map
type MockCustomerDirectory struct {
	customers    map[uuid.UUID]*Customer
	FindByIDFunc func(ctx context.Context, id uuid.UUID) (*Customer, error)
}

func NewMockCustomerDirectory(customers ...*Customer) *MockCustomerDirectory {
	m := &MockCustomerDirectory{customers: make(map[uuid.UUID]*Customer)}
	for _, c := range customers {
		m.customers[c.ID] = c
	}
	return m
}

func (m *MockCustomerDirectory) FindByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// MockLoyalty applies a single rule and records credited points
type MockLoyalty struct {
	mu        sync.Mutex
	Points    int
	PerPerson bool
	applied   []int
	events    []string

	CalculatePointsFunc func(ctx context.Context, customer *Customer, purchaseAmount float64, eventName string, partySize int) (int, error)
	ApplyPointsFunc     func(ctx context.Context, customer *Customer, points int, eventType string) error
}

func (m *MockLoyalty) CalculatePoints(ctx context.Context, customer *Customer, purchaseAmount float64, eventName string, partySize int) (int, error) {
	if m.CalculatePointsFunc != nil {
		return m.CalculatePointsFunc(ctx, customer, purchaseAmount, eventName, partySize)
	}
	if eventName != LoyaltyEventReservationCompleted {
		return 0, nil
	}
	if m.PerPerson {
		return m.Points * partySize, nil
	}
	return m.Points, nil
}

func (m *MockLoyalty) ApplyPoints(ctx context.Context, customer *Customer, points int, eventType string) error {
	if m.ApplyPointsFunc != nil {
		return m.ApplyPointsFunc(ctx, customer, points, eventType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, points)
	m.events = append(m.events, eventType)
	return nil
}

func (m *MockLoyalty) Applied() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.applied...)
}

// MockNotifier records every notification it receives
type MockNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	PublishFunc   func(ctx context.Context, n Notification) error
}

func (m *MockNotifier) Publish(ctx context.Context, n Notification) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *MockNotifier) Actions() []NotificationAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var actions []NotificationAction
	for _, n := range m.notifications {
		actions = append(actions, n.Action)
	}
	return actions
}

// fixedClock returns a clock stuck at the given local time.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testZone = time.FixedZone("restaurant", 2*60*60)

func testTable(number string, capacity, minCapacity int) *Table {
	t := NewTable()
	t.Number = number
	t.Capacity = capacity
	t.MinCapacity = minCapacity
	t.OpenTime = "12:00"
	t.CloseTime = "22:00"
	t.ReservationDurationMinutes = 90
	t.BufferBeforeMinutes = 10
	t.BufferAfterMinutes = 10
	return t
}

func testReservation(table *Table, date, clock string, people int, status Status) *Reservation {
	r := NewReservation()
	r.CustomerID = uuid.New()
	r.TableID = &table.ID
	r.ReservationDate = date
	r.ReservationTime = clock
	r.NumberOfPeople = people
	r.Status = status
	return r
}
