package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/appetiteclub/seating/pkg"
)

const (
	tracerName           = "github.com/appetiteclub/seating/internal/reservations"
	reservationSource    = "seating-service"
	DefaultEffectTimeout = 5 * time.Second
)

type ServiceDeps struct {
	Repos     Repos
	Customers CustomerDirectory
	Loyalty   LoyaltyRuleEngine
	Notifier  Notifier
	// Publisher receives table status events; optional.
	Publisher     events.Publisher
	Location      *time.Location
	Clock         func() time.Time
	EffectTimeout time.Duration
}

// Service orchestrates allocation, validation and lifecycle of reservations.
type Service struct {
	tables        TableRepo
	reservations  ReservationRepo
	tx            Transactor
	customers     CustomerDirectory
	loyalty       LoyaltyRuleEngine
	notifier      Notifier
	publisher     events.Publisher
	checker       *AvailabilityChecker
	selector      *TableSelector
	effectTimeout time.Duration
	logger        apt.Logger
	tracer        trace.Tracer
	inflight      sync.WaitGroup
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	tx := deps.Repos.Transactor
	if tx == nil {
		tx = directTransactor{}
	}

	timeout := deps.EffectTimeout
	if timeout <= 0 {
		timeout = DefaultEffectTimeout
	}

	checker := NewAvailabilityChecker(deps.Repos.ReservationRepo, deps.Repos.TableRepo, deps.Location, deps.Clock)

	return &Service{
		tables:        deps.Repos.TableRepo,
		reservations:  deps.Repos.ReservationRepo,
		tx:            tx,
		customers:     deps.Customers,
		loyalty:       deps.Loyalty,
		notifier:      deps.Notifier,
		publisher:     deps.Publisher,
		checker:       checker,
		selector:      NewTableSelector(deps.Repos.TableRepo, checker),
		effectTimeout: timeout,
		logger:        logger,
		tracer:        otel.Tracer(tracerName),
	}
}

type CreateCommand struct {
	CustomerID    uuid.UUID
	TableID       *uuid.UUID
	People        int
	Date          string
	Time          string
	InitialStatus Status
	ContactName   string
	ContactPhone  string
	Notes         string
	Actor         string
}

type WalkInCommand struct {
	CustomerID   uuid.UUID
	TableID      *uuid.UUID
	People       int
	Notify       bool
	ContactName  string
	ContactPhone string
	Notes        string
	Actor        string
}

// UpdateCommand carries optional changes; nil fields are left untouched.
type UpdateCommand struct {
	CustomerID   *uuid.UUID
	TableID      *uuid.UUID
	Date         *string
	Time         *string
	People       *int
	ContactName  *string
	ContactPhone *string
	Notes        *string
	Status       *Status
	Actor        string
}

// tableChange records a committed table status flip for event publishing.
type tableChange struct {
	table    Table
	previous TableStatus
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (view *ReservationView, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.Create")
	defer func() { finishSpan(span, err) }()

	initial := cmd.InitialStatus
	if initial == "" {
		initial = StatusPending
	}
	effects, err := Enter(initial)
	if err != nil {
		return nil, err
	}

	customer, err := s.customer(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}

	var (
		reservation *Reservation
		selection   *Selection
		changes     []tableChange
	)

	err = s.within(ctx, func(ctx context.Context, undo *undoLog) error {
		sel, err := s.place(ctx, cmd.TableID, SelectionRequest{
			People: cmd.People,
			Date:   cmd.Date,
			Time:   cmd.Time,
			Mode:   ModeScheduled,
		}, nil)
		if err != nil {
			return err
		}

		res := NewReservation()
		res.CustomerID = customer.ID
		res.TableID = &sel.Table.ID
		res.ReservationDate = sel.Date
		res.ReservationTime = sel.Time
		res.NumberOfPeople = cmd.People
		res.Status = initial
		res.Source = SourceScheduled
		res.ContactName = cmd.ContactName
		res.ContactPhone = cmd.ContactPhone
		res.Notes = cmd.Notes
		res.CreatedBy = cmd.Actor
		res.UpdatedBy = cmd.Actor
		res.BeforeCreate()

		if err := s.reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("cannot create reservation: %w", err)
		}
		undo.add(s.deleteReservation(res.ID))

		changes, err = s.applyTableEffects(ctx, sel.Table, effects, cmd.Actor, undo)
		if err != nil {
			return err
		}

		reservation, selection = res, sel
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("reservation.id", reservation.ID.String()),
		attribute.String("table.id", selection.Table.ID.String()),
	)
	s.logger.Info("reservation created", "id", reservation.ID.String(), "table", selection.Table.Number,
		"date", reservation.ReservationDate, "time", reservation.ReservationTime, "status", string(reservation.Status))

	s.publishTableChanges(changes, "reservation.created")
	s.dispatch(effects, reservation, customer, selection.Table, true)

	return s.view(reservation, customer, selection.Table), nil
}

func (s *Service) CreateWalkIn(ctx context.Context, cmd WalkInCommand) (view *ReservationView, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.CreateWalkIn")
	defer func() { finishSpan(span, err) }()

	effects, err := Enter(StatusConfirmed)
	if err != nil {
		return nil, err
	}

	customer, err := s.customer(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}

	var (
		reservation *Reservation
		selection   *Selection
		changes     []tableChange
	)

	err = s.within(ctx, func(ctx context.Context, undo *undoLog) error {
		sel, err := s.place(ctx, cmd.TableID, SelectionRequest{
			People: cmd.People,
			Mode:   ModeWalkIn,
		}, nil)
		if err != nil {
			return err
		}

		res := NewReservation()
		res.CustomerID = customer.ID
		res.TableID = &sel.Table.ID
		res.ReservationDate = sel.Date
		res.ReservationTime = sel.Time
		res.NumberOfPeople = cmd.People
		res.Status = StatusConfirmed
		res.Source = SourceWalkIn
		res.ContactName = cmd.ContactName
		res.ContactPhone = cmd.ContactPhone
		res.Notes = cmd.Notes
		res.CreatedBy = cmd.Actor
		res.UpdatedBy = cmd.Actor
		res.BeforeCreate()

		if err := s.reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("cannot create walk-in reservation: %w", err)
		}
		undo.add(s.deleteReservation(res.ID))

		changes, err = s.applyTableEffects(ctx, sel.Table, effects, cmd.Actor, undo)
		if err != nil {
			return err
		}

		reservation, selection = res, sel
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("reservation.id", reservation.ID.String()),
		attribute.String("table.id", selection.Table.ID.String()),
	)
	s.logger.Info("walk-in seated", "id", reservation.ID.String(), "table", selection.Table.Number,
		"time", reservation.ReservationTime, "people", reservation.NumberOfPeople)

	s.publishTableChanges(changes, "reservation.walk_in")
	s.dispatch(effects, reservation, customer, selection.Table, cmd.Notify)

	return s.view(reservation, customer, selection.Table), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (view *ReservationView, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.Update", trace.WithAttributes(attribute.String("reservation.id", id.String())))
	defer func() { finishSpan(span, err) }()

	var (
		reservation *Reservation
		customer    *Customer
		table       *Table
		before      snapshot
		effects     []SideEffect
		changes     []tableChange
	)

	err = s.within(ctx, func(ctx context.Context, undo *undoLog) error {
		res, err := s.reservation(ctx, id)
		if err != nil {
			return err
		}
		original := *res
		if res.Status.IsTerminal() {
			to := res.Status
			if cmd.Status != nil {
				to = *cmd.Status
			}
			return &TransitionError{From: res.Status, To: to}
		}

		before = res.snapshot()
		oldTableID := res.tableID()

		if cmd.CustomerID != nil && *cmd.CustomerID != res.CustomerID {
			c, err := s.customer(ctx, *cmd.CustomerID)
			if err != nil {
				return err
			}
			res.CustomerID = c.ID
			customer = c
		}

		tableID := oldTableID
		if cmd.TableID != nil {
			tableID = *cmd.TableID
		}
		date := res.ReservationDate
		if cmd.Date != nil {
			date = *cmd.Date
		}
		clock := res.ReservationTime
		if cmd.Time != nil {
			clock = *cmd.Time
		}
		people := res.NumberOfPeople
		if cmd.People != nil {
			people = *cmd.People
		}

		t, err := s.table(ctx, tableID)
		if err != nil {
			return err
		}

		rescheduled := tableID != oldTableID || date != res.ReservationDate ||
			clock != res.ReservationTime || people != res.NumberOfPeople
		if rescheduled {
			if err := s.tx.LockTableDate(ctx, t.ID, date); err != nil {
				return fmt.Errorf("cannot lock table %s on %s: %w", t.Number, date, err)
			}
			if err := s.checker.Check(ctx, SlotRequest{
				Table:     t,
				Date:      date,
				Time:      clock,
				People:    people,
				Mode:      res.Mode(),
				ExcludeID: &res.ID,
			}); err != nil {
				return err
			}
			res.TableID = &t.ID
			res.ReservationDate = date
			res.ReservationTime = clock
			res.NumberOfPeople = people
		}

		if cmd.ContactName != nil {
			res.ContactName = *cmd.ContactName
		}
		if cmd.ContactPhone != nil {
			res.ContactPhone = *cmd.ContactPhone
		}
		if cmd.Notes != nil {
			res.Notes = *cmd.Notes
		}

		if cmd.Status != nil && *cmd.Status != res.Status {
			next, fx, err := Transition(res.Status, *cmd.Status)
			if err != nil {
				return err
			}
			res.Status = next
			effects = fx
		}

		res.UpdatedBy = cmd.Actor
		res.BeforeUpdate()
		if err := s.reservations.Save(ctx, res); err != nil {
			return fmt.Errorf("cannot update reservation: %w", err)
		}
		undo.add(s.restoreReservation(&original))

		moved := t.ID != oldTableID
		if moved && before.status == StatusConfirmed {
			old, err := s.table(ctx, oldTableID)
			if err != nil {
				return err
			}
			freed, err := s.applyTableEffects(ctx, old, []SideEffect{tableStatusEffect(TableFree)}, cmd.Actor, undo)
			if err != nil {
				return err
			}
			changes = append(changes, freed...)
		}

		tableEffects := effects
		if moved && res.Status == StatusConfirmed && !hasKind(effects, SetTableStatus) {
			tableEffects = append(tableEffects, tableStatusEffect(TableOccupied))
		}
		applied, err := s.applyTableEffects(ctx, t, tableEffects, cmd.Actor, undo)
		if err != nil {
			return err
		}
		changes = append(changes, applied...)

		reservation, table = res, t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTableChanges(changes, "reservation.updated")

	// A single "updated" notification replaces the transition's own notice.
	var fx []SideEffect
	for _, e := range effects {
		if e.Kind == AccrueLoyalty {
			fx = append(fx, e)
		}
	}
	if before.differs(reservation) {
		fx = append(fx, notificationEffect(NotifyUpdated))
	}
	customer = s.effectCustomer(ctx, customer, reservation.CustomerID)
	s.dispatch(fx, reservation, customer, table, true)

	return s.view(reservation, customer, table), nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID, actor string) (*ReservationView, error) {
	return s.transition(ctx, id, StatusConfirmed, actor)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID, actor string) (*ReservationView, error) {
	return s.transition(ctx, id, StatusCompleted, actor)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor string) (*ReservationView, error) {
	return s.transition(ctx, id, StatusCancelled, actor)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, requested Status, actor string) (view *ReservationView, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.Transition", trace.WithAttributes(
		attribute.String("reservation.id", id.String()),
		attribute.String("reservation.requested_status", string(requested)),
	))
	defer func() { finishSpan(span, err) }()

	var (
		reservation *Reservation
		table       *Table
		effects     []SideEffect
		changes     []tableChange
		previous    Status
	)

	err = s.within(ctx, func(ctx context.Context, undo *undoLog) error {
		res, err := s.reservation(ctx, id)
		if err != nil {
			return err
		}

		next, fx, err := Transition(res.Status, requested)
		if err != nil {
			return err
		}

		// A reservation whose table is gone can still be cancelled.
		t, err := s.table(ctx, res.tableID())
		if err != nil && !(next == StatusCancelled && errors.Is(err, ErrNotFound)) {
			return err
		}

		original := *res
		previous = res.Status
		res.Status = next
		res.UpdatedBy = actor
		res.BeforeUpdate()
		if err := s.reservations.Save(ctx, res); err != nil {
			return fmt.Errorf("cannot save reservation: %w", err)
		}
		undo.add(s.restoreReservation(&original))

		if t != nil {
			changes, err = s.applyTableEffects(ctx, t, fx, actor, undo)
			if err != nil {
				return err
			}
		}

		reservation, table, effects = res, t, fx
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation status changed", "id", id.String(), "from", string(previous), "to", string(reservation.Status))

	s.publishTableChanges(changes, "reservation."+string(reservation.Status))
	customer := s.effectCustomer(ctx, nil, reservation.CustomerID)
	s.dispatch(effects, reservation, customer, table, true)

	return s.view(reservation, customer, table), nil
}

// Delete removes the reservation without lifecycle side effects. Callers
// cancel active reservations first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "Service.Delete", trace.WithAttributes(attribute.String("reservation.id", id.String())))
	defer func() { finishSpan(span, err) }()

	if _, err := s.reservation(ctx, id); err != nil {
		return err
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		return fmt.Errorf("cannot delete reservation: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	res, err := s.reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveView(ctx, res, newViewCache()), nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationView, error) {
	list, err := s.reservations.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("cannot list reservations by customer: %w", err)
	}
	return s.views(ctx, list), nil
}

func (s *Service) ListByDateRange(ctx context.Context, from, to string) ([]*ReservationView, error) {
	if !ValidDate(from) || !ValidDate(to) {
		return nil, fmt.Errorf("%w: dates must be %s", ErrInvalidReservation, DateLayout)
	}
	if to < from {
		return nil, fmt.Errorf("%w: range end %s precedes start %s", ErrInvalidReservation, to, from)
	}
	list, err := s.reservations.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("cannot list reservations by date range: %w", err)
	}
	return s.views(ctx, list), nil
}

// CheckAvailability runs the checker against a table without writing.
func (s *Service) CheckAvailability(ctx context.Context, tableID uuid.UUID, date, clock string, people int, mode Mode) error {
	t, err := s.table(ctx, tableID)
	if err != nil {
		return err
	}
	if mode == ModeWalkIn && date == "" && clock == "" {
		start := laterOf(s.checker.Now(), t)
		date, clock = start.Format(DateLayout), start.Format(ClockLayout)
	}
	return s.checker.Check(ctx, SlotRequest{
		Table:  t,
		Date:   date,
		Time:   clock,
		People: people,
		Mode:   mode,
	})
}

// Wait blocks until in-flight side effects have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Drain waits for in-flight side effects or until ctx is done.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("side effects still running: %w", ctx.Err())
	}
}

// place resolves the table for a request, takes the table/date lock and
// re-validates the final choice.
func (s *Service) place(ctx context.Context, tableID *uuid.UUID, req SelectionRequest, excludeID *uuid.UUID) (*Selection, error) {
	var sel *Selection
	if tableID == nil {
		picked, err := s.selector.Select(ctx, req)
		if err != nil {
			return nil, err
		}
		sel = picked
	} else {
		t, err := s.table(ctx, *tableID)
		if err != nil {
			return nil, err
		}
		sel = &Selection{Table: t, Date: req.Date, Time: req.Time}
		if req.Mode == ModeWalkIn {
			start := laterOf(s.checker.Now(), t)
			sel.Date, sel.Time = start.Format(DateLayout), start.Format(ClockLayout)
		}
	}

	if err := s.tx.LockTableDate(ctx, sel.Table.ID, sel.Date); err != nil {
		return nil, fmt.Errorf("cannot lock table %s on %s: %w", sel.Table.Number, sel.Date, err)
	}

	err := s.checker.Check(ctx, SlotRequest{
		Table:     sel.Table,
		Date:      sel.Date,
		Time:      sel.Time,
		People:    req.People,
		Mode:      req.Mode,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, err
	}

	return sel, nil
}

func (s *Service) applyTableEffects(ctx context.Context, table *Table, effects []SideEffect, actor string, undo *undoLog) ([]tableChange, error) {
	var changes []tableChange
	for _, effect := range effects {
		if effect.Kind != SetTableStatus || table.Status == effect.TableStatus {
			continue
		}

		before := *table
		table.SetStatus(effect.TableStatus)
		table.UpdatedBy = actor
		if err := s.tables.Save(ctx, table); err != nil {
			return nil, fmt.Errorf("cannot update table %s status: %w", table.Number, err)
		}
		undo.add(func(ctx context.Context) error {
			return s.tables.Save(ctx, &before)
		})
		changes = append(changes, tableChange{table: *table, previous: before.Status})
	}
	return changes, nil
}

func (s *Service) customer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidReservation)
	}
	if s.customers == nil {
		return nil, errors.New("customer directory not configured")
	}
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (s *Service) table(ctx context.Context, id uuid.UUID) (*Table, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("table: %w", ErrNotFound)
	}
	t, err := s.tables.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *Service) reservation(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return res, nil
}

// dispatch runs notification and loyalty effects off the request path.
func (s *Service) dispatch(effects []SideEffect, res *Reservation, customer *Customer, table *Table, notify bool) {
	if len(effects) == 0 {
		return
	}

	resCopy := *res
	var tableCopy *Table
	if table != nil {
		t := *table
		tableCopy = &t
	}

	for _, effect := range effects {
		switch effect.Kind {
		case EmitNotification:
			if !notify || s.notifier == nil {
				continue
			}
			action := effect.Action
			s.goEffect("notification", resCopy.ID, func(ctx context.Context) error {
				c := s.effectCustomer(ctx, customer, resCopy.CustomerID)
				return s.notifier.Publish(ctx, buildNotification(action, &resCopy, c, tableCopy))
			})

		case AccrueLoyalty:
			if s.loyalty == nil {
				continue
			}
			event := effect.LoyaltyEvent
			s.goEffect("loyalty", resCopy.ID, func(ctx context.Context) error {
				return s.accrue(ctx, event, &resCopy, customer)
			})
		}
	}
}

func (s *Service) accrue(ctx context.Context, event string, res *Reservation, customer *Customer) error {
	c := s.effectCustomer(ctx, customer, res.CustomerID)
	if c == nil {
		return fmt.Errorf("customer %s: %w", res.CustomerID, ErrNotFound)
	}

	points, err := s.loyalty.CalculatePoints(ctx, c, 0, event, res.NumberOfPeople)
	if err != nil {
		return fmt.Errorf("cannot calculate loyalty points: %w", err)
	}
	if points <= 0 {
		return nil
	}

	if err := s.loyalty.ApplyPoints(ctx, c, points, event); err != nil {
		return fmt.Errorf("cannot apply %d loyalty points: %w", points, err)
	}

	s.logger.Info("loyalty points accrued", "customer_id", c.ID.String(), "points", points, "reservation_id", res.ID.String())
	return nil
}

// effectCustomer returns known when present, otherwise a best effort lookup.
func (s *Service) effectCustomer(ctx context.Context, known *Customer, id uuid.UUID) *Customer {
	if known != nil {
		return known
	}
	if s.customers == nil {
		return nil
	}
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		s.logger.Debug("cannot resolve customer for side effect", "customer_id", id.String(), "error", err)
		return nil
	}
	return c
}

func (s *Service) goEffect(name string, reservationID uuid.UUID, fn func(ctx context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("side effect panicked", "effect", name, "reservation_id", reservationID.String(), "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.effectTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Error("side effect failed", "effect", name, "reservation_id", reservationID.String(), "error", err)
		}
	}()
}

func (s *Service) publishTableChanges(changes []tableChange, reason string) {
	if s.publisher == nil {
		return
	}
	for _, change := range changes {
		change := change
		s.goEffect("table status event", uuid.Nil, func(ctx context.Context) error {
			event := pkg.TableStatusEvent{
				EventType:      pkg.EventTableStatusChanged,
				TableID:        change.table.ID.String(),
				Status:         string(change.table.Status),
				PreviousStatus: string(change.previous),
				Reason:         reason,
				Source:         reservationSource,
				OccurredAt:     time.Now().UTC(),
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("cannot marshal table status event: %w", err)
			}
			return s.publisher.Publish(ctx, pkg.TableStatusTopic, payload)
		})
	}
}

func buildNotification(action NotificationAction, res *Reservation, customer *Customer, table *Table) Notification {
	n := Notification{
		EventType:      pkg.EventReservationNotification,
		Action:         action,
		ReservationID:  res.ID.String(),
		CustomerID:     res.CustomerID.String(),
		ContactName:    res.ContactName,
		ContactPhone:   res.ContactPhone,
		Date:           res.ReservationDate,
		Time:           res.ReservationTime,
		NumberOfPeople: res.NumberOfPeople,
		Status:         res.Status,
		OccurredAt:     time.Now().UTC(),
	}
	if customer != nil {
		if n.ContactName == "" {
			n.ContactName = customer.Name
		}
		if n.ContactPhone == "" {
			n.ContactPhone = customer.Phone
		}
		n.ContactEmail = customer.Email
	}
	if table != nil {
		n.TableID = table.ID.String()
		n.TableName = table.DisplayName()
	}
	return n
}

func hasKind(effects []SideEffect, kind SideEffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// within runs fn as one unit. When the transactor cannot roll back, the
// writes fn recorded in undo are reverted in reverse order on failure.
func (s *Service) within(ctx context.Context, fn func(ctx context.Context, undo *undoLog) error) error {
	var undo undoLog
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// A retried unit starts from scratch.
		undo = nil
		return fn(ctx, &undo)
	})
	if err != nil && !s.atomic() {
		undo.run(context.WithoutCancel(ctx), s.logger)
	}
	return err
}

func (s *Service) atomic() bool {
	a, ok := s.tx.(atomicTransactor)
	return ok && a.Atomic()
}

func (s *Service) deleteReservation(id uuid.UUID) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return s.reservations.Delete(ctx, id)
	}
}

func (s *Service) restoreReservation(original *Reservation) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return s.reservations.Save(ctx, original)
	}
}

// undoLog holds compensating writes for a unit that may not roll back.
type undoLog []func(ctx context.Context) error

func (u *undoLog) add(fn func(ctx context.Context) error) {
	*u = append(*u, fn)
}

func (u undoLog) run(ctx context.Context, logger apt.Logger) {
	for i := len(u) - 1; i >= 0; i-- {
		if err := u[i](ctx); err != nil {
			logger.Error("cannot revert partial write", "error", err)
		}
	}
}

// directTransactor runs units without atomicity; used when no store-level
// transactor is wired.
type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (directTransactor) LockTableDate(context.Context, uuid.UUID, string) error {
	return nil
}
