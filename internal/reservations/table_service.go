package reservations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UpdateTable applies req to a table. A policy change is refused while an
// active reservation from today on would no longer fit the table.
func (s *Service) UpdateTable(ctx context.Context, id uuid.UUID, req TableUpdateRequest, actor string) (updated *Table, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.UpdateTable", trace.WithAttributes(attribute.String("table.id", id.String())))
	defer func() { finishSpan(span, err) }()

	err = s.within(ctx, func(ctx context.Context, undo *undoLog) error {
		table, err := s.table(ctx, id)
		if err != nil {
			return err
		}

		if req.Number != nil && *req.Number != table.Number {
			existing, err := s.tables.GetByNumber(ctx, *req.Number)
			if err != nil {
				return fmt.Errorf("cannot check table number: %w", err)
			}
			if existing != nil && existing.ID != table.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateTable, *req.Number)
			}
		}

		req.apply(table)
		if errs := ValidateTable(table); len(errs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTable, strings.Join(errs, ", "))
		}

		if req.changesPolicy() {
			active, err := s.lockActive(ctx, table, s.checker.Now().Format(DateLayout))
			if err != nil {
				return err
			}
			if err := s.checker.Revalidate(table, active); err != nil {
				return err
			}
		}

		table.UpdatedBy = actor
		table.BeforeUpdate()
		if err := s.tables.Save(ctx, table); err != nil {
			return fmt.Errorf("cannot update table: %w", err)
		}

		updated = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table updated", "id", id.String(), "number", updated.Number)
	return updated, nil
}

// DeleteTable removes a free table that holds no active reservation.
func (s *Service) DeleteTable(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "Service.DeleteTable", trace.WithAttributes(attribute.String("table.id", id.String())))
	defer func() { finishSpan(span, err) }()

	return s.within(ctx, func(ctx context.Context, undo *undoLog) error {
		table, err := s.table(ctx, id)
		if err != nil {
			return err
		}
		if !table.IsFree() {
			return fmt.Errorf("%w: table %s is occupied", ErrTableInUse, table.Number)
		}

		active, err := s.lockActive(ctx, table, "")
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return fmt.Errorf("%w: table %s holds %d active reservations", ErrTableInUse, table.Number, len(active))
		}

		if err := s.tables.Delete(ctx, id); err != nil {
			return fmt.Errorf("cannot delete table: %w", err)
		}
		return nil
	})
}

// lockActive lists the active reservations of table from fromDate on and
// takes the slot lock of every date they fall on.
func (s *Service) lockActive(ctx context.Context, table *Table, fromDate string) ([]*Reservation, error) {
	active, err := s.reservations.ListActiveForTable(ctx, table.ID, fromDate)
	if err != nil {
		return nil, fmt.Errorf("cannot list active reservations: %w", err)
	}

	locked := map[string]bool{}
	for _, res := range active {
		if locked[res.ReservationDate] {
			continue
		}
		if err := s.tx.LockTableDate(ctx, table.ID, res.ReservationDate); err != nil {
			return nil, fmt.Errorf("cannot lock table %s on %s: %w", table.Number, res.ReservationDate, err)
		}
		locked[res.ReservationDate] = true
	}
	return active, nil
}
