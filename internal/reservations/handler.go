package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/seating/pkg"
)

const MaxBodyBytes = 1 << 20

const (
	tableEventSource = "seating-service"
	actorHeader      = "X-Actor"
	defaultActor     = "api"
)

type Handler struct {
	service   *Service
	tableRepo TableRepo
	logger    apt.Logger
	tlm       *telemetry.HTTP
	publisher events.Publisher
}

func NewHandler(service *Service, tableRepo TableRepo, publisher events.Publisher, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		service:   service,
		tableRepo: tableRepo,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
		publisher: publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Post("/", h.CreateTable)
		r.Get("/", h.ListTables)
		r.Get("/{id}", h.GetTable)
		r.Patch("/{id}", h.UpdateTable)
		r.Delete("/{id}", h.DeleteTable)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Post("/walk-in", h.CreateWalkIn)
		r.Get("/", h.ListReservations)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}", h.UpdateReservation)
		r.Delete("/{id}", h.DeleteReservation)

		r.Post("/{id}/confirm", h.ConfirmReservation)
		r.Post("/{id}/complete", h.CompleteReservation)
		r.Post("/{id}/cancel", h.CancelReservation)
	})

	r.Get("/availability", h.CheckAvailability)
}

// Table Handlers

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req TableCreateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateTableCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(validationErrors, ", "))
		return
	}

	existing, err := h.tableRepo.GetByNumber(ctx, req.Number)
	if err != nil {
		log.Error("cannot check table number", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}
	if existing != nil {
		apt.RespondError(w, http.StatusConflict, "Table number already exists")
		return
	}

	table := NewTable()
	table.Number = req.Number
	table.Name = req.Name
	table.Capacity = req.Capacity
	if req.MinCapacity > 0 {
		table.MinCapacity = req.MinCapacity
	}
	table.Priority = req.Priority
	if req.OpenTime != "" {
		table.OpenTime = req.OpenTime
	}
	if req.CloseTime != "" {
		table.CloseTime = req.CloseTime
	}
	if req.ReservationDurationMinutes > 0 {
		table.ReservationDurationMinutes = req.ReservationDurationMinutes
	}
	table.BufferBeforeMinutes = req.BufferBeforeMinutes
	table.BufferAfterMinutes = req.BufferAfterMinutes
	table.CreatedBy = actor(r)
	table.UpdatedBy = actor(r)

	if errs := ValidateTable(table); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, ", "))
		return
	}

	table.BeforeCreate()

	if err := h.tableRepo.Create(ctx, table); err != nil {
		log.Error("cannot create table", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}

	h.publishTableStatusChanged(ctx, table, "", "table.created")

	links := apt.RESTfulLinksFor(table)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.tableRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve table")
		return
	}

	if table == nil {
		apt.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	status := TableStatus(strings.ToUpper(r.URL.Query().Get("status")))

	var tables []*Table
	var err error

	switch status {
	case "":
		tables, err = h.tableRepo.List(ctx)
	case TableFree, TableOccupied:
		tables, err = h.tableRepo.ListByStatus(ctx, status)
	default:
		apt.RespondError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	if err != nil {
		log.Error("error retrieving tables", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	apt.RespondCollection(w, tables, "table")
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TableUpdateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateTableUpdate(ctx, id, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(validationErrors, ", "))
		return
	}

	table, err := h.service.UpdateTable(ctx, id, req, actor(r))
	if err != nil {
		h.respondServiceError(w, log, "cannot update table", err)
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.service.DeleteTable(ctx, id); err != nil {
		h.respondServiceError(w, log, "cannot delete table", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publishTableStatusChanged(ctx context.Context, table *Table, previousStatus TableStatus, reason string) {
	if h.publisher == nil || table == nil {
		return
	}

	event := pkg.TableStatusEvent{
		EventType:      pkg.EventTableStatusChanged,
		TableID:        table.ID.String(),
		Status:         string(table.Status),
		PreviousStatus: string(previousStatus),
		Reason:         reason,
		Source:         tableEventSource,
		OccurredAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal table status event", "error", err, "table_id", table.ID.String())
		return
	}

	if err := h.publisher.Publish(ctx, pkg.TableStatusTopic, payload); err != nil {
		h.logger.Error("cannot publish table status event", "error", err, "table_id", table.ID.String())
	}
}

// Reservation Handlers

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req ReservationCreateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateReservationCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(validationErrors, ", "))
		return
	}

	view, err := h.service.Create(ctx, req.command(actor(r)))
	if err != nil {
		h.respondServiceError(w, log, "cannot create reservation", err)
		return
	}

	links := apt.RESTfulLinksFor(view)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, view, links...)
}

func (h *Handler) CreateWalkIn(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateWalkIn")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req WalkInCreateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateWalkInCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(validationErrors, ", "))
		return
	}

	view, err := h.service.CreateWalkIn(ctx, req.command(actor(r)))
	if err != nil {
		h.respondServiceError(w, log, "cannot create walk-in", err)
		return
	}

	links := apt.RESTfulLinksFor(view)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, view, links...)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReservation")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, log, "cannot get reservation", err)
		return
	}

	links := apt.RESTfulLinksFor(view)
	apt.RespondSuccess(w, view, links...)
}

// ListReservations requires either customer_id or a from/to date range.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListReservations")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	query := r.URL.Query()

	var (
		views []*ReservationView
		err   error
	)

	switch {
	case query.Get("customer_id") != "":
		customerID, parseErr := uuid.Parse(query.Get("customer_id"))
		if parseErr != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid customer_id")
			return
		}
		views, err = h.service.ListByCustomer(ctx, customerID)

	case query.Get("from") != "" || query.Get("to") != "":
		from, to := query.Get("from"), query.Get("to")
		if to == "" {
			to = from
		}
		if from == "" {
			from = to
		}
		if !ValidDate(from) || !ValidDate(to) {
			apt.RespondError(w, http.StatusBadRequest, "Dates must be YYYY-MM-DD")
			return
		}
		views, err = h.service.ListByDateRange(ctx, from, to)

	default:
		apt.RespondError(w, http.StatusBadRequest, "customer_id or from/to is required")
		return
	}

	if err != nil {
		h.respondServiceError(w, log, "cannot list reservations", err)
		return
	}

	apt.RespondCollection(w, views, "reservation")
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req ReservationUpdateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateReservationUpdate(ctx, id, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(validationErrors, ", "))
		return
	}

	view, err := h.service.Update(ctx, id, req.command(actor(r)))
	if err != nil {
		h.respondServiceError(w, log, "cannot update reservation", err)
		return
	}

	links := apt.RESTfulLinksFor(view)
	apt.RespondSuccess(w, view, links...)
}

func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteReservation")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, log, "cannot delete reservation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.ConfirmReservation", h.service.Confirm)
}

func (h *Handler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.CompleteReservation", h.service.Complete)
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.CancelReservation", h.service.Cancel)
}

type transitionFunc func(ctx context.Context, id uuid.UUID, actor string) (*ReservationView, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, name string, fn transitionFunc) {
	w, r, finish := h.tlm.Start(w, r, name)
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	view, err := fn(r.Context(), id, actor(r))
	if err != nil {
		h.respondServiceError(w, log, "cannot change reservation status", err)
		return
	}

	links := apt.RESTfulLinksFor(view)
	apt.RespondSuccess(w, view, links...)
}

type availabilityResult struct {
	TableID   uuid.UUID       `json:"table_id"`
	Date      string          `json:"date,omitempty"`
	Time      string          `json:"time,omitempty"`
	People    int             `json:"people"`
	Mode      Mode            `json:"mode"`
	Available bool            `json:"available"`
	Reason    RejectionReason `json:"reason,omitempty"`
	Detail    string          `json:"detail,omitempty"`
}

// CheckAvailability answers whether a slot would be accepted. A rejection is
// a successful answer, not an error.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CheckAvailability")
	defer finish()

	log := h.log(r)
	query := r.URL.Query()

	tableID, err := uuid.Parse(query.Get("table_id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid table_id")
		return
	}

	people, err := strconv.Atoi(query.Get("people"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid people")
		return
	}

	mode := Mode(strings.ToUpper(query.Get("mode")))
	switch mode {
	case "":
		mode = ModeScheduled
	case ModeScheduled, ModeWalkIn:
	default:
		apt.RespondError(w, http.StatusBadRequest, "Invalid mode")
		return
	}

	result := availabilityResult{
		TableID: tableID,
		Date:    query.Get("date"),
		Time:    query.Get("time"),
		People:  people,
		Mode:    mode,
	}

	err = h.service.CheckAvailability(r.Context(), tableID, result.Date, result.Time, people, mode)
	var availErr *AvailabilityError
	switch {
	case err == nil:
		result.Available = true
	case errors.As(err, &availErr):
		result.Reason = availErr.Reason
		result.Detail = availErr.Detail
	default:
		h.respondServiceError(w, log, "cannot check availability", err)
		return
	}

	apt.RespondSuccess(w, result)
}

// Helper methods

func (h *Handler) respondServiceError(w http.ResponseWriter, log apt.Logger, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debug(msg, "error", err)
		apt.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidReservation):
		log.Debug(msg, "error", err)
		apt.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidTable):
		log.Debug(msg, "error", err)
		apt.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrDuplicateTable), errors.Is(err, ErrTableInUse):
		log.Debug(msg, "error", err)
		apt.RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Error(msg, "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log apt.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("error decoding JSON", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}

	return true
}

func actor(r *http.Request) string {
	if a := strings.TrimSpace(r.Header.Get(actorHeader)); a != "" {
		return a
	}
	return defaultActor
}
