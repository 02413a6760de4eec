/*
handlers.go - HTTP API handlers for the cashflow engine

PURPOSE:
  Exposes budgets and their breakdowns via a REST API. Handles HTTP
  request/response and JSON serialization, and delegates to the budget
  engine.

ENDPOINTS:
  Budgets:
    GET    /api/budgets                    List budgets
    POST   /api/budgets                    Create budget
    GET    /api/budgets/{name}             Budget with its events
    DELETE /api/budgets/{name}             Remove budget

  Events:
    POST   /api/budgets/{name}/events      Register one event or an array

  Projection:
    GET    /api/budgets/{name}/breakdown   ?step=1 day&start=2023-10-15&end=2023-10-23

  Reference:
    GET    /api/intervals                  Supported step/repeat intervals

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: invalid JSON, invalid event, invalid date, invalid range,
         too many buckets
  - 404: budget not found
  - 409: budget name taken
  - 413: request body over MaxBodyBytes
  - 500: anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/store"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *store.Memory
	EventFactory *factory.EventFactory

	// today is swapped in tests; breakdowns without a start use it.
	today func() generic.TimePoint
}

// NewHandler creates a new handler with the given store.
func NewHandler(s *store.Memory) *Handler {
	return &Handler{
		Store:        s,
		EventFactory: factory.NewEventFactory(),
		today:        generic.Today,
	}
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ListBudgets returns all budgets.
// GET /api/budgets
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to list budgets", err)
		return
	}

	dtos := make([]BudgetDTO, len(records))
	for i, rec := range records {
		dtos[i] = toBudgetDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBudget creates an empty budget.
// POST /api/budgets
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeBodyError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required", nil)
		return
	}

	rec, err := h.Store.Create(r.Context(), generic.BudgetName(req.Name), req.OpeningBalance)
	if err != nil {
		writeDomainError(w, r, "Failed to create budget", err)
		return
	}

	log.WithField("budget", req.Name).Info("budget created")
	writeJSON(w, http.StatusCreated, toBudgetDTO(rec))
}

// GetBudget returns a budget and its registered events.
// GET /api/budgets/{name}
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Get(r.Context(), budgetName(r))
	if err != nil {
		writeDomainError(w, r, "Budget not found", err)
		return
	}

	dto := toBudgetDTO(rec)
	events := rec.Budget.Events()
	dto.Events = make([]factory.EventJSON, len(events))
	for i, e := range events {
		dto.Events[i] = h.EventFactory.ToJSON(e)
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteBudget removes a budget.
// DELETE /api/budgets/{name}
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	name := budgetName(r)
	if err := h.Store.Delete(r.Context(), name); err != nil {
		writeDomainError(w, r, "Failed to delete budget", err)
		return
	}

	log.WithField("budget", name).Info("budget deleted")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// AddEvents registers one event object or an array of them. Events carrying
// an id that is already registered are reported as duplicates, not errors.
// POST /api/budgets/{name}/events
func (h *Handler) AddEvents(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Get(r.Context(), budgetName(r))
	if err != nil {
		writeDomainError(w, r, "Budget not found", err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeBodyError(w, r, err)
		return
	}

	var defs []factory.EventJSON
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &defs)
	} else {
		var def factory.EventJSON
		err = json.Unmarshal(body, &def)
		defs = []factory.EventJSON{def}
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	events, err := h.EventFactory.FromJSONList(defs)
	if err != nil {
		writeDomainError(w, r, "Invalid event", err)
		return
	}

	resp := AddEventsResponse{IDs: make([]string, 0, len(events))}
	for _, e := range events {
		resp.IDs = append(resp.IDs, string(e.ID))
		if !rec.Budget.AddEvent(e) {
			resp.Duplicates = append(resp.Duplicates, string(e.ID))
		}
	}

	log.WithFields(log.Fields{
		"budget":     rec.Name,
		"submitted":  len(events),
		"duplicates": len(resp.Duplicates),
	}).Info("events registered")
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// BREAKDOWN HANDLERS
// =============================================================================

// GetBreakdown projects the budget's balance.
// GET /api/budgets/{name}/breakdown?step=&start=&end=
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Get(r.Context(), budgetName(r))
	if err != nil {
		writeDomainError(w, r, "Budget not found", err)
		return
	}

	q := r.URL.Query()
	step := rec.Budget.ResolveStep(q.Get("step"))

	start := h.today()
	if s := q.Get("start"); s != "" {
		if start, err = generic.ParseTimePoint(s); err != nil {
			writeErrorCode(w, r, http.StatusBadRequest, "Invalid start date", "invalid_date", err)
			return
		}
	}

	var end generic.TimePoint
	if s := q.Get("end"); s != "" {
		if end, err = generic.ParseTimePoint(s); err != nil {
			writeErrorCode(w, r, http.StatusBadRequest, "Invalid end date", "invalid_date", err)
			return
		}
	}

	end = rec.Budget.ResolveEnd(start, end)
	effects, err := rec.Budget.Breakdown(step.String(), start, end)
	if err != nil {
		writeDomainError(w, r, "Breakdown failed", err)
		return
	}

	log.WithFields(log.Fields{
		"budget":  rec.Name,
		"step":    step,
		"start":   start.String(),
		"end":     end.String(),
		"buckets": len(effects),
	}).Debug("breakdown served")

	dto := BreakdownDTO{
		Budget:  string(rec.Name),
		Step:    step.String(),
		Start:   start.String(),
		End:     end.String(),
		Effects: toEffectDTOs(effects),
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListIntervals returns the supported step/repeat intervals.
// GET /api/intervals
func (h *Handler) ListIntervals(w http.ResponseWriter, r *http.Request) {
	intervals := generic.Intervals()
	out := make([]string, len(intervals))
	for i, iv := range intervals {
		out[i] = iv.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func budgetName(r *http.Request) generic.BudgetName {
	return generic.BudgetName(chi.URLParam(r, "name"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

// writeDomainError maps engine errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, generic.ErrInvalidRange):
		writeErrorCode(w, r, http.StatusBadRequest, message, "invalid_range", err)
	case errors.Is(err, generic.ErrTooManyBuckets):
		writeErrorCode(w, r, http.StatusBadRequest, message, "too_many_buckets", err)
	case generic.IsClientError(err):
		writeErrorCode(w, r, http.StatusBadRequest, message, "invalid_event", err)
	case generic.IsNotFound(err):
		writeErrorCode(w, r, http.StatusNotFound, message, "not_found", err)
	case generic.IsConflict(err):
		writeErrorCode(w, r, http.StatusConflict, message, "conflict", err)
	default:
		writeError(w, r, http.StatusInternalServerError, message, err)
	}
}

// writeBodyError reports a body that could not be read or decoded.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeErrorCode(w, r, http.StatusRequestEntityTooLarge, "Request body too large", "body_too_large", err)
		return
	}
	writeError(w, r, http.StatusBadRequest, "Invalid JSON", err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	writeErrorCode(w, r, status, message, "", err)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}

	entry := log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"status":     status,
		"path":       r.URL.Path,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	writeJSON(w, status, resp)
}
