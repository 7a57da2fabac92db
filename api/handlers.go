/*
handlers.go - HTTP API handlers for the workshop engine

PURPOSE:
  Exposes the scheduling, workflow and quoting engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Scheduling:
    GET    /api/slots?date=YYYY-MM-DD     Open slots for a date
    GET    /api/holidays?year=YYYY        Holiday table for a year

  Intake:
    POST   /api/appointments              Book a slot
    POST   /api/entries                   Check in a walk-in
    POST   /api/entries/from-appointment/{id}  Check in a booked customer

  Planner:
    GET    /api/items?state=              Normalized work item list
    GET    /api/items/{id}                One work item
    POST   /api/items/{id}/state          Workflow transition
    POST   /api/items/{id}/reviewed       Toggle reviewed flag

  Quoting:
    POST   /api/quotes/compute            Price a draft (no persistence)
    POST   /api/items/{id}/quote/accept   Freeze draft into invoice
    GET    /api/items/{id}/invoice        Invoice for a work item
    GET    /api/invoices                  All invoices

  Audit:
    GET    /api/audit                     Query the audit trail

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Wipe all data (dev only)

ERROR HANDLING:
  Domain errors map to HTTP status by kind:
  - 400: validation errors, malformed input
  - 404: unknown work item / invoice
  - 409: slot taken, duplicate plate, quote already accepted
  - 500: persistence and other internal failures
  The response body never carries internal error detail for 500s.

SECURITY NOTE:
  No authentication middleware. The actor is taken from the request body
  on trust; this matches a single-shop internal deployment.

SEE ALSO:
  - dto.go: request/response data structures
  - scenarios.go: demo scenario loaders
  - server.go: router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/schedule"
	"github.com/autopro/workshop-engine/workshop"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter wipes all persisted data. Only the dev/demo reset endpoint
// uses it; production deployments can leave it nil to disable reset.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *workshop.Service
	Scheduler *schedule.Scheduler
	Audit     audit.Store
	Resetter  Resetter

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(service *workshop.Service, scheduler *schedule.Scheduler, auditStore audit.Store, resetter Resetter) *Handler {
	return &Handler{
		Service:   service,
		Scheduler: scheduler,
		Audit:     auditStore,
		Resetter:  resetter,
	}
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// GetSlots returns the open slots for a date.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "validation", "date query parameter is required (YYYY-MM-DD)")
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid date format (use YYYY-MM-DD)")
		return
	}

	slots, err := h.Service.GetAvailableSlots(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Keep the JSON array non-null even on closed days.
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, string(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": raw, "slots": out})
}

// GetHolidays returns the holiday table for one year.
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		raw = strconv.Itoa(time.Now().Year())
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid year")
		return
	}

	holidays := h.Scheduler.Calendar.Holidays(year)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{
			Date: hol.Date.Format("2006-01-02"),
			Name: hol.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "holidays": dtos})
}

// =============================================================================
// INTAKE HANDLERS
// =============================================================================

// CreateAppointment books a calendar slot.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "invalid date format (use YYYY-MM-DD)")
			return
		}
		date = parsed
	}

	var slot schedule.TimeOfDay
	if req.Time != "" {
		parsed, err := schedule.ParseTimeOfDay(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "invalid time format (use HH:MM)")
			return
		}
		slot = parsed
	}

	item, err := h.Service.CreateAppointment(r.Context(), workshop.AppointmentFields{
		Customer:    workshop.Customer{Name: req.Name, Phone: req.Phone, Email: req.Email},
		Vehicle:     workshop.Vehicle{Make: req.Make, Model: req.Model, Plate: req.Plate, Year: req.Year},
		Date:        date,
		Slot:        slot,
		Description: req.Description,
	}, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkItemDTO(item))
}

// CreateEntry checks a walk-in vehicle into the shop.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	item, err := h.Service.CreateWalkInEntry(r.Context(), workshop.EntryFields{
		Customer:    workshop.Customer{Name: req.Name, Phone: req.Phone, Email: req.Email},
		Vehicle:     workshop.Vehicle{Make: req.Make, Model: req.Model, Plate: req.Plate, Year: req.Year},
		Description: req.Description,
	}, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkItemDTO(item))
}

// PromoteAppointment checks a booked customer in when they show up.
func (h *Handler) PromoteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "appointment id must be numeric")
		return
	}

	var req struct {
		Actor string `json:"actor"`
	}
	// Body is optional for this endpoint.
	json.NewDecoder(r.Body).Decode(&req)

	item, err := h.Service.PromoteAppointment(r.Context(), id, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkItemDTO(item))
}

// =============================================================================
// PLANNER HANDLERS
// =============================================================================

// ListItems returns the normalized work item list, optionally filtered
// by state.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	var state *workshop.State
	if raw := r.URL.Query().Get("state"); raw != "" {
		parsed, err := workshop.ParseState(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		state = &parsed
	}

	items, err := h.Service.ListWorkItems(r.Context(), state)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]WorkItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toWorkItemDTO(item))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetItem returns one work item by composite id.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.GetWorkItem(r.Context(), workshop.ItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkItemDTO(item))
}

// TransitionItem moves a work item to a new workflow state.
func (h *Handler) TransitionItem(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	state, err := workshop.ParseState(req.State)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	item, err := h.Service.TransitionState(r.Context(), workshop.ItemID(chi.URLParam(r, "id")), state, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkItemDTO(item))
}

// SetItemReviewed toggles the reviewed flag on a work item.
func (h *Handler) SetItemReviewed(w http.ResponseWriter, r *http.Request) {
	var req ReviewedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	item, err := h.Service.SetReviewed(r.Context(), workshop.ItemID(chi.URLParam(r, "id")), req.Reviewed, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkItemDTO(item))
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// ComputeQuote prices a draft without persisting anything. Used by the
// front desk while negotiating with the customer.
func (h *Handler) ComputeQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	totals := h.Service.ComputeQuoteTotals(req.toDraft(), req.OriginIsAppointment)
	writeJSON(w, http.StatusOK, toTotalsDTO(totals))
}

// AcceptQuote freezes a draft into the work item's invoice.
func (h *Handler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	inv, err := h.Service.AcceptQuote(r.Context(), workshop.ItemID(chi.URLParam(r, "id")), req.toDraft(), req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceDTO(inv))
}

// GetItemInvoice returns the invoice for a work item.
func (h *Handler) GetItemInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.GetInvoice(r.Context(), workshop.ItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// ListInvoices returns all invoices, newest first.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Service.ListInvoices(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		dtos = append(dtos, toInvoiceDTO(inv))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// QueryAudit returns audit entries, newest first.
// Filters: item_id, actor, action (repeatable), limit.
func (h *Handler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	var filter audit.Filter

	q := r.URL.Query()
	if v := q.Get("item_id"); v != "" {
		filter.ItemID = &v
	}
	if v := q.Get("actor"); v != "" {
		filter.Actor = &v
	}
	for _, a := range q["action"] {
		filter.Actions = append(filter.Actions, audit.Action(a))
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "validation", "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.Audit.QueryAuditEntries(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toAuditEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": dtos})
}

// =============================================================================
// RESET HANDLER
// =============================================================================

// ResetDatabase clears all data. Dev/demo only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if h.Resetter == nil {
		writeError(w, http.StatusForbidden, "forbidden", "reset is disabled on this deployment")
		return
	}
	if err := h.Resetter.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}

	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorDTO{Kind: kind, Message: message})
}

// writeDomainError maps an engine error to its HTTP status. Internal
// failures get a generic body; the detail stays in the server log.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case workshop.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation", err.Error())
	case workshop.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case workshop.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
