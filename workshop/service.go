/*
service.go - The operations the engine exposes to callers

PURPOSE:
  This is the engine's public surface: booking, intake, workflow moves and
  quote acceptance. The API layer (or a CLI) calls these; transport framing
  is not this package's concern.

CONCURRENCY:
  Mutations on the same work item are serialized through a per-item lock
  (locks.go); different items never contend. The slot and plate invariants
  are enforced by the store's check-and-reserve (store.go), so racing
  bookings resolve to exactly one winner even across processes.

ACTOR CONTEXT:
  Every mutating call takes an explicit actor. Resolving who the actor is
  belongs to the caller; an empty actor falls back to "system" at this
  boundary so the audit trail never has holes.

AUDIT:
  Every mutation emits exactly one audit entry synchronously before the
  call returns. Persistence of that entry is best-effort (see audit
  package); the primary operation never fails because of it.
*/
package workshop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
)

// SystemActor is recorded when the caller provides no actor.
const SystemActor = "system"

// Service wires the calendar, the pricing engine, the store and the audit
// recorder into the exposed operations.
type Service struct {
	store     Store
	scheduler *schedule.Scheduler
	pricing   *billing.Engine
	recorder  audit.Recorder

	locks *itemLocks
	now   func() time.Time
}

// NewService builds a service with production defaults.
func NewService(store Store, scheduler *schedule.Scheduler, pricing *billing.Engine, recorder audit.Recorder) *Service {
	return &Service{
		store:     store,
		scheduler: scheduler,
		pricing:   pricing,
		recorder:  recorder,
		locks:     newItemLocks(),
		now:       time.Now,
	}
}

// =============================================================================
// INTAKE FIELDS
// =============================================================================

// AppointmentFields is the booking input.
type AppointmentFields struct {
	Customer
	Vehicle
	Date        time.Time
	Slot        schedule.TimeOfDay
	Description string
}

// EntryFields is the walk-in input. Year is optional for walk-ins; the
// front desk often does not know it.
type EntryFields struct {
	Customer
	Vehicle
	Description string
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// GetAvailableSlots returns the open slots for a date, in template order.
// Non-workable dates yield an empty list; dates outside the calendar
// horizon are rejected rather than silently treated as holiday-free.
func (s *Service) GetAvailableSlots(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
	if !s.scheduler.Calendar.InHorizon(date) {
		return nil, &ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("%s is outside the bookable horizon", date.Format("2006-01-02")),
		}
	}
	reserved, err := s.store.FindReservedSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.scheduler.AvailableSlots(date, reserved), nil
}

// =============================================================================
// INTAKE
// =============================================================================

// CreateAppointment validates the booking and reserves the slot atomically.
// Defaults: state pending, reviewed false.
func (s *Service) CreateAppointment(ctx context.Context, fields AppointmentFields, actor string) (WorkItem, error) {
	if err := s.validateAppointment(fields); err != nil {
		return WorkItem{}, err
	}

	now := s.now()
	a := &Appointment{
		Customer:    fields.Customer,
		Vehicle:     fields.Vehicle,
		Date:        fields.Date,
		Slot:        fields.Slot,
		Description: fields.Description,
		State:       StatePending,
		Reviewed:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The store enforces (date, slot) uniqueness; losing a race surfaces
	// as ConflictError here with no partial state.
	if err := s.store.InsertAppointment(ctx, a); err != nil {
		return WorkItem{}, err
	}

	item := NormalizeAppointment(*a)
	s.recordIntake(ctx, actor, audit.ActionAppointmentCreated, item,
		fmt.Sprintf("booked %s at %s", fields.Date.Format("2006-01-02"), fields.Slot))
	return item, nil
}

// CreateWalkInEntry checks the vehicle in at the shop. The store rejects a
// second active entry for the same plate.
func (s *Service) CreateWalkInEntry(ctx context.Context, fields EntryFields, actor string) (WorkItem, error) {
	if err := validateEntry(fields); err != nil {
		return WorkItem{}, err
	}

	now := s.now()
	e := &WorkshopEntry{
		Customer:    fields.Customer,
		Vehicle:     fields.Vehicle,
		Description: fields.Description,
		State:       StatePending,
		Reviewed:    false,
		CheckedInAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.InsertEntry(ctx, e); err != nil {
		return WorkItem{}, err
	}

	item := NormalizeEntry(*e)
	s.recordIntake(ctx, actor, audit.ActionEntryCreated, item, "walk-in checked in")
	return item, nil
}

// PromoteAppointment checks the appointment's vehicle in as a walk-in entry
// when the customer shows up, copying the intake fields. Subject to the
// same one-active-entry-per-plate invariant.
func (s *Service) PromoteAppointment(ctx context.Context, appointmentID int64, actor string) (WorkItem, error) {
	a, err := s.store.FindAppointment(ctx, appointmentID)
	if err != nil {
		return WorkItem{}, err
	}
	if a == nil {
		return WorkItem{}, &NotFoundError{Kind: "work item", ID: string(NewItemID(OriginAppointment, appointmentID))}
	}

	return s.CreateWalkInEntry(ctx, EntryFields{
		Customer:    a.Customer,
		Vehicle:     a.Vehicle,
		Description: a.Description,
	}, actor)
}

// =============================================================================
// LISTING
// =============================================================================

// ListWorkItems returns the normalized union of both intake kinds,
// optionally filtered by state. Appointments come first (date desc, then
// slot), then walk-ins (check-in desc), matching the planner board order.
func (s *Service) ListWorkItems(ctx context.Context, state *State) ([]WorkItem, error) {
	appointments, err := s.store.ListAppointments(ctx, state)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, state)
	if err != nil {
		return nil, err
	}

	items := make([]WorkItem, 0, len(appointments)+len(entries))
	for _, a := range appointments {
		items = append(items, NormalizeAppointment(a))
	}
	for _, e := range entries {
		items = append(items, NormalizeEntry(e))
	}
	return items, nil
}

// GetWorkItem loads one item by composite id.
func (s *Service) GetWorkItem(ctx context.Context, id ItemID) (WorkItem, error) {
	return s.loadWorkItem(ctx, id)
}

// =============================================================================
// WORKFLOW
// =============================================================================

// TransitionState moves an item to a new workflow state. Entering finished
// resets the reviewed flag and, for walk-ins, stamps the finish time.
func (s *Service) TransitionState(ctx context.Context, id ItemID, newState State, actor string) (WorkItem, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	item, err := s.loadWorkItem(ctx, id)
	if err != nil {
		return WorkItem{}, err
	}

	tr, err := applyTransition(&item, newState)
	if err != nil {
		return WorkItem{}, err
	}

	// Re-activating a walk-in re-enters the one-active-entry-per-plate
	// invariant; a newer active entry for the same plate blocks the move.
	if item.Origin == OriginWalkIn && tr.To.IsActive() && !tr.From.IsActive() {
		active, err := s.store.FindActiveEntryByPlate(ctx, item.Vehicle.Plate)
		if err != nil {
			return WorkItem{}, err
		}
		if active != nil && active.ID != item.NativeID {
			return WorkItem{}, &ConflictError{
				Resource: "plate",
				Detail:   "an active entry already exists for plate " + item.Vehicle.Plate,
			}
		}
	}

	now := s.now()
	item.UpdatedAt = now

	var finishedAt *time.Time
	if item.Origin == OriginWalkIn && newState == StateFinished {
		finishedAt = &now
	}

	if err := s.store.UpdateWorkItemState(ctx, id, item.State, item.Reviewed, finishedAt, now); err != nil {
		return WorkItem{}, err
	}

	entry := s.newItemEntry(actor, audit.ActionItemMoved, item, now)
	entry.OldState = string(tr.From)
	entry.NewState = string(tr.To)
	entry.Detail = fmt.Sprintf("moved %s from %s to %s", item.Vehicle.Summary(), tr.From, tr.To)
	s.recorder.Record(ctx, entry)

	return item, nil
}

// SetReviewed toggles the reviewed flag. Allowed in any state; it only
// carries user-visible meaning while the item is finished. Never alters
// the workflow state.
func (s *Service) SetReviewed(ctx context.Context, id ItemID, flag bool, actor string) (WorkItem, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	item, err := s.loadWorkItem(ctx, id)
	if err != nil {
		return WorkItem{}, err
	}

	now := s.now()
	item.Reviewed = flag
	item.UpdatedAt = now

	if err := s.store.UpdateReviewedFlag(ctx, id, flag, now); err != nil {
		return WorkItem{}, err
	}

	entry := s.newItemEntry(actor, audit.ActionReviewedToggled, item, now)
	entry.Detail = fmt.Sprintf("set reviewed=%t on %s", flag, item.Vehicle.Summary())
	s.recorder.Record(ctx, entry)

	return item, nil
}

// =============================================================================
// QUOTING
// =============================================================================

// ComputeQuoteTotals prices a draft without persisting anything.
func (s *Service) ComputeQuoteTotals(draft billing.QuoteDraft, originIsAppointment bool) billing.Totals {
	return s.pricing.ComputeTotals(draft, originIsAppointment)
}

// AcceptQuote freezes the draft into an invoice, exactly once per work
// item. A second acceptance returns ConflictError and creates nothing.
func (s *Service) AcceptQuote(ctx context.Context, id ItemID, draft billing.QuoteDraft, actor string) (billing.Invoice, error) {
	if err := validateDraft(draft); err != nil {
		return billing.Invoice{}, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	item, err := s.loadWorkItem(ctx, id)
	if err != nil {
		return billing.Invoice{}, err
	}

	existing, err := s.store.FindInvoiceByItem(ctx, id)
	if err != nil {
		return billing.Invoice{}, err
	}
	if existing != nil {
		return billing.Invoice{}, &ConflictError{
			Resource: "invoice",
			Detail:   fmt.Sprintf("quote for %s already accepted as %s", id, existing.Number),
		}
	}

	now := s.now()
	totals := s.pricing.ComputeTotals(draft, item.Origin == OriginAppointment)
	inv := billing.NewInvoice(string(id), string(item.Origin), item.NativeID, draft, totals, actorOrSystem(actor), now)

	// The unique work-item constraint closes the race between the read
	// above and this insert.
	if err := s.store.InsertInvoice(ctx, &inv); err != nil {
		return billing.Invoice{}, err
	}

	entry := s.newItemEntry(actor, audit.ActionQuoteAccepted, item, now)
	entry.Detail = fmt.Sprintf("accepted quote for %s, invoice %s total %s", item.Vehicle.Summary(), inv.Number, inv.Totals.Total)
	s.recorder.Record(ctx, entry)

	return inv, nil
}

// ListInvoices returns all issued invoices, newest first.
func (s *Service) ListInvoices(ctx context.Context) ([]billing.Invoice, error) {
	return s.store.ListInvoices(ctx)
}

// GetInvoice returns the invoice for a work item, or NotFoundError.
func (s *Service) GetInvoice(ctx context.Context, id ItemID) (billing.Invoice, error) {
	if _, _, err := id.Split(); err != nil {
		return billing.Invoice{}, err
	}
	inv, err := s.store.FindInvoiceByItem(ctx, id)
	if err != nil {
		return billing.Invoice{}, err
	}
	if inv == nil {
		return billing.Invoice{}, &NotFoundError{Kind: "invoice", ID: string(id)}
	}
	return *inv, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func (s *Service) validateAppointment(f AppointmentFields) error {
	if err := requireFields(map[string]string{
		"name":        f.Name,
		"phone":       f.Phone,
		"make":        f.Make,
		"model":       f.Model,
		"plate":       f.Plate,
		"description": f.Description,
	}); err != nil {
		return err
	}
	if f.Year == 0 {
		return &ValidationError{Field: "year", Reason: "is required"}
	}
	if f.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}

	cal := s.scheduler.Calendar
	if !cal.InHorizon(f.Date) {
		return &ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("%s is outside the bookable horizon", f.Date.Format("2006-01-02")),
		}
	}
	today := truncateToDay(s.now())
	if truncateToDay(f.Date).Before(today) {
		return &ValidationError{Field: "date", Reason: "cannot book in the past"}
	}
	if wd := f.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return &ValidationError{Field: "date", Reason: "appointments cannot be booked on weekends"}
	}
	if name, ok := cal.HolidayName(f.Date); ok {
		return &ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("appointments cannot be booked on holidays (%s)", name),
		}
	}
	if !s.scheduler.InTemplate(f.Slot) {
		return &ValidationError{
			Field:  "time",
			Reason: fmt.Sprintf("%s is not one of the daily slots", f.Slot),
		}
	}
	return nil
}

func validateEntry(f EntryFields) error {
	return requireFields(map[string]string{
		"name":  f.Name,
		"phone": f.Phone,
		"make":  f.Make,
		"model": f.Model,
		"plate": f.Plate,
	})
}

func validateDraft(d billing.QuoteDraft) error {
	if len(d.Labor) == 0 && len(d.Parts) == 0 {
		return &ValidationError{Field: "draft", Reason: "needs at least one labor or part line"}
	}
	for _, l := range d.Labor {
		if l.Hours.IsNegative() || l.HourlyRate.IsNegative() {
			return &ValidationError{Field: "labor", Reason: "hours and hourly rate cannot be negative"}
		}
	}
	for _, p := range d.Parts {
		if p.Quantity < 0 || p.UnitPrice.IsNegative() {
			return &ValidationError{Field: "parts", Reason: "quantity and unit price cannot be negative"}
		}
	}
	return nil
}

func requireFields(fields map[string]string) error {
	// Stable order keeps error messages deterministic.
	for _, name := range []string{"name", "phone", "make", "model", "plate", "description"} {
		v, ok := fields[name]
		if ok && strings.TrimSpace(v) == "" {
			return &ValidationError{Field: name, Reason: "is required"}
		}
	}
	return nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// loadWorkItem resolves a composite id to its normalized item.
func (s *Service) loadWorkItem(ctx context.Context, id ItemID) (WorkItem, error) {
	origin, nativeID, err := id.Split()
	if err != nil {
		return WorkItem{}, err
	}

	switch origin {
	case OriginAppointment:
		a, err := s.store.FindAppointment(ctx, nativeID)
		if err != nil {
			return WorkItem{}, err
		}
		if a == nil {
			return WorkItem{}, &NotFoundError{Kind: "work item", ID: string(id)}
		}
		return NormalizeAppointment(*a), nil
	default:
		e, err := s.store.FindEntry(ctx, nativeID)
		if err != nil {
			return WorkItem{}, err
		}
		if e == nil {
			return WorkItem{}, &NotFoundError{Kind: "work item", ID: string(id)}
		}
		return NormalizeEntry(*e), nil
	}
}

func (s *Service) newItemEntry(actor string, action audit.Action, item WorkItem, at time.Time) audit.Entry {
	e := audit.NewEntry(actorOrSystem(actor), action, at)
	e.ItemKind = string(item.Origin)
	e.ItemID = string(item.ID)
	e.VehicleInfo = item.Vehicle.Summary()
	e.CustomerInfo = item.Customer.Name
	return e
}

func (s *Service) recordIntake(ctx context.Context, actor string, action audit.Action, item WorkItem, detail string) {
	entry := s.newItemEntry(actor, action, item, s.now())
	entry.Detail = fmt.Sprintf("%s for %s", detail, item.Vehicle.Summary())
	s.recorder.Record(ctx, entry)
}

func actorOrSystem(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return SystemActor
	}
	return actor
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
