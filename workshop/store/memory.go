// Package store provides the in-memory Store implementation (tests/dev).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
	"github.com/autopro/workshop-engine/workshop"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements workshop.Store and audit.Store in memory. A single
// mutex covers each check-and-reserve critical section, which gives the
// same atomicity the SQLite unique indexes give in production.
type Memory struct {
	mu sync.RWMutex

	nextAppointmentID int64
	nextEntryID       int64

	appointments map[int64]workshop.Appointment
	entries      map[int64]workshop.WorkshopEntry
	reservations map[slotKey]int64                   // (date, slot) -> appointment id
	invoices     map[workshop.ItemID]billing.Invoice // one per work item
	auditLog     []audit.Entry
}

type slotKey struct {
	Date string
	Slot schedule.TimeOfDay
}

func NewMemory() *Memory {
	return &Memory{
		appointments: make(map[int64]workshop.Appointment),
		entries:      make(map[int64]workshop.WorkshopEntry),
		reservations: make(map[slotKey]int64),
		invoices:     make(map[workshop.ItemID]billing.Invoice),
	}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// =============================================================================
// APPOINTMENTS
// =============================================================================

// InsertAppointment reserves the (date, slot) pair and stores the record
// atomically. The losing call of a race gets ConflictError.
func (m *Memory) InsertAppointment(_ context.Context, a *workshop.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := slotKey{Date: dayKey(a.Date), Slot: a.Slot}
	if _, taken := m.reservations[k]; taken {
		return &workshop.ConflictError{
			Resource: "slot",
			Detail:   "the selected time is already reserved",
		}
	}

	m.nextAppointmentID++
	a.ID = m.nextAppointmentID
	m.reservations[k] = a.ID
	m.appointments[a.ID] = *a
	return nil
}

func (m *Memory) FindAppointment(_ context.Context, id int64) (*workshop.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) FindAppointmentsByDate(_ context.Context, date time.Time) ([]workshop.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day := dayKey(date)
	var out []workshop.Appointment
	for _, a := range m.appointments {
		if dayKey(a.Date) == day {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (m *Memory) FindReservedSlots(_ context.Context, date time.Time) (map[schedule.TimeOfDay]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day := dayKey(date)
	reserved := make(map[schedule.TimeOfDay]bool)
	for k := range m.reservations {
		if k.Date == day {
			reserved[k.Slot] = true
		}
	}
	return reserved, nil
}

func (m *Memory) ListAppointments(_ context.Context, state *workshop.State) ([]workshop.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []workshop.Appointment
	for _, a := range m.appointments {
		if state == nil || a.State == *state {
			out = append(out, a)
		}
	}
	// Planner order: date desc, then slot asc.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

// =============================================================================
// WALK-IN ENTRIES
// =============================================================================

// InsertEntry enforces one active entry per plate inside the lock.
func (m *Memory) InsertEntry(_ context.Context, e *workshop.WorkshopEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entries {
		if existing.Plate == e.Plate && existing.State.IsActive() {
			return &workshop.ConflictError{
				Resource: "plate",
				Detail:   "an active entry already exists for plate " + e.Plate,
			}
		}
	}

	m.nextEntryID++
	e.ID = m.nextEntryID
	m.entries[e.ID] = *e
	return nil
}

func (m *Memory) FindEntry(_ context.Context, id int64) (*workshop.WorkshopEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) FindActiveEntryByPlate(_ context.Context, plate string) (*workshop.WorkshopEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.Plate == plate && e.State.IsActive() {
			out := e
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListEntries(_ context.Context, state *workshop.State) ([]workshop.WorkshopEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []workshop.WorkshopEntry
	for _, e := range m.entries {
		if state == nil || e.State == *state {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckedInAt.After(out[j].CheckedInAt) })
	return out, nil
}

// =============================================================================
// WORKFLOW UPDATES
// =============================================================================

func (m *Memory) UpdateWorkItemState(_ context.Context, id workshop.ItemID, state workshop.State, reviewed bool, finishedAt *time.Time, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	origin, nativeID, err := id.Split()
	if err != nil {
		return err
	}

	switch origin {
	case workshop.OriginAppointment:
		a, ok := m.appointments[nativeID]
		if !ok {
			return &workshop.NotFoundError{Kind: "work item", ID: string(id)}
		}
		a.State = state
		a.Reviewed = reviewed
		a.UpdatedAt = updatedAt
		m.appointments[nativeID] = a
	default:
		e, ok := m.entries[nativeID]
		if !ok {
			return &workshop.NotFoundError{Kind: "work item", ID: string(id)}
		}
		// Same invariant the partial unique plate index enforces in SQLite:
		// at most one active entry per plate, including re-activations.
		if state.IsActive() {
			for otherID, other := range m.entries {
				if otherID != nativeID && other.Plate == e.Plate && other.State.IsActive() {
					return &workshop.ConflictError{
						Resource: "plate",
						Detail:   "an active entry already exists for plate " + e.Plate,
					}
				}
			}
		}
		e.State = state
		e.Reviewed = reviewed
		if finishedAt != nil {
			e.FinishedAt = finishedAt
		}
		e.UpdatedAt = updatedAt
		m.entries[nativeID] = e
	}
	return nil
}

func (m *Memory) UpdateReviewedFlag(_ context.Context, id workshop.ItemID, reviewed bool, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	origin, nativeID, err := id.Split()
	if err != nil {
		return err
	}

	switch origin {
	case workshop.OriginAppointment:
		a, ok := m.appointments[nativeID]
		if !ok {
			return &workshop.NotFoundError{Kind: "work item", ID: string(id)}
		}
		a.Reviewed = reviewed
		a.UpdatedAt = updatedAt
		m.appointments[nativeID] = a
	default:
		e, ok := m.entries[nativeID]
		if !ok {
			return &workshop.NotFoundError{Kind: "work item", ID: string(id)}
		}
		e.Reviewed = reviewed
		e.UpdatedAt = updatedAt
		m.entries[nativeID] = e
	}
	return nil
}

// =============================================================================
// INVOICES
// =============================================================================

// InsertInvoice enforces one invoice per work item inside the lock.
func (m *Memory) InsertInvoice(_ context.Context, inv *billing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := workshop.ItemID(inv.WorkItemID)
	if existing, ok := m.invoices[id]; ok {
		return &workshop.ConflictError{
			Resource: "invoice",
			Detail:   "quote for " + inv.WorkItemID + " already accepted as " + existing.Number,
		}
	}

	m.invoices[id] = *inv
	return nil
}

func (m *Memory) FindInvoiceByItem(_ context.Context, id workshop.ItemID) (*billing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (m *Memory) ListInvoices(_ context.Context) ([]billing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]billing.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

// =============================================================================
// RESET
// =============================================================================

// Reset drops all data. Dev/demo environments only; id counters restart.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextAppointmentID = 0
	m.nextEntryID = 0
	m.appointments = make(map[int64]workshop.Appointment)
	m.entries = make(map[int64]workshop.WorkshopEntry)
	m.reservations = make(map[slotKey]int64)
	m.invoices = make(map[workshop.ItemID]billing.Invoice)
	m.auditLog = nil
	return nil
}

// =============================================================================
// AUDIT LOG (audit.Store)
// =============================================================================

func (m *Memory) AppendAuditEntry(_ context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.auditLog = append(m.auditLog, e)
	return nil
}

func (m *Memory) QueryAuditEntries(_ context.Context, filter audit.Filter) ([]audit.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []audit.Entry
	for i := len(m.auditLog) - 1; i >= 0; i-- { // newest first
		e := m.auditLog[i]
		if filter.ItemID != nil && e.ItemID != *filter.ItemID {
			continue
		}
		if filter.Actor != nil && e.Actor != *filter.Actor {
			continue
		}
		if len(filter.Actions) > 0 && !containsAction(filter.Actions, e.Action) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func containsAction(actions []audit.Action, a audit.Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
