/*
store.go - Persistence interface consumed by the engine

PURPOSE:
  Defines the boundary between the engine and its persistence collaborator.
  Implementations: store/sqlite (production), workshop/store (in-memory for
  tests and dev).

CHECK-AND-RESERVE CONTRACT:
  Two invariants MUST be enforced inside the store, not by an application
  level check-then-write:
  - InsertAppointment: at most one appointment per (date, slot). The losing
    call of a race returns *ConflictError.
  - InsertEntry: at most one entry per plate with an active state
    (pending or in_progress). Duplicate returns *ConflictError.
  - InsertInvoice: at most one invoice per work item. Duplicate returns
    *ConflictError.
  In SQLite these are UNIQUE indexes; the in-memory store holds a single
  mutex across check and insert.

FAILURE MAPPING:
  Store-level failures other than the conflicts above are wrapped in
  *PersistenceError by implementations.
*/
package workshop

import (
	"context"
	"time"

	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
)

// Store is the persistence collaborator for intake records, workflow state
// and invoices. Find* methods return (nil, nil) when the record is absent;
// translating absence into NotFoundError is the service's job.
type Store interface {
	// Appointments
	InsertAppointment(ctx context.Context, a *Appointment) error
	FindAppointment(ctx context.Context, id int64) (*Appointment, error)
	FindAppointmentsByDate(ctx context.Context, date time.Time) ([]Appointment, error)
	FindReservedSlots(ctx context.Context, date time.Time) (map[schedule.TimeOfDay]bool, error)
	ListAppointments(ctx context.Context, state *State) ([]Appointment, error)

	// Walk-in entries
	InsertEntry(ctx context.Context, e *WorkshopEntry) error
	FindEntry(ctx context.Context, id int64) (*WorkshopEntry, error)
	FindActiveEntryByPlate(ctx context.Context, plate string) (*WorkshopEntry, error)
	ListEntries(ctx context.Context, state *State) ([]WorkshopEntry, error)

	// Workflow updates. finishedAt is stamped on walk-in entries entering
	// finished; appointments ignore it.
	UpdateWorkItemState(ctx context.Context, id ItemID, state State, reviewed bool, finishedAt *time.Time, updatedAt time.Time) error
	UpdateReviewedFlag(ctx context.Context, id ItemID, reviewed bool, updatedAt time.Time) error

	// Invoices
	InsertInvoice(ctx context.Context, inv *billing.Invoice) error
	FindInvoiceByItem(ctx context.Context, id ItemID) (*billing.Invoice, error)
	ListInvoices(ctx context.Context) ([]billing.Invoice, error)
}
