/*
Package audit is the best-effort side channel recording every mutating
action on the planner.

PURPOSE:
  Every state transition, reviewed toggle, intake creation and quote
  acceptance appends one immutable log entry: who did what, when, with the
  before/after state pair and a vehicle/customer summary.

FIRE-AND-FORGET:
  Audit persistence is deliberately best-effort. A failed audit write is
  caught at this boundary, reported to an observability channel, and never
  rolls back or fails the primary operation. This is an accepted
  availability/completeness tradeoff, not an oversight: the shop keeps
  working even if the log store is down.

SEE ALSO:
  - workshop/service.go: emits one entry per mutation, synchronously
  - store/sqlite: append-only audit_log table
*/
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ENTRY
// =============================================================================

// Action tags what kind of mutation produced the entry.
type Action string

const (
	ActionAppointmentCreated Action = "appointment_created"
	ActionEntryCreated       Action = "entry_created"
	ActionItemMoved          Action = "item_moved"
	ActionReviewedToggled    Action = "reviewed_toggled"
	ActionQuoteAccepted      Action = "quote_accepted"
)

// Entry is one immutable audit record. OldState/NewState are set only for
// workflow transitions; VehicleInfo/CustomerInfo are display summaries.
type Entry struct {
	ID        string
	Timestamp time.Time
	Actor     string
	Action    Action
	Detail    string

	ItemKind string // "appointment" or "walk-in", empty when not item-scoped
	ItemID   string // composite work item id

	OldState string
	NewState string

	VehicleInfo  string
	CustomerInfo string
}

// NewEntry stamps an id; callers fill the rest.
func NewEntry(actor string, action Action, at time.Time) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: at,
		Actor:     actor,
		Action:    action,
	}
}

// =============================================================================
// RECORDER
// =============================================================================

// Store persists entries. Append-only: no update, no delete.
type Store interface {
	AppendAuditEntry(ctx context.Context, e Entry) error
	QueryAuditEntries(ctx context.Context, filter Filter) ([]Entry, error)
}

// Filter narrows audit queries. Nil fields match everything.
type Filter struct {
	ItemID  *string
	Actor   *string
	Actions []Action
	Limit   int
}

// Recorder is what the engine calls on every mutation.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// BestEffort wraps a Store as a Recorder that never propagates failures.
// Report defaults to the standard logger.
type BestEffort struct {
	Store  Store
	Report func(format string, args ...any)
}

func NewBestEffort(store Store) *BestEffort {
	return &BestEffort{Store: store, Report: log.Printf}
}

// Record appends the entry, swallowing and reporting any failure.
func (b *BestEffort) Record(ctx context.Context, e Entry) {
	if err := b.Store.AppendAuditEntry(ctx, e); err != nil {
		if b.Report != nil {
			b.Report("audit: dropped %s entry for %s: %v", e.Action, e.ItemID, err)
		}
	}
}

// Discard is a Recorder that drops everything. Used in tests that do not
// assert on the audit trail.
type Discard struct{}

func (Discard) Record(context.Context, Entry) {}
