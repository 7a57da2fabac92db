/*
Package workshop is the core intake and workflow engine for the repair shop.

PURPOSE:
  Two intake paths produce work for the shop floor:
  - Appointment: booked ahead against a calendar slot (paid deposit)
  - WorkshopEntry: a walk-in checked in directly at the shop

  Both are normalized into a single WorkItem shape that the planner board
  moves through the pending / in_progress / finished workflow.

KEY CONCEPTS IN THIS FILE (types.go):
  - State: workflow stage of a work item
  - Origin + ItemID: composite identity across the two intake kinds
  - Appointment / WorkshopEntry: the persisted intake records
  - WorkItem: the transient normalized union (recomputed on every read,
    never the source of truth)

SEE ALSO:
  - normalize.go: record -> WorkItem projection
  - machine.go: workflow transition rules
  - service.go: exposed operations
*/
package workshop

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/autopro/workshop-engine/schedule"
)

// =============================================================================
// WORKFLOW STATE
// =============================================================================

type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

// ParseState validates a workflow state coming from callers.
func ParseState(s string) (State, error) {
	switch State(strings.ToLower(s)) {
	case StatePending:
		return StatePending, nil
	case StateInProgress:
		return StateInProgress, nil
	case StateFinished:
		return StateFinished, nil
	default:
		return "", &ValidationError{
			Field:  "state",
			Reason: fmt.Sprintf("%q is not a workflow state (use pending, in_progress or finished)", s),
		}
	}
}

// IsActive reports whether the state still occupies shop capacity.
// Used by the one-active-entry-per-plate invariant.
func (s State) IsActive() bool {
	return s == StatePending || s == StateInProgress
}

// =============================================================================
// IDENTITY - Origin-tagged composite id
// =============================================================================

// Origin tags which intake path produced a work item.
type Origin string

const (
	OriginAppointment Origin = "appointment"
	OriginWalkIn      Origin = "walk-in"
)

// ItemID is the composite identity "origin:nativeID". Native ids are NOT
// unique across the two record kinds; the composite id is the only identity
// and two records that collide on it never merge.
type ItemID string

func NewItemID(origin Origin, nativeID int64) ItemID {
	return ItemID(fmt.Sprintf("%s:%d", origin, nativeID))
}

// Split decomposes a composite id. Unknown origins and malformed ids are
// validation errors so they surface before any store lookup.
func (id ItemID) Split() (Origin, int64, error) {
	origin, raw, ok := strings.Cut(string(id), ":")
	if !ok {
		return "", 0, &ValidationError{Field: "item id", Reason: fmt.Sprintf("%q is not origin:id", id)}
	}
	switch Origin(origin) {
	case OriginAppointment, OriginWalkIn:
	default:
		return "", 0, &ValidationError{Field: "item id", Reason: fmt.Sprintf("unknown origin %q", origin)}
	}
	nativeID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, &ValidationError{Field: "item id", Reason: fmt.Sprintf("%q is not a numeric id", raw)}
	}
	return Origin(origin), nativeID, nil
}

// =============================================================================
// SHARED FIELD GROUPS
// =============================================================================

type Customer struct {
	Name  string
	Phone string
	Email string
}

type Vehicle struct {
	Make  string
	Model string
	Plate string
	Year  int
}

// Summary renders the vehicle for audit trails: "Seat León (1234ABC)".
func (v Vehicle) Summary() string {
	return fmt.Sprintf("%s %s (%s)", v.Make, v.Model, v.Plate)
}

// =============================================================================
// INTAKE RECORDS
// =============================================================================

// Appointment is a slot-booked intake record.
// Invariant: Slot is one of the daily template slots and Date is a workday;
// both are validated before insert.
type Appointment struct {
	ID int64

	Customer
	Vehicle

	Date        time.Time
	Slot        schedule.TimeOfDay
	Description string

	State    State
	Reviewed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkshopEntry is a walk-in intake record created directly at the shop.
// Invariant: at most one entry with an active state exists per plate.
type WorkshopEntry struct {
	ID int64

	Customer
	Vehicle

	Description string

	State    State
	Reviewed bool

	CheckedInAt time.Time
	FinishedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// WORK ITEM - Normalized union (transient, recomputed on read)
// =============================================================================

// WorkItem is the canonical shape the workflow operates on. It carries all
// display fields of either intake kind; Date and Slot are nil for walk-ins.
type WorkItem struct {
	ID       ItemID
	Origin   Origin
	NativeID int64

	Customer
	Vehicle

	Description string

	Date *time.Time
	Slot *schedule.TimeOfDay

	State    State
	Reviewed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
