/*
machine.go - Workflow transition rules

PURPOSE:
  Governs how a WorkItem moves across pending / in_progress / finished and
  how the secondary reviewed flag behaves.

TRANSITION TABLE:
  The table currently permits every (old, new) pair, including no-ops and
  backward moves (finished -> pending). The shop re-triages freely on the
  planner board, so the graph is unrestricted on purpose; keeping it as an
  enumerated table means tightening it later is a data change, not a
  restructure.

REVIEWED FLAG:
  Entering finished always resets reviewed to false: completed work requires
  a fresh human check every time. Any other transition leaves the flag
  untouched. SetReviewed is allowed in any state but only carries meaning
  while the item is finished.
*/
package workshop

import "fmt"

// transitionTable enumerates the permitted (from, to) pairs.
// All pairs are currently legal; see the package comment above.
var transitionTable = map[State]map[State]bool{
	StatePending:    {StatePending: true, StateInProgress: true, StateFinished: true},
	StateInProgress: {StatePending: true, StateInProgress: true, StateFinished: true},
	StateFinished:   {StatePending: true, StateInProgress: true, StateFinished: true},
}

// CanTransition consults the transition table.
func CanTransition(from, to State) bool {
	return transitionTable[from][to]
}

// Transition describes one applied state change.
type Transition struct {
	From State
	To   State
}

// applyTransition mutates the item per the workflow rules and returns the
// recorded (old, new) pair.
func applyTransition(item *WorkItem, to State) (Transition, error) {
	from := item.State
	if !CanTransition(from, to) {
		return Transition{}, &ValidationError{
			Field:  "state",
			Reason: fmt.Sprintf("transition %s -> %s is not permitted", from, to),
		}
	}

	item.State = to
	if to == StateFinished {
		// Finished work always needs a fresh review.
		item.Reviewed = false
	}

	return Transition{From: from, To: to}, nil
}
