package workshop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autopro/workshop-engine/workshop"
)

// =============================================================================
// TRANSITION TABLE TESTS
// =============================================================================

func TestCanTransition_AllPairsPermitted(t *testing.T) {
	// The board allows free re-triage: forward, backward and no-op moves.
	states := []workshop.State{
		workshop.StatePending,
		workshop.StateInProgress,
		workshop.StateFinished,
	}

	for _, from := range states {
		for _, to := range states {
			assert.True(t, workshop.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStateRejected(t *testing.T) {
	assert.False(t, workshop.CanTransition("scrapped", workshop.StatePending))
	assert.False(t, workshop.CanTransition(workshop.StatePending, "scrapped"))
}
