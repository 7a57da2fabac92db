package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopro/workshop-engine/audit"
)

// failingStore rejects every append.
type failingStore struct{}

func (failingStore) AppendAuditEntry(context.Context, audit.Entry) error {
	return errors.New("disk full")
}

func (failingStore) QueryAuditEntries(context.Context, audit.Filter) ([]audit.Entry, error) {
	return nil, nil
}

func TestNewEntry_StampsIdentity(t *testing.T) {
	at := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	e := audit.NewEntry("lucia", audit.ActionItemMoved, at)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "lucia", e.Actor)
	assert.Equal(t, audit.ActionItemMoved, e.Action)
	assert.True(t, at.Equal(e.Timestamp))

	// Ids are unique per entry.
	other := audit.NewEntry("lucia", audit.ActionItemMoved, at)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestBestEffort_SwallowsAndReportsFailures(t *testing.T) {
	// GIVEN: An audit store that is down
	// WHEN: Recording an entry
	// THEN: Record does not panic or propagate; the failure is reported

	var reported []string
	rec := &audit.BestEffort{
		Store: failingStore{},
		Report: func(format string, args ...any) {
			reported = append(reported, fmt.Sprintf(format, args...))
		},
	}

	e := audit.NewEntry("lucia", audit.ActionQuoteAccepted, time.Now())
	e.ItemID = "walk-in:3"
	rec.Record(context.Background(), e)

	require.Len(t, reported, 1)
	assert.Contains(t, reported[0], "quote_accepted")
	assert.Contains(t, reported[0], "walk-in:3")
	assert.Contains(t, reported[0], "disk full")
}

func TestBestEffort_NilReportDoesNotPanic(t *testing.T) {
	rec := &audit.BestEffort{Store: failingStore{}}

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), audit.NewEntry("", audit.ActionEntryCreated, time.Now()))
	})
}
