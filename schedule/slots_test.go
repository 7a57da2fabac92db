package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopro/workshop-engine/schedule"
)

// =============================================================================
// SLOT TEMPLATE TESTS
// =============================================================================

func TestDefaultSlotTemplate_TenHourlySlots(t *testing.T) {
	// Morning 08:00-14:00, afternoon 16:00-18:00, lunch gap excluded.
	template := schedule.DefaultSlotTemplate()

	expected := []schedule.TimeOfDay{
		"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00",
		"16:00", "17:00", "18:00",
	}
	assert.Equal(t, expected, template)
	assert.NotContains(t, template, schedule.TimeOfDay("15:00"))
}

func TestParseTimeOfDay(t *testing.T) {
	slot, err := schedule.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	assert.Equal(t, schedule.TimeOfDay("09:00"), slot)

	_, err = schedule.ParseTimeOfDay("morning")
	assert.Error(t, err)

	_, err = schedule.ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

// =============================================================================
// AVAILABILITY TESTS
// =============================================================================

func TestAvailableSlots_SubtractsReservations(t *testing.T) {
	// GIVEN: A workable Tuesday with two reserved slots
	// WHEN: Computing availability
	// THEN: Eight slots remain, in template order

	s := schedule.NewScheduler(schedule.NewDefaultCalendar())
	tuesday := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	reserved := map[schedule.TimeOfDay]bool{
		"09:00": true,
		"16:00": true,
	}

	open := s.AvailableSlots(tuesday, reserved)
	assert.Len(t, open, 8)
	assert.NotContains(t, open, schedule.TimeOfDay("09:00"))
	assert.NotContains(t, open, schedule.TimeOfDay("16:00"))

	// Template order preserved
	assert.Equal(t, schedule.TimeOfDay("08:00"), open[0])
	assert.Equal(t, schedule.TimeOfDay("18:00"), open[len(open)-1])
}

func TestAvailableSlots_FullDay(t *testing.T) {
	s := schedule.NewScheduler(schedule.NewDefaultCalendar())
	tuesday := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	reserved := make(map[schedule.TimeOfDay]bool)
	for _, slot := range s.Template {
		reserved[slot] = true
	}

	assert.Empty(t, s.AvailableSlots(tuesday, reserved))
}

func TestAvailableSlots_NonWorkdayIsEmpty(t *testing.T) {
	// Weekends and holidays have no bookable slots, not an error.
	s := schedule.NewScheduler(schedule.NewDefaultCalendar())

	saturday := time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, s.AvailableSlots(saturday, nil))

	christmas := time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, s.AvailableSlots(christmas, nil))
}

func TestInTemplate(t *testing.T) {
	s := schedule.NewScheduler(schedule.NewDefaultCalendar())

	assert.True(t, s.InTemplate("08:00"))
	assert.True(t, s.InTemplate("18:00"))
	assert.False(t, s.InTemplate("15:00"))
	assert.False(t, s.InTemplate("08:30"))
}
