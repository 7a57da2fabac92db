package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME OF DAY - Slot identity
// =============================================================================

// TimeOfDay is an hourly appointment slot, formatted "HH:MM".
// Slots are compared by exact string equality; there is no fuzzy matching.
type TimeOfDay string

// NewTimeOfDay builds a slot from an hour of day.
func NewTimeOfDay(hour int) TimeOfDay {
	return TimeOfDay(fmt.Sprintf("%02d:00", hour))
}

// ParseTimeOfDay validates "HH:MM" input.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Format("15:04")), nil
}

// =============================================================================
// SLOT TEMPLATE
// =============================================================================

// DefaultSlotTemplate returns the shop's daily booking template:
// hourly slots 08:00-14:00 and 16:00-18:00 (10 slots). The midday gap is
// the workshop lunch closure.
func DefaultSlotTemplate() []TimeOfDay {
	var slots []TimeOfDay
	for hour := 8; hour <= 14; hour++ {
		slots = append(slots, NewTimeOfDay(hour))
	}
	for hour := 16; hour <= 18; hour++ {
		slots = append(slots, NewTimeOfDay(hour))
	}
	return slots
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// Scheduler computes open slots from the daily template and calendar rules.
// Template and calendar are configuration, not hardwired logic.
type Scheduler struct {
	Calendar *Calendar
	Template []TimeOfDay
}

// NewScheduler wires a scheduler with the default template.
func NewScheduler(cal *Calendar) *Scheduler {
	return &Scheduler{Calendar: cal, Template: DefaultSlotTemplate()}
}

// InTemplate reports whether the slot belongs to the daily template.
func (s *Scheduler) InTemplate(slot TimeOfDay) bool {
	for _, t := range s.Template {
		if t == slot {
			return true
		}
	}
	return false
}

// AvailableSlots returns the template minus the reserved slots, preserving
// template order. A non-workable date yields an empty result; that is a
// policy decision, not an error.
func (s *Scheduler) AvailableSlots(date time.Time, reserved map[TimeOfDay]bool) []TimeOfDay {
	if !s.Calendar.IsWorkday(date) {
		return []TimeOfDay{}
	}

	open := make([]TimeOfDay, 0, len(s.Template))
	for _, slot := range s.Template {
		if !reserved[slot] {
			open = append(open, slot)
		}
	}
	return open
}
