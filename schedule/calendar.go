/*
Package schedule provides the booking calendar rules for the workshop.

PURPOSE:
  This package answers two questions the booking flow depends on:
  1. Is a given date workable? (not a weekend, not a holiday)
  2. Which appointment slots remain open on a workable date?

KEY CONCEPTS IN THIS FILE (calendar.go):
  - Easter: Gregorian Easter computation (pure function of year)
  - Calendar: pre-generated holiday table for a year horizon
  - IsWorkday / HolidayName: the workability contract

HOLIDAY TABLE:
  Generated per calendar year from the Spanish national holidays, the two
  Madrid regional holidays, and two moving feasts derived from Easter
  (Holy Thursday = Easter - 3 days, Good Friday = Easter - 2 days).

HORIZON:
  The table covers a configured year range. Dates outside the horizon are
  not silently approximated; callers must check InHorizon and extend the
  range instead.

SEE ALSO:
  - slots.go: Daily slot template and availability calculation
*/
package schedule

import (
	"time"
)

// =============================================================================
// EASTER - Gregorian computus
// =============================================================================

// Easter returns Easter Sunday for the given year using the standard
// century/epact arithmetic (Gauss). Deterministic, valid for any Gregorian
// calendar year.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	n := (h + l - 7*m + 114) / 31
	p := (h + l - 7*m + 114) % 31

	return time.Date(year, time.Month(n), p+1, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// HOLIDAY TABLE
// =============================================================================

// Holiday is a named non-workable date.
type Holiday struct {
	Date time.Time
	Name string
}

// fixedHolidays are the month/day holidays observed every year.
// National Spanish holidays plus the two Madrid regional ones.
var fixedHolidays = []struct {
	Month time.Month
	Day   int
	Name  string
}{
	{time.January, 1, "Año Nuevo"},
	{time.January, 6, "Reyes Magos"},
	{time.May, 1, "Día del Trabajo"},
	{time.May, 2, "Fiesta de la Comunidad de Madrid"},
	{time.May, 15, "San Isidro Labrador"},
	{time.August, 15, "Asunción de la Virgen"},
	{time.October, 12, "Fiesta Nacional de España"},
	{time.November, 1, "Todos los Santos"},
	{time.December, 6, "Día de la Constitución"},
	{time.December, 8, "Inmaculada Concepción"},
	{time.December, 25, "Navidad"},
}

// Default horizon matches the shop's published booking window.
const (
	DefaultHorizonStart = 2025
	DefaultHorizonEnd   = 2028
)

// Calendar holds the generated holiday table for a year range.
// It is immutable after construction and safe for concurrent use.
type Calendar struct {
	startYear int
	endYear   int
	holidays  map[string]string // "2006-01-02" -> holiday name
}

// NewCalendar generates the holiday table for [startYear, endYear].
func NewCalendar(startYear, endYear int) *Calendar {
	c := &Calendar{
		startYear: startYear,
		endYear:   endYear,
		holidays:  make(map[string]string),
	}

	for year := startYear; year <= endYear; year++ {
		for _, f := range fixedHolidays {
			d := time.Date(year, f.Month, f.Day, 0, 0, 0, 0, time.UTC)
			c.holidays[dateKey(d)] = f.Name
		}

		easter := Easter(year)
		c.holidays[dateKey(easter.AddDate(0, 0, -3))] = "Jueves Santo"
		c.holidays[dateKey(easter.AddDate(0, 0, -2))] = "Viernes Santo"
	}

	return c
}

// NewDefaultCalendar generates the table for the default horizon.
func NewDefaultCalendar() *Calendar {
	return NewCalendar(DefaultHorizonStart, DefaultHorizonEnd)
}

// Holidays returns the generated holidays for one year, in date order.
func (c *Calendar) Holidays(year int) []Holiday {
	var out []Holiday
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		if name, ok := c.holidays[dateKey(d)]; ok {
			out = append(out, Holiday{Date: d, Name: name})
		}
	}
	return out
}

// InHorizon reports whether the date falls inside the generated year range.
func (c *Calendar) InHorizon(date time.Time) bool {
	return date.Year() >= c.startYear && date.Year() <= c.endYear
}

// HolidayName returns the holiday name for a date, if any.
func (c *Calendar) HolidayName(date time.Time) (string, bool) {
	name, ok := c.holidays[dateKey(date)]
	return name, ok
}

// IsWorkday reports whether appointments can be booked on the date.
// Weekends and holidays are not workable.
func (c *Calendar) IsWorkday(date time.Time) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.HolidayName(date)
	return !holiday
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
