/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	shop data for testing and demos. Each scenario creates appointments,
	walk-in entries, workflow moves and invoices that demonstrate specific
	features.

AVAILABLE SCENARIOS:

	booked-week:   Appointments spread over the next workdays
	shop-floor:    Mixed appointments and walk-ins across workflow states
	quoting-day:   Finished items with accepted quotes and invoices

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create intake records through the service (so all invariants and
    audit entries apply exactly as in real usage)
 3. Move items through the workflow
 4. Optionally accept quotes

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "shop-floor"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
	"github.com/autopro/workshop-engine/workshop"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "booked-week",
		Name:        "Booked Week",
		Description: "Appointments spread over the next three workdays",
		Category:    "scheduling",
	},
	{
		ID:          "shop-floor",
		Name:        "Shop Floor",
		Description: "Mixed appointments and walk-ins across all workflow states",
		Category:    "workflow",
	},
	{
		ID:          "quoting-day",
		Name:        "Quoting Day",
		Description: "Finished items with accepted quotes and issued invoices",
		Category:    "billing",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	ctx := r.Context()

	// Reset first
	if h.Resetter == nil {
		writeError(w, http.StatusForbidden, "forbidden", "scenarios are disabled on this deployment")
		return
	}
	if err := h.Resetter.Reset(ctx); err != nil {
		writeDomainError(w, err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "booked-week":
		err = h.loadBookedWeekScenario(ctx)
	case "shop-floor":
		err = h.loadShopFloorScenario(ctx)
	case "quoting-day":
		err = h.loadQuotingDayScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "validation", fmt.Sprintf("unknown scenario %q", req.ScenarioID))
		return
	}

	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// nextWorkdays returns the next n bookable dates starting tomorrow.
func (h *Handler) nextWorkdays(n int) []time.Time {
	cal := h.Scheduler.Calendar
	var days []time.Time
	d := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	for len(days) < n && cal.InHorizon(d) {
		if cal.IsWorkday(d) {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}

func (h *Handler) loadBookedWeekScenario(ctx context.Context) error {
	days := h.nextWorkdays(3)

	bookings := []struct {
		day         int
		slot        schedule.TimeOfDay
		name        string
		phone       string
		make_       string
		model       string
		plate       string
		year        int
		description string
	}{
		{0, "08:00", "Carmen Ruiz", "600111222", "Seat", "León", "1234ABC", 2018, "Annual service"},
		{0, "09:00", "Luis Ortega", "600333444", "Renault", "Clio", "5678DEF", 2015, "Brake pads squealing"},
		{0, "11:00", "Ana Torres", "600555666", "Toyota", "Yaris", "9012GHJ", 2021, "Pre-ITV inspection"},
		{1, "08:00", "Pedro Sanz", "600777888", "Ford", "Focus", "3456KLM", 2012, "Timing belt replacement"},
		{1, "16:00", "María Vidal", "600999000", "Opel", "Corsa", "7890NPQ", 2019, "Air conditioning regas"},
		{2, "10:00", "Javier Mora", "611222333", "Volkswagen", "Golf", "2345RST", 2017, "Clutch feels soft"},
	}

	for _, b := range bookings {
		if b.day >= len(days) {
			continue
		}
		_, err := h.Service.CreateAppointment(ctx, workshop.AppointmentFields{
			Customer:    workshop.Customer{Name: b.name, Phone: b.phone},
			Vehicle:     workshop.Vehicle{Make: b.make_, Model: b.model, Plate: b.plate, Year: b.year},
			Date:        days[b.day],
			Slot:        b.slot,
			Description: b.description,
		}, "demo")
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadShopFloorScenario(ctx context.Context) error {
	if err := h.loadBookedWeekScenario(ctx); err != nil {
		return err
	}

	// Walk-ins in different workflow states.
	walkIns := []struct {
		name        string
		phone       string
		make_       string
		model       string
		plate       string
		description string
		state       workshop.State
	}{
		{"Rosa Gil", "622111222", "Fiat", "Panda", "4567UVW", "Flat tyre, needs replacement", workshop.StatePending},
		{"Diego Lara", "622333444", "Peugeot", "208", "8901XYZ", "Engine warning light", workshop.StateInProgress},
		{"Elena Cano", "622555666", "Citroën", "C3", "2109BCD", "Oil change and filters", workshop.StateFinished},
	}

	for _, wi := range walkIns {
		item, err := h.Service.CreateWalkInEntry(ctx, workshop.EntryFields{
			Customer:    workshop.Customer{Name: wi.name, Phone: wi.phone},
			Vehicle:     workshop.Vehicle{Make: wi.make_, Model: wi.model, Plate: wi.plate},
			Description: wi.description,
		}, "demo")
		if err != nil {
			return err
		}
		if wi.state != workshop.StatePending {
			if _, err := h.Service.TransitionState(ctx, item.ID, wi.state, "demo"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) loadQuotingDayScenario(ctx context.Context) error {
	if err := h.loadShopFloorScenario(ctx); err != nil {
		return err
	}

	// Find the finished walk-in and accept a quote on it.
	finished := workshop.StateFinished
	items, err := h.Service.ListWorkItems(ctx, &finished)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.Origin != workshop.OriginWalkIn {
			continue
		}
		draft := billing.QuoteDraft{
			Description: item.Description,
			Labor: []billing.LaborLine{
				{Description: "Labor", Hours: decimal.NewFromFloat(1.5), HourlyRate: decimal.NewFromFloat(40)},
			},
			Parts: []billing.PartLine{
				{Description: "Oil filter", Quantity: 1, UnitPrice: decimal.NewFromFloat(12.50)},
				{Description: "Engine oil 5W30 (L)", Quantity: 4, UnitPrice: decimal.NewFromFloat(9.75)},
			},
		}
		if _, err := h.Service.AcceptQuote(ctx, item.ID, draft, "demo"); err != nil {
			return err
		}
	}
	return nil
}
