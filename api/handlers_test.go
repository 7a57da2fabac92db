package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopro/workshop-engine/api"
	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
	"github.com/autopro/workshop-engine/workshop"
	"github.com/autopro/workshop-engine/workshop/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := store.NewMemory()
	scheduler := schedule.NewScheduler(schedule.NewDefaultCalendar())
	svc := workshop.NewService(mem, scheduler, billing.NewEngine(), audit.NewBestEffort(mem))
	handler := api.NewHandler(svc, scheduler, mem, nil)

	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

// nextWorkday returns the first bookable date starting tomorrow.
func nextWorkday(t *testing.T) string {
	t.Helper()
	cal := schedule.NewDefaultCalendar()
	d := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	for {
		require.True(t, cal.InHorizon(d), "ran out of horizon looking for a workday")
		if cal.IsWorkday(d) {
			return d.Format("2006-01-02")
		}
		d = d.AddDate(0, 0, 1)
	}
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func appointmentBody(date, slot, plate string) map[string]any {
	return map[string]any{
		"name":        "Carmen Ruiz",
		"phone":       "600111222",
		"make":        "Seat",
		"model":       "León",
		"plate":       plate,
		"year":        2018,
		"date":        date,
		"time":        slot,
		"description": "Annual service",
		"actor":       "lucia",
	}
}

func entryBody(plate string) map[string]any {
	return map[string]any{
		"name":        "Diego Lara",
		"phone":       "622333444",
		"make":        "Peugeot",
		"model":       "208",
		"plate":       plate,
		"description": "Engine warning light",
	}
}

// =============================================================================
// SLOT AND HOLIDAY ENDPOINTS
// =============================================================================

func TestAPI_GetSlots(t *testing.T) {
	srv := newTestServer(t)
	date := nextWorkday(t)

	resp := getJSON(t, srv, "/api/slots?date="+date)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}](t, resp)
	assert.Equal(t, date, body.Date)
	assert.Len(t, body.Slots, 10)
	assert.Equal(t, "08:00", body.Slots[0])
}

func TestAPI_GetSlots_MissingDate(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv, "/api/slots")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_GetSlots_OutsideHorizon(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv, "/api/slots?date=2029-01-01")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[api.ErrorDTO](t, resp)
	assert.Equal(t, "validation", body.Kind)
	assert.Contains(t, body.Message, "horizon")
}

func TestAPI_GetHolidays(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv, "/api/holidays?year=2026")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Year     int              `json:"year"`
		Holidays []api.HolidayDTO `json:"holidays"`
	}](t, resp)
	assert.Equal(t, 2026, body.Year)
	assert.Len(t, body.Holidays, 13)
	assert.Equal(t, "2026-01-01", body.Holidays[0].Date)
	assert.Equal(t, "Año Nuevo", body.Holidays[0].Name)
}

// =============================================================================
// INTAKE ENDPOINTS
// =============================================================================

func TestAPI_CreateAppointment(t *testing.T) {
	srv := newTestServer(t)
	date := nextWorkday(t)

	resp := postJSON(t, srv, "/api/appointments", appointmentBody(date, "09:00", "1234ABC"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	item := decode[api.WorkItemDTO](t, resp)
	assert.Equal(t, "appointment", item.Origin)
	assert.Equal(t, "pending", item.State)
	assert.Equal(t, date, item.Date)
	assert.Equal(t, "09:00", item.Time)

	// The slot disappears from availability.
	slots := decode[struct {
		Slots []string `json:"slots"`
	}](t, getJSON(t, srv, "/api/slots?date="+date))
	assert.NotContains(t, slots.Slots, "09:00")
}

func TestAPI_CreateAppointment_Conflict(t *testing.T) {
	srv := newTestServer(t)
	date := nextWorkday(t)

	resp := postJSON(t, srv, "/api/appointments", appointmentBody(date, "10:00", "1234ABC"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv, "/api/appointments", appointmentBody(date, "10:00", "5678DEF"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	errDTO := decode[api.ErrorDTO](t, resp)
	assert.Equal(t, "conflict", errDTO.Kind)
}

func TestAPI_CreateAppointment_ValidationDetails(t *testing.T) {
	srv := newTestServer(t)

	// A Saturday within the horizon.
	resp := postJSON(t, srv, "/api/appointments", appointmentBody("2027-12-04", "09:00", "1234ABC"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errDTO := decode[api.ErrorDTO](t, resp)
	assert.Equal(t, "validation", errDTO.Kind)
	assert.Contains(t, errDTO.Message, "weekend")
}

func TestAPI_CreateEntry_AndDuplicatePlate(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/entries", entryBody("8901XYZ"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	item := decode[api.WorkItemDTO](t, resp)
	assert.Equal(t, "walk-in", item.Origin)
	assert.Empty(t, item.Date)
	assert.Empty(t, item.Time)

	resp = postJSON(t, srv, "/api/entries", entryBody("8901XYZ"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_PromoteAppointment(t *testing.T) {
	srv := newTestServer(t)
	date := nextWorkday(t)

	resp := postJSON(t, srv, "/api/appointments", appointmentBody(date, "09:00", "1234ABC"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	booked := decode[api.WorkItemDTO](t, resp)

	// The composite id is "appointment:<n>"; the route wants the native id.
	var nativeID int64
	_, err := fmt.Sscanf(booked.ID, "appointment:%d", &nativeID)
	require.NoError(t, err)

	resp = postJSON(t, srv, fmt.Sprintf("/api/entries/from-appointment/%d", nativeID),
		map[string]any{"actor": "lucia"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	item := decode[api.WorkItemDTO](t, resp)
	assert.Equal(t, "walk-in", item.Origin)
	assert.Equal(t, "1234ABC", item.Plate)
}

// =============================================================================
// PLANNER ENDPOINTS
// =============================================================================

func TestAPI_WorkflowRoundTrip(t *testing.T) {
	// GIVEN: A walk-in on the board
	// WHEN: Moving it through the workflow and toggling reviewed
	// THEN: Each response reflects the new state; finished resets reviewed

	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/entries", entryBody("8901XYZ"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[api.WorkItemDTO](t, resp)

	base := "/api/items/" + item.ID

	resp = postJSON(t, srv, base+"/state", map[string]any{"state": "in_progress", "actor": "pablo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decode[api.WorkItemDTO](t, resp)
	assert.Equal(t, "in_progress", moved.State)

	resp = postJSON(t, srv, base+"/reviewed", map[string]any{"reviewed": true, "actor": "pablo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reviewed := decode[api.WorkItemDTO](t, resp)
	assert.True(t, reviewed.Reviewed)

	resp = postJSON(t, srv, base+"/state", map[string]any{"state": "finished", "actor": "pablo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	finished := decode[api.WorkItemDTO](t, resp)
	assert.Equal(t, "finished", finished.State)
	assert.False(t, finished.Reviewed)

	// Audit trail captured the moves.
	resp = getJSON(t, srv, "/api/audit?item_id="+item.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	trail := decode[struct {
		Entries []api.AuditEntryDTO `json:"entries"`
	}](t, resp)
	require.NotEmpty(t, trail.Entries)
	assert.Equal(t, "item_moved", trail.Entries[0].Action)
	assert.Equal(t, "in_progress", trail.Entries[0].OldState)
	assert.Equal(t, "finished", trail.Entries[0].NewState)
}

func TestAPI_ListItems_StateFilter(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/entries", entryBody("8901XYZ"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, srv, "/api/items?state=pending")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]api.WorkItemDTO](t, resp)
	assert.Len(t, items, 1)

	resp = getJSON(t, srv, "/api/items?state=finished")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items = decode[[]api.WorkItemDTO](t, resp)
	assert.Empty(t, items)

	resp = getJSON(t, srv, "/api/items?state=bogus")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_GetItem_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv, "/api/items/walk-in:999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	errDTO := decode[api.ErrorDTO](t, resp)
	assert.Equal(t, "not_found", errDTO.Kind)
}

// =============================================================================
// QUOTE ENDPOINTS
// =============================================================================

func quoteBody() map[string]any {
	return map[string]any{
		"description": "Brake service",
		"labor": []map[string]any{
			{"description": "Labor", "hours": 2, "hourly_rate": 30},
		},
		"parts": []map[string]any{
			{"description": "Brake pads", "quantity": 3, "unit_price": 15},
		},
		"actor": "lucia",
	}
}

func TestAPI_ComputeQuote(t *testing.T) {
	srv := newTestServer(t)

	body := quoteBody()
	body["origin_is_appointment"] = true

	resp := postJSON(t, srv, "/api/quotes/compute", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	totals := decode[api.TotalsDTO](t, resp)
	assert.Equal(t, "105.00", totals.Subtotal)
	assert.Equal(t, "10.00", totals.Discount)
	assert.Equal(t, "19.95", totals.Tax)
	assert.Equal(t, "114.95", totals.Total)
}

func TestAPI_AcceptQuote_OncePerItem(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/entries", entryBody("8901XYZ"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[api.WorkItemDTO](t, resp)

	acceptPath := "/api/items/" + item.ID + "/quote/accept"

	resp = postJSON(t, srv, acceptPath, quoteBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inv := decode[api.InvoiceDTO](t, resp)
	assert.Equal(t, item.ID, inv.WorkItemID)
	assert.Equal(t, "127.05", inv.Totals.Total)

	// Second acceptance conflicts.
	resp = postJSON(t, srv, acceptPath, quoteBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// The invoice is retrievable both per item and in the listing.
	resp = getJSON(t, srv, "/api/items/"+item.ID+"/invoice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[api.InvoiceDTO](t, resp)
	assert.Equal(t, inv.Number, got.Number)

	resp = getJSON(t, srv, "/api/invoices")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]api.InvoiceDTO](t, resp)
	require.Len(t, all, 1)
}

func TestAPI_GetInvoice_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/entries", entryBody("8901XYZ"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[api.WorkItemDTO](t, resp)

	resp = getJSON(t, srv, "/api/items/"+item.ID+"/invoice")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// RESET ENDPOINT
// =============================================================================

func TestAPI_ResetDisabledWithoutResetter(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/scenarios/reset", map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
