package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopro/workshop-engine/api"
	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
	"github.com/autopro/workshop-engine/workshop"
	"github.com/autopro/workshop-engine/workshop/store"
)

// newScenarioServer wires the handler with a resettable store so the
// scenario endpoints are live.
func newScenarioServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := store.NewMemory()
	scheduler := schedule.NewScheduler(schedule.NewDefaultCalendar())
	svc := workshop.NewService(mem, scheduler, billing.NewEngine(), audit.NewBestEffort(mem))
	handler := api.NewHandler(svc, scheduler, mem, mem)

	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func TestScenarios_List(t *testing.T) {
	srv := newScenarioServer(t)

	resp := getJSON(t, srv, "/api/scenarios")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := decode[[]api.ScenarioDTO](t, resp)
	require.NotEmpty(t, list)

	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	assert.Contains(t, ids, "booked-week")
	assert.Contains(t, ids, "shop-floor")
	assert.Contains(t, ids, "quoting-day")
}

func TestScenarios_LoadShopFloor(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: Loading the shop-floor scenario
	// THEN: The board has appointments and walk-ins in several states

	srv := newScenarioServer(t)

	resp := postJSON(t, srv, "/api/scenarios/load", map[string]any{"scenario_id": "shop-floor"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, srv, "/api/items")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]api.WorkItemDTO](t, resp)
	require.NotEmpty(t, items)

	origins := map[string]int{}
	states := map[string]int{}
	for _, item := range items {
		origins[item.Origin]++
		states[item.State]++
	}
	assert.Greater(t, origins["appointment"], 0)
	assert.Greater(t, origins["walk-in"], 0)
	assert.Greater(t, states["in_progress"], 0)
	assert.Greater(t, states["finished"], 0)

	// The currently loaded scenario is reported.
	resp = getJSON(t, srv, "/api/scenarios/current")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	current := decode[api.ScenarioDTO](t, resp)
	assert.Equal(t, "shop-floor", current.ID)
}

func TestScenarios_QuotingDayIssuesInvoices(t *testing.T) {
	srv := newScenarioServer(t)

	resp := postJSON(t, srv, "/api/scenarios/load", map[string]any{"scenario_id": "quoting-day"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, srv, "/api/invoices")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	invoices := decode[[]api.InvoiceDTO](t, resp)
	assert.NotEmpty(t, invoices)
}

func TestScenarios_UnknownID(t *testing.T) {
	srv := newScenarioServer(t)

	resp := postJSON(t, srv, "/api/scenarios/load", map[string]any{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestScenarios_ResetClearsBoard(t *testing.T) {
	srv := newScenarioServer(t)

	resp := postJSON(t, srv, "/api/scenarios/load", map[string]any{"scenario_id": "booked-week"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv, "/api/scenarios/reset", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, srv, "/api/items")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]api.WorkItemDTO](t, resp)
	assert.Empty(t, items)
}
