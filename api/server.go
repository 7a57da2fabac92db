/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the front desk UI

ROUTE GROUPS:
  /api/slots          Slot availability
  /api/holidays       Holiday calendar
  /api/appointments   Slot bookings
  /api/entries        Walk-in check-ins
  /api/items/*        Planner board (normalized work items)
  /api/quotes/*       Quote pricing
  /api/invoices       Issued invoices
  /api/audit          Audit trail
  /api/scenarios/*    Demo scenarios (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; this matches a
  single-shop internal deployment behind the shop's network.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Scheduling routes
		r.Get("/slots", h.GetSlots)
		r.Get("/holidays", h.GetHolidays)

		// Intake routes
		r.Post("/appointments", h.CreateAppointment)
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.CreateEntry)
			r.Post("/from-appointment/{id}", h.PromoteAppointment)
		})

		// Planner routes. {id} is the composite work item id
		// ("appointment:3" or "walk-in:7").
		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Get("/{id}", h.GetItem)
			r.Post("/{id}/state", h.TransitionItem)
			r.Post("/{id}/reviewed", h.SetItemReviewed)
			r.Post("/{id}/quote/accept", h.AcceptQuote)
			r.Get("/{id}/invoice", h.GetItemInvoice)
		})

		// Quote routes
		r.Post("/quotes/compute", h.ComputeQuote)

		// Invoice routes
		r.Get("/invoices", h.ListInvoices)

		// Audit routes
		r.Get("/audit", h.QueryAudit)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
