/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication. These decouple the engine's
  domain model from the external contract.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

MONEY:
  Monetary amounts arrive as JSON numbers and leave as 2-decimal strings
  (already rounded by the billing engine). Internal math stays decimal.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/workshop"
)

// =============================================================================
// INTAKE
// =============================================================================

// CreateAppointmentRequest books a calendar slot.
type CreateAppointmentRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Plate       string `json:"plate"`
	Year        int    `json:"year"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Description string `json:"description"`
	Actor       string `json:"actor,omitempty"`
}

// CreateEntryRequest checks a walk-in vehicle into the shop.
type CreateEntryRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Plate       string `json:"plate"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	Actor       string `json:"actor,omitempty"`
}

// WorkItemDTO is the normalized work item shape. Date and Time are empty
// for walk-in items.
type WorkItemDTO struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Plate       string `json:"plate"`
	Year        int    `json:"year,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
	State       string `json:"state"`
	Reviewed    bool   `json:"reviewed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toWorkItemDTO(item workshop.WorkItem) WorkItemDTO {
	dto := WorkItemDTO{
		ID:          string(item.ID),
		Origin:      string(item.Origin),
		Name:        item.Name,
		Phone:       item.Phone,
		Email:       item.Email,
		Make:        item.Make,
		Model:       item.Model,
		Plate:       item.Plate,
		Year:        item.Year,
		Description: item.Description,
		State:       string(item.State),
		Reviewed:    item.Reviewed,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.Date != nil {
		dto.Date = item.Date.Format("2006-01-02")
	}
	if item.Slot != nil {
		dto.Time = string(*item.Slot)
	}
	return dto
}

// =============================================================================
// WORKFLOW
// =============================================================================

// TransitionRequest moves an item on the planner board.
type TransitionRequest struct {
	State string `json:"state"`
	Actor string `json:"actor,omitempty"`
}

// ReviewedRequest toggles the reviewed flag.
type ReviewedRequest struct {
	Reviewed bool   `json:"reviewed"`
	Actor    string `json:"actor,omitempty"`
}

// =============================================================================
// QUOTES AND INVOICES
// =============================================================================

type LaborLineRequest struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	HourlyRate  float64 `json:"hourly_rate"`
}

type PartLineRequest struct {
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// QuoteDraftRequest carries the draft lines for pricing or acceptance.
type QuoteDraftRequest struct {
	Description string             `json:"description,omitempty"`
	Labor       []LaborLineRequest `json:"labor"`
	Parts       []PartLineRequest  `json:"parts"`

	// Only used by the compute endpoint, where there is no work item yet.
	OriginIsAppointment bool `json:"origin_is_appointment,omitempty"`

	Actor string `json:"actor,omitempty"`
}

func (r QuoteDraftRequest) toDraft() billing.QuoteDraft {
	draft := billing.QuoteDraft{Description: r.Description}
	for _, l := range r.Labor {
		draft.Labor = append(draft.Labor, billing.LaborLine{
			Description: l.Description,
			Hours:       decimal.NewFromFloat(l.Hours),
			HourlyRate:  decimal.NewFromFloat(l.HourlyRate),
		})
	}
	for _, p := range r.Parts {
		draft.Parts = append(draft.Parts, billing.PartLine{
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   decimal.NewFromFloat(p.UnitPrice),
		})
	}
	return draft
}

// TotalsDTO is the rounded price breakdown as fixed 2-decimal strings.
type TotalsDTO struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func toTotalsDTO(t billing.Totals) TotalsDTO {
	r := t.Rounded()
	return TotalsDTO{
		Subtotal: r.Subtotal.StringFixed(2),
		Discount: r.Discount.StringFixed(2),
		Tax:      r.Tax.StringFixed(2),
		Total:    r.Total.StringFixed(2),
	}
}

// InvoiceDTO is the frozen accepted quote.
type InvoiceDTO struct {
	Number      string    `json:"number"`
	WorkItemID  string    `json:"work_item_id"`
	Origin      string    `json:"origin"`
	Description string    `json:"description,omitempty"`
	Totals      TotalsDTO `json:"totals"`
	Actor       string    `json:"actor"`
	IssuedAt    string    `json:"issued_at"`
}

func toInvoiceDTO(inv billing.Invoice) InvoiceDTO {
	return InvoiceDTO{
		Number:      inv.Number,
		WorkItemID:  inv.WorkItemID,
		Origin:      inv.Origin,
		Description: inv.Description,
		Totals:      toTotalsDTO(inv.Totals),
		Actor:       inv.Actor,
		IssuedAt:    inv.IssuedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// AUDIT
// =============================================================================

type AuditEntryDTO struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	Actor        string `json:"actor"`
	Action       string `json:"action"`
	Detail       string `json:"detail,omitempty"`
	ItemKind     string `json:"item_kind,omitempty"`
	ItemID       string `json:"item_id,omitempty"`
	OldState     string `json:"old_state,omitempty"`
	NewState     string `json:"new_state,omitempty"`
	VehicleInfo  string `json:"vehicle_info,omitempty"`
	CustomerInfo string `json:"customer_info,omitempty"`
}

func toAuditEntryDTO(e audit.Entry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:           e.ID,
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
		Actor:        e.Actor,
		Action:       string(e.Action),
		Detail:       e.Detail,
		ItemKind:     e.ItemKind,
		ItemID:       e.ItemID,
		OldState:     e.OldState,
		NewState:     e.NewState,
		VehicleInfo:  e.VehicleInfo,
		CustomerInfo: e.CustomerInfo,
	}
}

// =============================================================================
// HOLIDAYS AND SCENARIOS
// =============================================================================

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorDTO is the uniform error body: a stable machine-readable kind plus
// a human message. No internal detail leaks to clients.
type ErrorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
