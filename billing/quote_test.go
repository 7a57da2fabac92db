package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopro/workshop-engine/billing"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// standardDraft totals 105.00 before discount:
// labor 2h x 30.00 = 60.00, parts 3 x 15.00 = 45.00
func standardDraft() billing.QuoteDraft {
	return billing.QuoteDraft{
		Description: "Brake service",
		Labor: []billing.LaborLine{
			{Description: "Labor", Hours: decimal.NewFromInt(2), HourlyRate: decimal.NewFromInt(30)},
		},
		Parts: []billing.PartLine{
			{Description: "Brake pads", Quantity: 3, UnitPrice: decimal.NewFromInt(15)},
		},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// TOTALS TESTS
// =============================================================================

func TestComputeTotals_AppointmentGetsDepositCredit(t *testing.T) {
	// GIVEN: A 105.00 draft for an appointment-origin item
	// WHEN: Computing totals
	// THEN: 10.00 deposit credit applies, 21% VAT on the discounted 95.00

	engine := billing.NewEngine()
	totals := engine.ComputeTotals(standardDraft(), true).Rounded()

	assert.True(t, dec("105.00").Equal(totals.Subtotal), "subtotal: %s", totals.Subtotal)
	assert.True(t, dec("10.00").Equal(totals.Discount), "discount: %s", totals.Discount)
	assert.True(t, dec("19.95").Equal(totals.Tax), "tax: %s", totals.Tax)
	assert.True(t, dec("114.95").Equal(totals.Total), "total: %s", totals.Total)
}

func TestComputeTotals_WalkInGetsNoDiscount(t *testing.T) {
	// GIVEN: The same 105.00 draft for a walk-in item
	// WHEN: Computing totals
	// THEN: No discount, 21% VAT on the full subtotal

	engine := billing.NewEngine()
	totals := engine.ComputeTotals(standardDraft(), false).Rounded()

	assert.True(t, dec("105.00").Equal(totals.Subtotal))
	assert.True(t, decimal.Zero.Equal(totals.Discount))
	assert.True(t, dec("22.05").Equal(totals.Tax))
	assert.True(t, dec("127.05").Equal(totals.Total))
}

func TestComputeTotals_DiscountNeverExceedsSubtotal(t *testing.T) {
	// GIVEN: An appointment draft worth less than the deposit credit
	// WHEN: Computing totals
	// THEN: Discount is capped at the subtotal, total stays at zero

	engine := billing.NewEngine()
	draft := billing.QuoteDraft{
		Parts: []billing.PartLine{
			{Description: "Valve cap", Quantity: 2, UnitPrice: decimal.NewFromInt(3)},
		},
	}

	totals := engine.ComputeTotals(draft, true).Rounded()

	assert.True(t, dec("6.00").Equal(totals.Subtotal))
	assert.True(t, dec("6.00").Equal(totals.Discount))
	assert.True(t, decimal.Zero.Equal(totals.Tax))
	assert.True(t, decimal.Zero.Equal(totals.Total))
}

func TestComputeTotals_EmptyDraftIsZero(t *testing.T) {
	engine := billing.NewEngine()
	totals := engine.ComputeTotals(billing.QuoteDraft{}, true)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotals_Deterministic(t *testing.T) {
	// Identical inputs always produce identical totals.
	engine := billing.NewEngine()

	first := engine.ComputeTotals(standardDraft(), true)
	second := engine.ComputeTotals(standardDraft(), true)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestComputeTotals_RoundingOnlyAtTheEdge(t *testing.T) {
	// GIVEN: Lines whose intermediate values carry sub-cent precision
	// WHEN: Computing and then rounding
	// THEN: The unrounded total keeps full precision; Rounded() is 2dp

	engine := billing.NewEngine()
	draft := billing.QuoteDraft{
		Labor: []billing.LaborLine{
			{Description: "Diagnosis", Hours: dec("0.75"), HourlyRate: dec("33.33")},
		},
	}

	raw := engine.ComputeTotals(draft, false)
	// 0.75 * 33.33 = 24.9975; tax 5.249475; total 30.247
	assert.True(t, dec("24.9975").Equal(raw.Subtotal))

	rounded := raw.Rounded()
	assert.True(t, dec("25.00").Equal(rounded.Subtotal))
	assert.True(t, dec("30.25").Equal(rounded.Total))
}

// =============================================================================
// INVOICE TESTS
// =============================================================================

func TestInvoiceNumber_Format(t *testing.T) {
	issuedAt := time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC)
	number := billing.InvoiceNumber(42, issuedAt)

	assert.Equal(t, "F-42-1788258600000", number)
}

func TestNewInvoice_FreezesDraftAndTotals(t *testing.T) {
	// GIVEN: An accepted draft
	// WHEN: Building the invoice
	// THEN: Lines are copied, totals are rounded, and later draft edits
	//       do not leak into the invoice

	engine := billing.NewEngine()
	draft := standardDraft()
	totals := engine.ComputeTotals(draft, true)
	issuedAt := time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC)

	inv := billing.NewInvoice("appointment:7", "appointment", 7, draft, totals, "lucia", issuedAt)

	require.Len(t, inv.Labor, 1)
	require.Len(t, inv.Parts, 1)
	assert.Equal(t, "appointment:7", inv.WorkItemID)
	assert.Equal(t, "lucia", inv.Actor)
	assert.True(t, dec("114.95").Equal(inv.Totals.Total))

	// Mutating the draft after acceptance must not alter the invoice.
	draft.Parts[0].Quantity = 99
	assert.Equal(t, int64(3), inv.Parts[0].Quantity)
}
