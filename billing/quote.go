/*
Package billing computes price quotes and freezes them into invoices.

PURPOSE:
  A QuoteDraft prices a work item as labor lines (hours x hourly rate) plus
  part lines (quantity x unit price). Quotes originating from a paid
  appointment carry a flat reservation-deposit credit. A fixed VAT rate is
  applied on the discounted subtotal.

PRECISION:
  All monetary math uses decimal.Decimal to avoid floating-point error.
  Values are rounded to 2 decimal places only at the display/persistence
  edge (Totals.Rounded), never mid-computation, so rounding error does not
  compound across line items.

KEY TYPES:
  - LaborLine / PartLine: the priced draft lines
  - QuoteDraft: mutable pre-acceptance proposal
  - Engine: configured rates (VAT, deposit credit)
  - Totals: subtotal, discount, tax, total

SEE ALSO:
  - invoice.go: the immutable accepted snapshot
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DRAFT LINES
// =============================================================================

type LaborLine struct {
	Description string
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
}

// Subtotal is hours x rate, unrounded.
func (l LaborLine) Subtotal() decimal.Decimal {
	return l.Hours.Mul(l.HourlyRate)
}

type PartLine struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// Subtotal is quantity x unit price, unrounded.
func (p PartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(p.Quantity).Mul(p.UnitPrice)
}

// QuoteDraft is the mutable pricing proposal for one work item.
// It becomes immutable once accepted into an Invoice.
type QuoteDraft struct {
	Description string
	Labor       []LaborLine
	Parts       []PartLine
}

// LaborSubtotal sums the labor lines, unrounded.
func (d QuoteDraft) LaborSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range d.Labor {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// PartsSubtotal sums the part lines, unrounded.
func (d QuoteDraft) PartsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range d.Parts {
		sum = sum.Add(p.Subtotal())
	}
	return sum
}

// =============================================================================
// ENGINE - Configured rates
// =============================================================================

// Default rates for the shop. VAT is the Spanish general rate; the deposit
// credit matches the fixed reservation payment taken at booking time.
var (
	DefaultVATRate       = decimal.NewFromFloat(0.21)
	DefaultDepositCredit = decimal.NewFromFloat(10.00)
)

// Engine computes totals with configured rates. Rates are configuration,
// not constants buried in the math.
type Engine struct {
	VATRate       decimal.Decimal
	DepositCredit decimal.Decimal
}

// NewEngine returns an engine with the default rates.
func NewEngine() *Engine {
	return &Engine{VATRate: DefaultVATRate, DepositCredit: DefaultDepositCredit}
}

// =============================================================================
// TOTALS
// =============================================================================

// Totals is the computed price breakdown. Values are unrounded until
// Rounded() is applied at the display/persistence edge.
type Totals struct {
	Subtotal decimal.Decimal // raw labor + parts
	Discount decimal.Decimal // deposit credit actually applied
	Tax      decimal.Decimal // VAT on the discounted subtotal
	Total    decimal.Decimal
}

// Rounded returns the totals rounded to 2 decimal places (half up).
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Discount: t.Discount.Round(2),
		Tax:      t.Tax.Round(2),
		Total:    t.Total.Round(2),
	}
}

// ComputeTotals prices a draft. Pure function: identical inputs always
// yield identical output.
//
// The deposit credit applies only to appointment-origin quotes and never
// pushes the subtotal negative: discount = min(credit, subtotal).
func (e *Engine) ComputeTotals(draft QuoteDraft, originIsAppointment bool) Totals {
	subtotal := draft.LaborSubtotal().Add(draft.PartsSubtotal())

	discount := decimal.Zero
	if originIsAppointment {
		discount = e.DepositCredit
		if subtotal.LessThan(discount) {
			discount = subtotal
		}
	}

	discounted := subtotal.Sub(discount)
	tax := discounted.Mul(e.VATRate)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    discounted.Add(tax),
	}
}
