package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// INVOICE - Immutable accepted snapshot
// =============================================================================

// Invoice freezes an accepted QuoteDraft. Exactly one invoice exists per
// work item; acceptance is guarded by a uniqueness constraint on the work
// item reference at the store, so a second acceptance surfaces as a
// conflict instead of silently double-invoicing.
//
// WorkItemID is the composite id string ("origin:nativeID"); billing does
// not depend on the workshop package.
type Invoice struct {
	Number     string
	WorkItemID string
	Origin     string

	Description string
	Labor       []LaborLine
	Parts       []PartLine

	// Frozen at acceptance, rounded to 2 decimals.
	Totals Totals

	Actor    string
	IssuedAt time.Time
}

// InvoiceNumber generates the shop's invoice number for a work item:
// "F-<nativeID>-<unix millis>". F is the shop's factura prefix.
func InvoiceNumber(nativeID int64, issuedAt time.Time) string {
	return fmt.Sprintf("F-%d-%d", nativeID, issuedAt.UnixMilli())
}

// NewInvoice freezes the draft and totals into an immutable record.
func NewInvoice(workItemID, origin string, nativeID int64, draft QuoteDraft, totals Totals, actor string, issuedAt time.Time) Invoice {
	labor := make([]LaborLine, len(draft.Labor))
	copy(labor, draft.Labor)
	parts := make([]PartLine, len(draft.Parts))
	copy(parts, draft.Parts)

	return Invoice{
		Number:      InvoiceNumber(nativeID, issuedAt),
		WorkItemID:  workItemID,
		Origin:      origin,
		Description: draft.Description,
		Labor:       labor,
		Parts:       parts,
		Totals:      totals.Rounded(),
		Actor:       actor,
		IssuedAt:    issuedAt,
	}
}
