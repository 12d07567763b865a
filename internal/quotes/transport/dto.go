// Package transport defines request/response DTOs for the quotes module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// NegotiationItem is one line item as fed into the negotiation calculator.
type NegotiationItem struct {
	ID             string  `json:"id" binding:"required"`
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity" binding:"required,gt=0"`
	UnitPriceCents int64   `json:"unitPriceCents" binding:"gte=0"`
	CostCents      int64   `json:"costCents" binding:"gte=0"`
	ExpenseCents   int64   `json:"expenseCents" binding:"gte=0"`
}

// NegotiationPreviewRequest computes a breakdown without persisting anything.
// ManualPriceCents must be validated non-negative by the caller contract;
// the binding tag enforces it at the edge.
type NegotiationPreviewRequest struct {
	Items            []NegotiationItem `json:"items" binding:"required,dive"`
	CourtesyItemIDs  []string          `json:"courtesyItemIds"`
	ManualPriceCents *int64            `json:"manualPriceCents" binding:"omitempty,gte=0"`
	Markup           *float64          `json:"markup" binding:"omitempty,gte=0"`
}

// NegotiationBreakdown is the structured output of the negotiation engine.
type NegotiationBreakdown struct {
	CostTotalCents            int64   `json:"costTotalCents"`
	ExpenseTotalCents         int64   `json:"expenseTotalCents"`
	ReferencePriceCents       int64   `json:"referencePriceCents"`
	FinalPriceCents           int64   `json:"finalPriceCents"`
	NetProfitCents            int64   `json:"netProfitCents"`
	MarginPercent             float64 `json:"marginPercent"`
	MarkupAdjustedProfitCents int64   `json:"markupAdjustedProfitCents"`
	DiscountRatio             float64 `json:"discountRatio"`
	MarginWarning             bool    `json:"marginWarning"`
}

// ApplyNegotiationRequest persists a courtesy selection and optional manual
// price on a quote, recomputing and storing the breakdown.
type ApplyNegotiationRequest struct {
	CourtesyItemIDs  []string `json:"courtesyItemIds"`
	ManualPriceCents *int64   `json:"manualPriceCents" binding:"omitempty,gte=0"`
}

// UpdateStatusRequest moves a quote to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CommercialConditionResponse describes the discount and advance-payment
// rule attached to a quote.
type CommercialConditionResponse struct {
	DiscountPercent    float64 `json:"discountPercent"`
	AdvanceKind        string  `json:"advanceKind"`
	AdvanceValue       int64   `json:"advanceValue"`
	AdvanceAmountCents int64   `json:"advanceAmountCents"`
}

// QuoteItemResponse is one line item of a quote.
type QuoteItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Quantity       float64   `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	CostCents      int64     `json:"costCents"`
	ExpenseCents   int64     `json:"expenseCents"`
	IsCourtesy     bool      `json:"isCourtesy"`
}

// QuoteResponse is the full quote representation for the staff UI.
type QuoteResponse struct {
	ID                  uuid.UUID                    `json:"id"`
	PromiseID           uuid.UUID                    `json:"promiseId"`
	Status              string                       `json:"status"`
	SelectedByProspect  *bool                        `json:"selectedByProspect"`
	ManualPriceCents    *int64                       `json:"manualPriceCents,omitempty"`
	Items               []QuoteItemResponse          `json:"items"`
	Breakdown           NegotiationBreakdown         `json:"breakdown"`
	CommercialCondition *CommercialConditionResponse `json:"commercialCondition,omitempty"`
	CreatedAt           time.Time                    `json:"createdAt"`
	UpdatedAt           time.Time                    `json:"updatedAt"`
}

// SelectQuoteRequest carries the prospect's choice. Selected=false means the
// prospect withdrew a previous selection; a required binding would reject it,
// so the field is validated by shape only.
type SelectQuoteRequest struct {
	Selected bool `json:"selected"`
}

// SelectQuoteResponse acknowledges a prospect's selection in the portal.
type SelectQuoteResponse struct {
	QuoteID  uuid.UUID `json:"quoteId"`
	Selected bool      `json:"selected"`
}
