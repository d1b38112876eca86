package domain

import (
	"time"

	"github.com/google/uuid"
)

type QuoteResponseStatus string

const (
	QuoteResponseStatusPending  QuoteResponseStatus = "pending"
	QuoteResponseStatusAccepted QuoteResponseStatus = "accepted"
	QuoteResponseStatusRejected QuoteResponseStatus = "rejected"
)

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

type QuoteResponse struct {
	ID                    uuid.UUID           `json:"id"`
	QuoteRequestID        uuid.UUID           `json:"quoteRequest"`
	ResponderID           uuid.UUID           `json:"responder"`
	QuoteAmount           float64             `json:"quoteAmount"`
	Currency              Currency            `json:"currency"`
	Validity              time.Time           `json:"validity"`
	TermsAndConditions    string              `json:"termsAndConditions,omitempty"`
	Notes                 string              `json:"notes,omitempty"`
	EstimatedDeliveryDays *int                `json:"estimatedDeliveryDays,omitempty"`
	Status                QuoteResponseStatus `json:"status"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

type QuoteResponseInput struct {
	QuoteAmount           float64
	Currency              Currency
	Validity              time.Time
	TermsAndConditions    string
	Notes                 string
	EstimatedDeliveryDays *int
}

func (in *QuoteResponseInput) Validate() error {
	if in.Currency == "" {
		in.Currency = CurrencyINR
	}
	var fe fieldErrors
	fe.check(in.QuoteAmount > 0, "quoteAmount")
	fe.check(in.Currency.Valid(), "currency")
	fe.check(!in.Validity.IsZero(), "validity")
	fe.check(in.EstimatedDeliveryDays == nil || *in.EstimatedDeliveryDays >= 1, "estimatedDeliveryDays")
	return fe.err()
}

func NewQuoteResponse(requestID, responderID uuid.UUID, in QuoteResponseInput, now time.Time) *QuoteResponse {
	return &QuoteResponse{
		ID:                    uuid.New(),
		QuoteRequestID:        requestID,
		ResponderID:           responderID,
		QuoteAmount:           in.QuoteAmount,
		Currency:              in.Currency,
		Validity:              in.Validity,
		TermsAndConditions:    in.TermsAndConditions,
		Notes:                 in.Notes,
		EstimatedDeliveryDays: in.EstimatedDeliveryDays,
		Status:                QuoteResponseStatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (r *QuoteResponse) IsPending() bool {
	return r.Status == QuoteResponseStatusPending
}

// QuoteResponseView embeds the responder summary, and for a provider's own
// listing, the parent request with its owner.
type QuoteResponseView struct {
	QuoteResponse
	Responder *UserSummary      `json:"responderInfo,omitempty"`
	Request   *QuoteRequestView `json:"quoteRequestInfo,omitempty"`
}

// AcceptResult is the committed state after an accept, including the sibling
// responses that were rejected in the same transaction.
type AcceptResult struct {
	Accepted *QuoteResponse  `json:"accepted"`
	Request  *QuoteRequest   `json:"quoteRequest"`
	Rejected []QuoteResponse `json:"-"`
}
