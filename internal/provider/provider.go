package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

// Payment method codes accepted from clients and forwarded to the
// gateway.
const (
	MethodMobileMoney = "MOBILE-MONEY"
	MethodOrangeMoney = "ORANGE-MONEY"
	MethodVisa        = "VISA"
	MethodMastercard  = "MASTERCARD"
)

// Outcome is the provider-agnostic reading of a gateway status code.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// IsCardMethod reports whether the method settles through a
// redirect-based card flow rather than a mobile-money push.
func IsCardMethod(method string) bool {
	return method == MethodVisa || method == MethodMastercard
}

// InitiateRequest carries the client's payment request into an adapter.
type InitiateRequest struct {
	Method        string
	Amount        float64
	Currency      string
	PayerPhone    string
	PaymentNumber string
}

// InitiateResult is the normalized outcome of starting a payment.
// Raw holds the gateway response verbatim for audit storage; adapters
// must never drop fields from it.
type InitiateResult struct {
	Footprint   string
	RedirectURL string
	Status      string
	Raw         json.RawMessage
}

// StatusResult is the normalized outcome of a status check.
type StatusResult struct {
	Status string
	Raw    json.RawMessage
}

// Adapter normalizes one gateway's request/response shapes into the
// provider-agnostic contract used by the payment flows.
type Adapter interface {
	Name() string
	InitiatePayment(ctx context.Context, req InitiateRequest, orderID string) (*InitiateResult, error)
	CheckStatus(ctx context.Context, footprint, method string) (*StatusResult, error)
	// RequiresPolling reports whether the caller must poll CheckStatus
	// (or wait for a webhook) after initiating with the given method.
	RequiresPolling(method string) bool
	// NormalizeStatus maps a gateway status code onto an Outcome.
	NormalizeStatus(code string) Outcome
}

// Error is a gateway failure carrying the HTTP status the gateway (or
// its token endpoint) answered with.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Message)
}

// NewError builds a gateway error.
func NewError(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}
