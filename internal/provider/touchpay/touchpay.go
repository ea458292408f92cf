// Package touchpay adapts the TouchPay gateway to the provider
// contract. Card methods come back with a redirect URL for the 3-D
// Secure flow; mobile-money methods come back with a footprint the
// caller polls (or a webhook resolves).
package touchpay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sokomarket/payflow/internal/provider"
)

// ProviderID is the registry key for this adapter.
const ProviderID = "touchpay"

// Gateway status codes.
const (
	codeSucceeded = "T"
	codePending   = "E"
)

// Adapter implements provider.Adapter over a Client.
type Adapter struct {
	client *Client
}

// New returns a TouchPay adapter.
func New(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string { return ProviderID }

// initiateResponse is the slice of the gateway answer the adapter
// reads. The full body still travels in Raw.
type initiateResponse struct {
	Status     string `json:"status"`
	Footprint  string `json:"footprint"`
	PaymentURL string `json:"payment_url"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// InitiatePayment starts a payment for an order.
func (a *Adapter) InitiatePayment(ctx context.Context, req provider.InitiateRequest, orderID string) (*provider.InitiateResult, error) {
	payload := map[string]interface{}{
		"order_id": orderID,
		"amount":   req.Amount,
		"currency": req.Currency,
		"service":  req.Method,
	}
	if req.PayerPhone != "" {
		payload["payer"] = req.PayerPhone
	}
	if req.PaymentNumber != "" {
		payload["payment_number"] = req.PaymentNumber
	}

	raw, err := a.client.post(ctx, "/v1/transactions", payload)
	if err != nil {
		return nil, err
	}

	var resp initiateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, provider.NewError(http.StatusBadGateway, "malformed initiate response")
	}
	if a.NormalizeStatus(resp.Status) == provider.OutcomeFailed {
		return nil, provider.NewError(http.StatusBadGateway, "gateway refused the payment: "+resp.Status)
	}

	return &provider.InitiateResult{
		Footprint:   resp.Footprint,
		RedirectURL: resp.PaymentURL,
		Status:      resp.Status,
		Raw:         raw,
	}, nil
}

// CheckStatus polls the gateway for the payment identified by footprint.
func (a *Adapter) CheckStatus(ctx context.Context, footprint, method string) (*provider.StatusResult, error) {
	raw, err := a.client.post(ctx, "/v1/transactions/status", map[string]interface{}{
		"footprint": footprint,
		"service":   method,
	})
	if err != nil {
		return nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, provider.NewError(http.StatusBadGateway, "malformed status response")
	}
	return &provider.StatusResult{
		Status: resp.Status,
		Raw:    raw,
	}, nil
}

// RequiresPolling reports whether the method needs a poll/webhook to
// settle. Card redirects settle out of band.
func (a *Adapter) RequiresPolling(method string) bool {
	return !provider.IsCardMethod(method)
}

// NormalizeStatus maps TouchPay status codes onto outcomes. Anything
// outside the documented success/pending codes is read as a failure.
func (a *Adapter) NormalizeStatus(code string) provider.Outcome {
	switch code {
	case codeSucceeded:
		return provider.OutcomeSucceeded
	case codePending:
		return provider.OutcomePending
	default:
		return provider.OutcomeFailed
	}
}
