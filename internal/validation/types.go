package validation

// InitiatePaymentRequest is the payload for POST /orders/:orderId/payments
type InitiatePaymentRequest struct {
	Provider      string  `json:"provider,omitempty"`                                                               // optional provider id, default applies
	Method        string  `json:"method" validate:"required,oneof=MOBILE-MONEY ORANGE-MONEY VISA MASTERCARD"`      // payment method code
	Amount        float64 `json:"amount" validate:"required,gt=0"`                                                  // charge amount
	Currency      string  `json:"currency" validate:"required,len=3"`                                               // ISO currency code, e.g. XAF
	PayerPhone    string  `json:"payerPhone,omitempty"`                                                             // required for mobile-money methods
	PaymentNumber string  `json:"paymentNumber,omitempty"`                                                          // optional client payment reference
}

// WebhookPayload is the body the gateway posts to /payments/callback.
// Unknown extra fields are ignored here; the reconciliation path works
// off footprint and status alone.
type WebhookPayload struct {
	Footprint string `json:"footprint" validate:"required"`
	Status    string `json:"status" validate:"required"`
}
