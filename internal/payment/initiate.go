package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/provider"
	"github.com/sokomarket/payflow/internal/transaction"
)

// InitiateInput is the validated payment request for one order.
type InitiateInput struct {
	Provider      string
	Method        string
	Amount        float64
	Currency      string
	PayerPhone    string
	PaymentNumber string
}

// InitiateOutput tells the client what happens next: follow the
// redirect (card methods) or wait for a webhook / poll the footprint
// (mobile-money methods).
type InitiateOutput struct {
	TransactionID   string `json:"transactionId"`
	Footprint       string `json:"footprint,omitempty"`
	RedirectURL     string `json:"redirectUrl,omitempty"`
	RequiresPolling bool   `json:"requiresPolling"`
}

// Initiate starts a payment for the order. On adapter failure nothing
// is persisted; the provider error propagates with the gateway's
// status code. On success exactly one pending transaction exists whose
// tx_details is the adapter's raw response.
func (s *Service) Initiate(ctx context.Context, orderID string, in InitiateInput) (*InitiateOutput, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	adapter := s.registry.Resolve(in.Provider)

	result, err := adapter.InitiatePayment(ctx, provider.InitiateRequest{
		Method:        in.Method,
		Amount:        in.Amount,
		Currency:      in.Currency,
		PayerPhone:    in.PayerPhone,
		PaymentNumber: in.PaymentNumber,
	}, orderID)
	if err != nil {
		return nil, err
	}

	tx := transaction.Transaction{
		TransactionID: uuid.NewString(),
		OrderID:       orderID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		TxType:        transaction.TypePayment,
		TxMethod:      in.Method,
		Status:        transaction.StatusPending,
		Provider:      adapter.Name(),
		Footprint:     result.Footprint,
		TxDetails:     string(result.Raw),
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":       orderID,
		"transaction_id": tx.TransactionID,
		"method":         in.Method,
		"provider":       adapter.Name(),
		"footprint":      result.Footprint,
	}).Info("payment initiated")

	return &InitiateOutput{
		TransactionID:   tx.TransactionID,
		Footprint:       result.Footprint,
		RedirectURL:     result.RedirectURL,
		RequiresPolling: adapter.RequiresPolling(in.Method),
	}, nil
}
