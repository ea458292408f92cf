// Package payment drives an order from placement through payment
// settlement: initiation against the gateway, then reconciliation of
// webhook callbacks and status polls into transaction and order state,
// with buyer notifications queued as a decoupled side effect.
package payment

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/order"
	"github.com/sokomarket/payflow/internal/provider"
	"github.com/sokomarket/payflow/internal/store"
	"github.com/sokomarket/payflow/internal/transaction"
)

// Notification copy sent to buyers on settlement.
const (
	titlePaymentReceived = "Payment received"
	titlePaymentFailed   = "Payment failed"
)

var (
	// ErrOrderNotFound indicates the order targeted by an initiation
	// does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrTransactionNotFound indicates no transaction carries the
	// footprint a poll asked about.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Service wires the payment flows to their collaborators.
type Service struct {
	registry     *provider.Registry
	transactions *transaction.Store
	orders       *order.Store
	publisher    *store.Publisher
	metrics      *store.Metrics
	logger       *logrus.Logger
}

// NewService builds the payment service.
func NewService(
	registry *provider.Registry,
	transactions *transaction.Store,
	orders *order.Store,
	publisher *store.Publisher,
	metrics *store.Metrics,
	logger *logrus.Logger,
) *Service {
	return &Service{
		registry:     registry,
		transactions: transactions,
		orders:       orders,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
	}
}
