package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/order"
	"github.com/sokomarket/payflow/internal/provider"
	"github.com/sokomarket/payflow/internal/store"
	"github.com/sokomarket/payflow/internal/transaction"
)

// Reconcile applies a gateway status update, identified by footprint,
// to local state. It is idempotent: unknown footprints, replayed
// terminal callbacks, and lost settle races are all absorbed as no-ops
// so the gateway never sees an error for a benign anomaly. Only a
// failure to settle the transaction row itself is returned, since that
// leaves the update unapplied and worth a retry.
func (s *Service) Reconcile(ctx context.Context, footprint, statusCode string) error {
	log := s.logger.WithFields(logrus.Fields{
		"footprint": footprint,
		"code":      statusCode,
	})

	tx, err := s.transactions.GetByFootprint(ctx, footprint)
	if err != nil {
		return fmt.Errorf("lookup footprint: %w", err)
	}
	if tx == nil {
		s.metrics.Count(ctx, store.MetricUnknownFootprint)
		log.Warn("callback for unknown footprint, ignoring")
		return nil
	}
	if transaction.Terminal(tx.Status) {
		s.metrics.Count(ctx, store.MetricDuplicateCallback)
		log.WithField("status", tx.Status).Info("transaction already settled, ignoring replay")
		return nil
	}

	adapter := s.registry.Resolve(tx.Provider)

	var newStatus string
	switch adapter.NormalizeStatus(statusCode) {
	case provider.OutcomePending:
		// nothing to apply yet
		return nil
	case provider.OutcomeSucceeded:
		newStatus = transaction.StatusCompleted
	case provider.OutcomeFailed:
		newStatus = transaction.StatusRejected
	}

	if err := s.transactions.Settle(ctx, tx.TransactionID, newStatus); err != nil {
		if errors.Is(err, transaction.ErrAlreadySettled) {
			s.metrics.Count(ctx, store.MetricDuplicateCallback)
			log.Info("lost settle race, another reconciliation won")
			return nil
		}
		return fmt.Errorf("settle transaction: %w", err)
	}

	// The transaction row is authoritative from here on. Order advance
	// and buyer notification are best-effort: a failure is logged and
	// absorbed, never re-thrown, and a later idempotent replay may
	// repair the order.
	if newStatus == transaction.StatusCompleted {
		s.metrics.Count(ctx, store.MetricPaymentSettled)
		if err := s.orders.Advance(ctx, tx.OrderID, order.StatusPending, order.StatusProcessing); err != nil {
			if errors.Is(err, order.ErrStatusMismatch) {
				log.WithField("order_id", tx.OrderID).Info("order already past pending")
			} else {
				log.WithField("order_id", tx.OrderID).WithError(err).Error("failed to advance order")
			}
		}
		s.notifyBuyer(ctx, tx, titlePaymentReceived,
			fmt.Sprintf("Your payment of %.0f %s was received. Your order is being processed.", tx.Amount, tx.Currency))
	} else {
		s.metrics.Count(ctx, store.MetricPaymentRejected)
		s.notifyBuyer(ctx, tx, titlePaymentFailed,
			fmt.Sprintf("Your payment of %.0f %s could not be completed.", tx.Amount, tx.Currency))
	}

	log.WithFields(logrus.Fields{
		"transaction_id": tx.TransactionID,
		"order_id":       tx.OrderID,
		"status":         newStatus,
	}).Info("transaction reconciled")
	return nil
}

// Poll asks the gateway for the current status of the payment and
// feeds the answer through Reconcile, then returns the transaction as
// persisted. Already-terminal transactions skip the gateway round trip.
func (s *Service) Poll(ctx context.Context, footprint string) (*transaction.Transaction, error) {
	tx, err := s.transactions.GetByFootprint(ctx, footprint)
	if err != nil {
		return nil, fmt.Errorf("lookup footprint: %w", err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if transaction.Terminal(tx.Status) {
		return tx, nil
	}

	adapter := s.registry.Resolve(tx.Provider)
	result, err := adapter.CheckStatus(ctx, footprint, tx.TxMethod)
	if err != nil {
		// a timed-out or failed check leaves the transaction pending,
		// retryable by the caller
		return nil, err
	}

	if err := s.Reconcile(ctx, footprint, result.Status); err != nil {
		return nil, err
	}

	current, err := s.transactions.Get(ctx, tx.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("re-fetch transaction: %w", err)
	}
	if current == nil {
		return nil, ErrTransactionNotFound
	}
	return current, nil
}

// notifyBuyer queues a dispatch message for the worker. Best-effort:
// the settled transaction is never rolled back over a queue failure.
func (s *Service) notifyBuyer(ctx context.Context, tx *transaction.Transaction, title, message string) {
	o, err := s.orders.Get(ctx, tx.OrderID)
	if err != nil || o == nil {
		s.logger.WithField("order_id", tx.OrderID).WithError(err).
			Warn("cannot resolve buyer for notification")
		return
	}

	body, _ := json.Marshal(map[string]string{
		"user_id":  o.BuyerID,
		"order_id": tx.OrderID,
		"title":    title,
		"message":  message,
	})
	attrs := map[string]string{
		"order_id":       tx.OrderID,
		"transaction_id": tx.TransactionID,
	}
	if err := s.publisher.Send(ctx, string(body), attrs); err != nil {
		s.logger.WithField("order_id", tx.OrderID).WithError(err).
			Error("failed to enqueue buyer notification")
	}
}
