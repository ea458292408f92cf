package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/sokomarket/payflow/internal/order"
	"github.com/sokomarket/payflow/internal/provider"
	"github.com/sokomarket/payflow/internal/store"
	"github.com/sokomarket/payflow/internal/transaction"
)

func (h *harness) seedTransaction(t *testing.T, tx transaction.Transaction) {
	t.Helper()
	if tx.Status == "" {
		tx.Status = transaction.StatusPending
	}
	if tx.Provider == "" {
		tx.Provider = h.adapter.Name()
	}
	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		t.Fatalf("marshal transaction: %v", err)
	}
	h.dynamo.tables["transactions"][tx.TransactionID] = item
}

func (h *harness) getOrder(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := h.orders.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o == nil {
		t.Fatalf("order %s missing", id)
	}
	return o
}

func (h *harness) getTransaction(t *testing.T, id string) *transaction.Transaction {
	t.Helper()
	tx, err := h.transactions.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx == nil {
		t.Fatalf("transaction %s missing", id)
	}
	return tx
}

func TestReconcile_SuccessfulSettlement(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	h.seedOrder(t, order.Order{OrderID: "o1", BuyerID: "buyer-1"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t1", OrderID: "o1", Amount: 1500, Currency: "XAF",
		TxMethod: provider.MethodMobileMoney, Footprint: "fp-1",
	})

	if err := h.svc.Reconcile(context.Background(), "fp-1", "T"); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if got := h.getTransaction(t, "t1").Status; got != transaction.StatusCompleted {
		t.Fatalf("expected completed transaction, got %s", got)
	}
	if got := h.getOrder(t, "o1").Status; got != order.StatusProcessing {
		t.Fatalf("expected processing order, got %s", got)
	}

	msgs := h.sqs.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 notification message, got %d", len(msgs))
	}
	if msgs[0]["user_id"] != "buyer-1" || msgs[0]["title"] != "Payment received" {
		t.Fatalf("unexpected notification message: %+v", msgs[0])
	}
	if h.cw.counts[store.MetricPaymentSettled] != 1 {
		t.Fatalf("expected PaymentSettled metric")
	}
}

func TestReconcile_ReplayIsNoOp(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	h.seedOrder(t, order.Order{OrderID: "o2", BuyerID: "buyer-2"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t2", OrderID: "o2", Amount: 1500, Currency: "XAF",
		TxMethod: provider.MethodMobileMoney, Footprint: "fp-2",
	})

	if err := h.svc.Reconcile(context.Background(), "fp-2", "T"); err != nil {
		t.Fatalf("first Reconcile error: %v", err)
	}
	// the gateway retries the same callback
	if err := h.svc.Reconcile(context.Background(), "fp-2", "T"); err != nil {
		t.Fatalf("second Reconcile error: %v", err)
	}

	if got := h.getOrder(t, "o2").Status; got != order.StatusProcessing {
		t.Fatalf("replay changed order status: %s", got)
	}
	if len(h.sqs.messages()) != 1 {
		t.Fatalf("replay must not enqueue a second notification, got %d", len(h.sqs.messages()))
	}
	if h.cw.counts[store.MetricDuplicateCallback] != 1 {
		t.Fatalf("expected DuplicateCallback metric")
	}
}

func TestReconcile_Rejected(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	h.seedOrder(t, order.Order{OrderID: "o3", BuyerID: "buyer-3"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t3", OrderID: "o3", Amount: 900, Currency: "XAF",
		TxMethod: provider.MethodOrangeMoney, Footprint: "fp-3",
	})

	if err := h.svc.Reconcile(context.Background(), "fp-3", "R"); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if got := h.getTransaction(t, "t3").Status; got != transaction.StatusRejected {
		t.Fatalf("expected rejected transaction, got %s", got)
	}
	// a rejected payment never advances the order
	if got := h.getOrder(t, "o3").Status; got != order.StatusPending {
		t.Fatalf("order must stay pending, got %s", got)
	}

	msgs := h.sqs.messages()
	if len(msgs) != 1 || msgs[0]["title"] != "Payment failed" {
		t.Fatalf("expected a Payment failed notification, got %+v", msgs)
	}
	if h.cw.counts[store.MetricPaymentRejected] != 1 {
		t.Fatalf("expected PaymentRejected metric")
	}
}

func TestReconcile_PendingCodeIsNoOp(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	h.seedOrder(t, order.Order{OrderID: "o4", BuyerID: "buyer-4"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t4", OrderID: "o4", TxMethod: provider.MethodMobileMoney, Footprint: "fp-4",
	})

	if err := h.svc.Reconcile(context.Background(), "fp-4", "E"); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}

	if got := h.getTransaction(t, "t4").Status; got != transaction.StatusPending {
		t.Fatalf("pending code must not settle, got %s", got)
	}
	if len(h.sqs.messages()) != 0 {
		t.Fatalf("pending code must not notify")
	}
}

func TestReconcile_UnknownFootprint(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})

	// unmatched callbacks are accepted without state action
	if err := h.svc.Reconcile(context.Background(), "fp-ghost", "T"); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if h.cw.counts[store.MetricUnknownFootprint] != 1 {
		t.Fatalf("expected UnknownFootprint metric")
	}
	if len(h.sqs.messages()) != 0 {
		t.Fatalf("unknown footprint must not notify")
	}
}

func TestReconcile_QueueFailureDoesNotFailSettlement(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	h.sqs.err = errors.New("queue unavailable")
	h.seedOrder(t, order.Order{OrderID: "o5", BuyerID: "buyer-5"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t5", OrderID: "o5", TxMethod: provider.MethodMobileMoney, Footprint: "fp-5",
	})

	if err := h.svc.Reconcile(context.Background(), "fp-5", "T"); err != nil {
		t.Fatalf("notification failure must not fail reconciliation: %v", err)
	}
	if got := h.getTransaction(t, "t5").Status; got != transaction.StatusCompleted {
		t.Fatalf("transaction must settle despite queue failure, got %s", got)
	}
}

func TestReconcile_OrderAlreadyAdvanced(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	h.seedOrder(t, order.Order{OrderID: "o6", BuyerID: "buyer-6", Status: order.StatusDispatched})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t6", OrderID: "o6", TxMethod: provider.MethodMobileMoney, Footprint: "fp-6",
	})

	if err := h.svc.Reconcile(context.Background(), "fp-6", "T"); err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	// settlement lands, the order is left where it is
	if got := h.getTransaction(t, "t6").Status; got != transaction.StatusCompleted {
		t.Fatalf("expected completed transaction, got %s", got)
	}
	if got := h.getOrder(t, "o6").Status; got != order.StatusDispatched {
		t.Fatalf("order must never regress, got %s", got)
	}
}

func TestPoll_SettlesFromGateway(t *testing.T) {
	adapter := &fakeAdapter{
		name:         "touchpay",
		statusResult: &provider.StatusResult{Status: "T"},
	}
	h := newHarness(t, adapter)
	h.seedOrder(t, order.Order{OrderID: "o7", BuyerID: "buyer-7"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t7", OrderID: "o7", TxMethod: provider.MethodMobileMoney, Footprint: "fp-7",
	})

	tx, err := h.svc.Poll(context.Background(), "fp-7")
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if tx.Status != transaction.StatusCompleted {
		t.Fatalf("expected completed after poll, got %s", tx.Status)
	}
	if adapter.statusCalls != 1 {
		t.Fatalf("expected one status check, got %d", adapter.statusCalls)
	}

	// a second poll returns the terminal row without a gateway round trip
	tx2, err := h.svc.Poll(context.Background(), "fp-7")
	if err != nil {
		t.Fatalf("second Poll error: %v", err)
	}
	if tx2.Status != transaction.StatusCompleted {
		t.Fatalf("expected completed, got %s", tx2.Status)
	}
	if adapter.statusCalls != 1 {
		t.Fatalf("terminal transaction must not hit the gateway again")
	}
}

func TestPoll_GatewayFailureLeavesPending(t *testing.T) {
	adapter := &fakeAdapter{
		name:      "touchpay",
		statusErr: provider.NewError(504, "gateway timeout"),
	}
	h := newHarness(t, adapter)
	h.seedOrder(t, order.Order{OrderID: "o8", BuyerID: "buyer-8"})
	h.seedTransaction(t, transaction.Transaction{
		TransactionID: "t8", OrderID: "o8", TxMethod: provider.MethodMobileMoney, Footprint: "fp-8",
	})

	_, err := h.svc.Poll(context.Background(), "fp-8")
	if err == nil {
		t.Fatalf("expected error from gateway")
	}
	if got := h.getTransaction(t, "t8").Status; got != transaction.StatusPending {
		t.Fatalf("failed check must leave the transaction pending, got %s", got)
	}
}

func TestPoll_UnknownFootprint(t *testing.T) {
	h := newHarness(t, &fakeAdapter{name: "touchpay"})
	_, err := h.svc.Poll(context.Background(), "fp-nope")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}
