package main

// DispatchMessage is the payload sent from the reconciliation path
// through SQS to this worker.
type DispatchMessage struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
