package transaction

import "time"

// Transaction statuses. pending is the only non-terminal status; once a
// transaction settles to completed or rejected it never moves again.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Transaction types
const (
	TypePayment = "Payment"
	TypeRefund  = "Refund"
)

// Transaction represents the item stored in the transactions DynamoDB
// table. Footprint is the gateway-assigned reference used to correlate
// webhooks and status polls; it is indexed by the footprint-index GSI.
// TxDetails carries the raw gateway payload verbatim for audit.
type Transaction struct {
	TransactionID string    `dynamodbav:"transaction_id"` // PK
	OrderID       string    `dynamodbav:"order_id"`
	Amount        float64   `dynamodbav:"amount"`
	Currency      string    `dynamodbav:"currency"`
	TxType        string    `dynamodbav:"tx_type"`   // Payment | Refund
	TxMethod      string    `dynamodbav:"tx_method"` // MOBILE-MONEY | ORANGE-MONEY | VISA | MASTERCARD
	Status        string    `dynamodbav:"status"`    // pending | completed | rejected
	Provider      string    `dynamodbav:"provider,omitempty"`
	Footprint     string    `dynamodbav:"footprint,omitempty"`
	TxDetails     string    `dynamodbav:"tx_details,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
}

// Terminal reports whether the status admits no further transition.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusRejected
}
