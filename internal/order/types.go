package order

import "time"

// Order statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDispatched = "dispatched"
	StatusDelivered  = "delivered"
)

// statusRank orders the lifecycle so a transition can be checked for
// direction before touching the store. delivered is terminal.
var statusRank = map[string]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusDispatched: 2,
	StatusDelivered:  3,
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID         string                 `dynamodbav:"order_id"` // PK
	BuyerID         string                 `dynamodbav:"buyer_id"`
	SellerID        string                 `dynamodbav:"seller_id"`
	ProductID       string                 `dynamodbav:"product_id"`
	Amount          float64                `dynamodbav:"amount"`
	ShipAddress     string                 `dynamodbav:"ship_address,omitempty"`
	Weight          float64                `dynamodbav:"weight,omitempty"`
	DispatchDetails map[string]interface{} `dynamodbav:"dispatch_details,omitempty"`
	Dispatched      bool                   `dynamodbav:"dispatched"`
	DeliveryDate    *time.Time             `dynamodbav:"delivery_date,omitempty"`
	Status          string                 `dynamodbav:"status"` // pending | processing | dispatched | delivered
	CreatedAt       time.Time              `dynamodbav:"created_at"`
	UpdatedAt       time.Time              `dynamodbav:"updated_at"`
}
