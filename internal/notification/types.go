package notification

import "time"

// Notification represents the item stored in the notifications
// DynamoDB table. Rows are created by the dispatch worker after a push
// delivery succeeds; the only mutation afterwards is flipping IsRead.
type Notification struct {
	NotificationID string    `dynamodbav:"notification_id"` // PK
	UserID         string    `dynamodbav:"user_id"`
	Title          string    `dynamodbav:"title"`
	Message        string    `dynamodbav:"message"`
	IsRead         bool      `dynamodbav:"is_read"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
}
