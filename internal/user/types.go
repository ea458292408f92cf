package user

import "time"

// User is the slice of the users table this service touches: identity
// plus the optional device push token. PushToken empty means the user
// has no registered device.
type User struct {
	UserID    string    `dynamodbav:"user_id"` // PK
	Name      string    `dynamodbav:"name,omitempty"`
	PushToken string    `dynamodbav:"push_token,omitempty"`
	UpdatedAt time.Time `dynamodbav:"updated_at,omitempty"`
}
