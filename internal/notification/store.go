package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sokomarket/payflow/internal/store"
)

// UserIndex is the GSI on the user_id attribute, used to list a user's
// notifications.
const UserIndex = "user-index"

// Store encapsulates operations on the notifications table.
type Store struct {
	client    store.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new notifications Store.
func NewStore(client store.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a notification row with is_read=false.
func (s *Store) Create(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.nowFunc()
	}
	n.IsRead = false

	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// ListByUser returns the notifications for a user, newest first not
// guaranteed (index order).
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(UserIndex),
		KeyConditionExpression: awsString("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query user index: %w", err)
	}
	items := make([]Notification, 0, len(out.Items))
	for _, raw := range out.Items {
		var n Notification
		if err := attributevalue.UnmarshalMap(raw, &n); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		items = append(items, n)
	}
	return items, nil
}

// MarkRead flips is_read to true.
func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"notification_id": &types.AttributeValueMemberS{Value: notificationID},
		},
		UpdateExpression: awsString("SET is_read = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		ConditionExpression: awsString("attribute_exists(notification_id)"),
	})
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
