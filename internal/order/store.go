package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sokomarket/payflow/internal/store"
)

// ErrStatusMismatch indicates the order was not in the expected status
// when a conditional transition was attempted.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// ErrBackwardTransition indicates a transition that would move the
// order lifecycle backward. Such transitions are refused before any
// write is attempted.
var ErrBackwardTransition = errors.New("order status may not regress")

// Store encapsulates operations on the orders table.
type Store struct {
	client    store.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client store.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Put writes an order unconditionally. Order creation itself happens at
// checkout, outside this service; Put exists for seeding and tests.
func (s *Store) Put(ctx context.Context, o Order) error {
	now := s.nowFunc()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
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

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	key := map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// Advance conditionally moves the order from expectedStatus to newStatus.
// The write only succeeds while the persisted status still equals
// expectedStatus, so concurrent reconciliation attempts are serialized
// by the store itself. Returns ErrBackwardTransition when newStatus is
// not strictly ahead of expectedStatus, ErrStatusMismatch when the
// condition failed.
func (s *Store) Advance(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	fromRank, ok := statusRank[expectedStatus]
	if !ok {
		return fmt.Errorf("unknown order status %q", expectedStatus)
	}
	toRank, ok := statusRank[newStatus]
	if !ok {
		return fmt.Errorf("unknown order status %q", newStatus)
	}
	if toRank <= fromRank {
		return ErrBackwardTransition
	}

	now := s.nowFunc()
	updateExpr := "SET #s = :new, updated_at = :ua"
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         &updateExpr,
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if store.IsConditionalCheckFailed(err) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// MarkDispatched records dispatch details and flips the dispatched
// flag while advancing processing -> dispatched. Seller-driven.
func (s *Store) MarkDispatched(ctx context.Context, orderID string, details map[string]interface{}) error {
	detailsAttr, err := attributevalue.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal dispatch details: %w", err)
	}
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, dispatched = :d, dispatch_details = :dd, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: StatusDispatched},
			":d":        &types.AttributeValueMemberBOOL{Value: true},
			":dd":       detailsAttr,
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: StatusProcessing},
		},
		ConditionExpression: awsString("#s = :expected"),
	}
	_, err = s.client.UpdateItem(ctx, input)
	if err != nil {
		if store.IsConditionalCheckFailed(err) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
