package transaction

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

// FootprintIndex is the GSI on the footprint attribute.
const FootprintIndex = "footprint-index"

// ErrAlreadySettled indicates the transaction had already left pending
// when a settle was attempted. Reconciliation treats this as a benign
// duplicate, not a failure.
var ErrAlreadySettled = errors.New("transaction already settled")

// Store encapsulates operations on the transactions table.
type Store struct {
	client    store.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new transactions Store.
func NewStore(client store.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new transaction row. The conditional put refuses to
// overwrite an existing transaction id, so a retried initiation can
// never clobber an already-persisted row.
func (s *Store) Create(ctx context.Context, tx Transaction) error {
	now := s.nowFunc()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(transaction_id)"),
	})
	if err != nil {
		if store.IsConditionalCheckFailed(err) {
			return fmt.Errorf("transaction %s already exists: %w", tx.TransactionID, err)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches a transaction by transaction_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: transactionID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var tx Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// GetByFootprint looks a transaction up through the footprint GSI.
// Returns (nil, nil) when no transaction carries the footprint; a
// webhook for an unknown footprint is not an error.
func (s *Store) GetByFootprint(ctx context.Context, footprint string) (*Transaction, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(FootprintIndex),
		KeyConditionExpression: awsString("footprint = :fp"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fp": &types.AttributeValueMemberS{Value: footprint},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query footprint index: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var tx Transaction
	if err := attributevalue.UnmarshalMap(out.Items[0], &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// Settle moves the transaction from pending to the given terminal
// status. The conditional write only succeeds while the persisted
// status is still pending, so the store itself enforces the monotonic
// pending -> {completed, rejected} invariant: a replayed callback or a
// lost race surfaces as ErrAlreadySettled.
func (s *Store) Settle(ctx context.Context, transactionID, newStatus string) error {
	if !Terminal(newStatus) {
		return fmt.Errorf("settle to non-terminal status %q", newStatus)
	}

	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: transactionID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: StatusPending},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if store.IsConditionalCheckFailed(err) {
			return ErrAlreadySettled
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsInt32(n int32) *int32    { return &n }
