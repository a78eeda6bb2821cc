package pending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/shopcore/go-checkout-pipeline/internal/aws"
)

// ErrIntentExists indicates a conditional create hit an existing checkout id.
var ErrIntentExists = errors.New("pending intent already exists")

// Store encapsulates intent operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a configured Store. ttlWindow bounds how long resolved
// intents linger before DynamoDB TTL reaps them (e.g. 48h).
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// Create writes a fresh IN_PROGRESS intent. The conditional put guards
// against checkout id reuse; a duplicate returns ErrIntentExists.
func (s *Store) Create(ctx context.Context, checkoutID, buyerID string, amount float64) error {
	now := s.nowFunc()
	rec := Intent{
		CheckoutID: checkoutID,
		BuyerID:    buyerID,
		Amount:     amount,
		Status:     StatusInProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(checkout_id)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrIntentExists
		}
		return fmt.Errorf("put intent: %w", err)
	}
	return nil
}

// Get retrieves an intent by checkout id. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, checkoutID string) (*Intent, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"checkout_id": &types.AttributeValueMemberS{Value: checkoutID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Intent
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	return &rec, nil
}

// RecordTransaction stamps the settled gateway transaction id on the intent
// while it is still IN_PROGRESS. Called between the charge and the order
// write so an orphaned intent always names the money it refers to.
func (s *Store) RecordTransaction(ctx context.Context, checkoutID, transactionID string) error {
	return s.update(ctx, checkoutID,
		"SET transaction_id = :tx, updated_at = :ua",
		map[string]types.AttributeValue{
			":tx": &types.AttributeValueMemberS{Value: transactionID},
		})
}

// MarkPromoted resolves the intent: the order record exists.
func (s *Store) MarkPromoted(ctx context.Context, checkoutID, orderID string) error {
	return s.update(ctx, checkoutID,
		"SET #s = :st, order_id = :oid, updated_at = :ua",
		map[string]types.AttributeValue{
			":st":  &types.AttributeValueMemberS{Value: StatusPromoted},
			":oid": &types.AttributeValueMemberS{Value: orderID},
		})
}

// MarkFailed resolves the intent after a gateway decline. No money moved.
func (s *Store) MarkFailed(ctx context.Context, checkoutID, note string) error {
	return s.update(ctx, checkoutID,
		"SET #s = :st, note = :n, updated_at = :ua",
		map[string]types.AttributeValue{
			":st": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":  &types.AttributeValueMemberS{Value: note},
		})
}

// MarkOrphaned flags a charge-without-order intent for manual recovery.
// Only an IN_PROGRESS intent can be orphaned, so redelivered alerts are
// no-ops; a lost condition returns nil because the intent already resolved.
func (s *Store) MarkOrphaned(ctx context.Context, checkoutID, note string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"checkout_id": &types.AttributeValueMemberS{Value: checkoutID},
		},
		UpdateExpression:         awsString("SET #s = :st, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":st":       &types.AttributeValueMemberS{Value: StatusOrphaned},
			":n":        &types.AttributeValueMemberS{Value: note},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: StatusInProgress},
		},
		ConditionExpression: awsString("#s = :expected"),
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return nil
		}
		return fmt.Errorf("mark orphaned: %w", err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, checkoutID, expr string, values map[string]types.AttributeValue) error {
	now := s.nowFunc()
	values[":ua"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)}

	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"checkout_id": &types.AttributeValueMemberS{Value: checkoutID},
		},
		UpdateExpression:          &expr,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	}
	if strings.Contains(expr, "#s") {
		input.ExpressionAttributeNames = map[string]string{"#s": "status"}
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update intent: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
