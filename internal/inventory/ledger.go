package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopcore/go-checkout-pipeline/internal/aws"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
)

// ErrInsufficientStock means the conditional decrement would have taken the
// product's quantity below zero (or the product row does not exist).
var ErrInsufficientStock = errors.New("insufficient stock or unknown product")

// ItemFailure records one line of a purchase that could not be applied.
type ItemFailure struct {
	ProductID string
	Units     int
	Err       error
}

// BatchResult reports a purchase application per item. There is no
// cross-item atomicity: some lines may apply while others fail.
type BatchResult struct {
	Applied  int
	Failures []ItemFailure
}

// Ok reports whether every line applied.
func (r BatchResult) Ok() bool { return len(r.Failures) == 0 }

// Ledger applies sold/quantity adjustments to the products table.
type Ledger struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewLedger creates a Ledger over the products table.
func NewLedger(client aws.DynamoDBAPI, tableName string) *Ledger {
	return &Ledger{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// ApplyPurchase increments sold and decrements quantity for every cart line.
// Each line is its own conditional write with a floor at zero stock, so a
// failing line never blocks the others. An empty cart is a no-op.
// An order's purchase must be applied exactly once; callers invoke this only
// after the order record is durable.
func (l *Ledger) ApplyPurchase(ctx context.Context, items []orders.CartItem) BatchResult {
	var res BatchResult
	for _, item := range items {
		units := item.Units()
		if err := l.applyItem(ctx, item.ProductID, units); err != nil {
			res.Failures = append(res.Failures, ItemFailure{
				ProductID: item.ProductID,
				Units:     units,
				Err:       err,
			})
			continue
		}
		res.Applied++
	}
	return res
}

func (l *Ledger) applyItem(ctx context.Context, productID string, units int) error {
	n := strconv.Itoa(units)
	now := l.nowFunc()

	input := &dyn.UpdateItemInput{
		TableName: &l.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		// ADD and SET live in separate clauses of one expression, so the
		// sold increment and the stock decrement land together.
		UpdateExpression: awsString("SET quantity = quantity - :n, updated_at = :ua ADD sold :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n":  &types.AttributeValueMemberN{Value: n},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(product_id) AND quantity >= :n"),
	}

	if _, err := l.client.UpdateItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrInsufficientStock
		}
		return fmt.Errorf("adjust product %s: %w", productID, err)
	}
	return nil
}

func awsString(s string) *string { return &s }
