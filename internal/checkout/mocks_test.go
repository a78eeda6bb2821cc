package checkout

import (
	"context"
	"errors"

	"github.com/shopcore/go-checkout-pipeline/internal/aws"
	"github.com/shopcore/go-checkout-pipeline/internal/gateway"
	"github.com/shopcore/go-checkout-pipeline/internal/inventory"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
)

type fakeGateway struct {
	token    string
	tokenErr error
	saleErr  error

	charged []float64
	nonces  []string
}

func (f *fakeGateway) ClientToken(ctx context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeGateway) SubmitSale(ctx context.Context, amount float64, nonce string) (*gateway.TransactionResult, error) {
	f.charged = append(f.charged, amount)
	f.nonces = append(f.nonces, nonce)
	if f.saleErr != nil {
		return nil, f.saleErr
	}
	return &gateway.TransactionResult{
		TransactionID: "tx-1",
		Status:        "submitted_for_settlement",
		Amount:        amount,
		RawType:       "sale",
	}, nil
}

type fakeOrders struct {
	created   []orders.Order
	createErr error
}

func (f *fakeOrders) Create(ctx context.Context, order orders.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, order)
	return nil
}

type fakeLedger struct {
	batches [][]orders.CartItem
	result  inventory.BatchResult
}

func (f *fakeLedger) ApplyPurchase(ctx context.Context, items []orders.CartItem) inventory.BatchResult {
	f.batches = append(f.batches, items)
	res := f.result
	if len(res.Failures) == 0 {
		res.Applied = len(items)
	}
	return res
}

type fakeIntents struct {
	created      []string
	transactions map[string]string
	promoted     map[string]string
	failed       map[string]string
	createErr    error
}

func newFakeIntents() *fakeIntents {
	return &fakeIntents{
		transactions: map[string]string{},
		promoted:     map[string]string{},
		failed:       map[string]string{},
	}
}

func (f *fakeIntents) Create(ctx context.Context, checkoutID, buyerID string, amount float64) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, checkoutID)
	return nil
}

func (f *fakeIntents) RecordTransaction(ctx context.Context, checkoutID, transactionID string) error {
	f.transactions[checkoutID] = transactionID
	return nil
}

func (f *fakeIntents) MarkPromoted(ctx context.Context, checkoutID, orderID string) error {
	f.promoted[checkoutID] = orderID
	return nil
}

func (f *fakeIntents) MarkFailed(ctx context.Context, checkoutID, note string) error {
	f.failed[checkoutID] = note
	return nil
}

type fakeAlerts struct {
	alerts []aws.ReconciliationAlert
}

func (f *fakeAlerts) PublishReconciliationAlert(ctx context.Context, alert aws.ReconciliationAlert) error {
	f.alerts = append(f.alerts, alert)
	return nil
}

var errGatewayDown = &gateway.Error{Op: "sale", Cause: errors.New("processor declined")}

func newTestService(gw *fakeGateway, ord *fakeOrders, led *fakeLedger, in *fakeIntents, al *fakeAlerts) *Service {
	return NewService(gw, ord, led, in, al, nil)
}
