package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopcore/go-checkout-pipeline/internal/aws"
	"github.com/shopcore/go-checkout-pipeline/internal/gateway"
	"github.com/shopcore/go-checkout-pipeline/internal/inventory"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
)

// Narrow collaborator contracts so tests can substitute fakes. The concrete
// stores in internal/orders, internal/inventory and internal/pending satisfy
// them as-is.

type orderCreator interface {
	Create(ctx context.Context, order orders.Order) error
}

type stockAdjuster interface {
	ApplyPurchase(ctx context.Context, items []orders.CartItem) inventory.BatchResult
}

type intentStore interface {
	Create(ctx context.Context, checkoutID, buyerID string, amount float64) error
	RecordTransaction(ctx context.Context, checkoutID, transactionID string) error
	MarkPromoted(ctx context.Context, checkoutID, orderID string) error
	MarkFailed(ctx context.Context, checkoutID, note string) error
}

type alertPublisher interface {
	PublishReconciliationAlert(ctx context.Context, alert aws.ReconciliationAlert) error
}

// Result is the checkout response. Warnings carry non-fatal inventory
// adjustment failures; the purchase itself is already committed.
type Result struct {
	OK       bool     `json:"ok"`
	OrderID  string   `json:"order_id"`
	Warnings []string `json:"warnings,omitempty"`
}

// Service orchestrates a checkout: validate, record intent, charge, persist,
// adjust stock. Each request is independent; the service holds no mutable
// state beyond its injected collaborators.
type Service struct {
	gateway gateway.Gateway
	orders  orderCreator
	ledger  stockAdjuster
	intents intentStore
	alerts  alertPublisher
	metrics *aws.MetricEmitter
}

// NewService wires the orchestrator. alerts may be nil when no queue is
// configured; reconciliation faults are then visible through logs and
// metrics only.
func NewService(gw gateway.Gateway, ordersStore orderCreator, ledger stockAdjuster, intents intentStore, alerts alertPublisher, metrics *aws.MetricEmitter) *Service {
	return &Service{
		gateway: gw,
		orders:  ordersStore,
		ledger:  ledger,
		intents: intents,
		alerts:  alerts,
		metrics: metrics,
	}
}

// ClientToken issues an opaque token for client-side payment collection.
func (s *Service) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// Total is the exact sum of client-submitted line prices; it is what gets
// charged and recorded. Catalog prices are deliberately not consulted.
func Total(cart []orders.CartItem) float64 {
	var total float64
	for _, item := range cart {
		total += item.Price * float64(item.Units())
	}
	return total
}

// ProcessCheckout converts a cart plus a payment nonce into a paid order.
//
// Failure semantics, in order:
//   - validation errors return before any external call;
//   - a gateway error means nothing was persisted and nothing is retried;
//   - an order write error after a settled charge is a ReconciliationError
//     (the intent record stays IN_PROGRESS for the reaper);
//   - inventory failures are reported as warnings, never as checkout failure.
func (s *Service) ProcessCheckout(ctx context.Context, buyerID string, cart []orders.CartItem, nonce string) (*Result, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range cart {
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: product %s", ErrNegativePrice, item.ProductID)
		}
	}

	total := Total(cart)
	checkoutID := uuid.NewString()

	// Durable intent before money moves. A failure here is safe: no charge
	// has been submitted yet.
	if err := s.intents.Create(ctx, checkoutID, buyerID, total); err != nil {
		return nil, fmt.Errorf("record checkout intent: %w", err)
	}

	tx, err := s.gateway.SubmitSale(ctx, total, nonce)
	if err != nil {
		if mErr := s.intents.MarkFailed(ctx, checkoutID, err.Error()); mErr != nil {
			log.Printf("[checkout] mark intent failed checkout=%s: %v", checkoutID, mErr)
		}
		s.metrics.Count(ctx, aws.MetricGatewayDeclined, 1)
		return nil, err
	}

	// The charge is settled from here on. Stamp the transaction id on the
	// intent so an orphaned record names the money it refers to; a failure
	// to stamp is logged, not fatal.
	if err := s.intents.RecordTransaction(ctx, checkoutID, tx.TransactionID); err != nil {
		log.Printf("[checkout] record transaction on intent checkout=%s: %v", checkoutID, err)
	}

	order := orders.Order{
		OrderID:  uuid.NewString(),
		BuyerID:  buyerID,
		Products: cart,
		Payment:  *tx,
		Status:   orders.StatusNotProcess,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		recErr := &ReconciliationError{
			CheckoutID:    checkoutID,
			TransactionID: tx.TransactionID,
			Err:           err,
		}
		log.Printf("[checkout] RECONCILIATION FAULT %v", recErr)
		s.metrics.Count(ctx, aws.MetricReconciliationFault, 1)
		if s.alerts != nil {
			alert := aws.ReconciliationAlert{
				CheckoutID:    checkoutID,
				BuyerID:       buyerID,
				TransactionID: tx.TransactionID,
				Amount:        total,
				Reason:        err.Error(),
			}
			if pubErr := s.alerts.PublishReconciliationAlert(ctx, alert); pubErr != nil {
				log.Printf("[checkout] publish reconciliation alert checkout=%s: %v", checkoutID, pubErr)
			}
		}
		return nil, recErr
	}

	if err := s.intents.MarkPromoted(ctx, checkoutID, order.OrderID); err != nil {
		log.Printf("[checkout] mark intent promoted checkout=%s: %v", checkoutID, err)
	}

	res := &Result{OK: true, OrderID: order.OrderID}

	batch := s.ledger.ApplyPurchase(ctx, cart)
	for _, f := range batch.Failures {
		log.Printf("[checkout] inventory adjustment failed order=%s product=%s units=%d: %v",
			order.OrderID, f.ProductID, f.Units, f.Err)
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("inventory adjustment failed for product %s: %v", f.ProductID, f.Err))
	}
	if !batch.Ok() {
		s.metrics.Count(ctx, aws.MetricInventoryAdjustmentFailed, float64(len(batch.Failures)))
	}

	s.metrics.Count(ctx, aws.MetricCheckoutSucceeded, 1)
	return res, nil
}
