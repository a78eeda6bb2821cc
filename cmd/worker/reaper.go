package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/shopcore/go-checkout-pipeline/internal/aws"
	"github.com/shopcore/go-checkout-pipeline/internal/pending"
)

// Reaper consumes reconciliation alerts and flags the matching pending
// checkout intents as ORPHANED so operators can recover the charge/order
// linkage out of band. It never touches money or orders itself.
type Reaper struct {
	intents *pending.Store
	metrics *aws.MetricEmitter
}

// NewReaper wires the reaper against the pending-checkouts table.
func NewReaper(clients *aws.Clients, pendingTable string) *Reaper {
	return &Reaper{
		intents: pending.NewStore(clients.DynamoDB, pendingTable, 48*time.Hour),
		metrics: aws.NewMetricEmitter(clients.CloudWatch),
	}
}

// Handle receives an SQS batch event and processes each alert.
func (r *Reaper) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := r.processMessage(ctx, rec); err != nil {
			// Returning the error lets Lambda retry; repeated failures
			// push the message to the DLQ.
			log.Printf("[reaper] error: %v", err)
			return err
		}
	}
	return nil
}

func (r *Reaper) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg ReconciliationMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid alert body: %w", err)
	}

	log.Printf("[reaper] alert checkout=%s transaction=%s amount=%.2f buyer=%s",
		msg.CheckoutID, msg.TransactionID, msg.Amount, msg.BuyerID)

	intent, err := r.intents.Get(ctx, msg.CheckoutID)
	if err != nil {
		return fmt.Errorf("load intent %s: %w", msg.CheckoutID, err)
	}
	if intent == nil {
		// TTL may have reaped the record before the alert arrived. The
		// alert body itself carries enough to reconcile manually.
		log.Printf("[reaper] no intent for checkout=%s; alert payload is the only record: %s",
			msg.CheckoutID, rec.Body)
		return nil
	}

	switch intent.Status {
	case pending.StatusPromoted:
		// The order write landed after the alert fired; nothing to do.
		log.Printf("[reaper] checkout=%s promoted to order=%s after alert", msg.CheckoutID, intent.OrderID)
		return nil
	case pending.StatusOrphaned:
		// Redelivered alert; already flagged.
		return nil
	case pending.StatusInProgress:
		note := fmt.Sprintf("charge %s settled without order: %s", msg.TransactionID, msg.Reason)
		if err := r.intents.MarkOrphaned(ctx, msg.CheckoutID, note); err != nil {
			return fmt.Errorf("mark orphaned %s: %w", msg.CheckoutID, err)
		}
		r.metrics.Count(ctx, aws.MetricIntentOrphaned, 1)
		log.Printf("[reaper] checkout=%s marked ORPHANED transaction=%s", msg.CheckoutID, msg.TransactionID)
		return nil
	default:
		log.Printf("[reaper] checkout=%s in unexpected state %s; leaving as-is", msg.CheckoutID, intent.Status)
		return nil
	}
}
