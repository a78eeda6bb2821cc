package pending

import "time"

// Intent statuses.
const (
	// StatusInProgress: intent written, gateway call may be in flight. An
	// intent stuck here past its checkout is a reconciliation candidate.
	StatusInProgress = "IN_PROGRESS"
	// StatusPromoted: the charge settled and the order record exists.
	StatusPromoted = "PROMOTED"
	// StatusFailed: the gateway declined; no money moved, no order exists.
	StatusFailed = "FAILED"
	// StatusOrphaned: charge succeeded but the order write failed; flagged
	// by the reconciliation worker for out-of-band recovery.
	StatusOrphaned = "ORPHANED"
)

// Intent is the append-only pending-checkout record written before the
// gateway is called. It is the durable breadcrumb that lets a crash between
// charge and order persistence be reconciled after the fact.
type Intent struct {
	CheckoutID    string    `dynamodbav:"checkout_id"` // PK
	BuyerID       string    `dynamodbav:"buyer_id"`
	Amount        float64   `dynamodbav:"amount"`
	Status        string    `dynamodbav:"status"`
	OrderID       string    `dynamodbav:"order_id,omitempty"`        // set on promotion
	TransactionID string    `dynamodbav:"transaction_id,omitempty"`  // set once the charge settles
	Note          string    `dynamodbav:"note,omitempty"`            // failure / orphan detail
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
	ExpiresAt     int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}
