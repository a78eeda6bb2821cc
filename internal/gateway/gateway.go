package gateway

import (
	"context"
	"fmt"
)

// TransactionResult is the snapshot of a settled sale recorded on the order.
type TransactionResult struct {
	TransactionID string  `json:"transaction_id" dynamodbav:"transaction_id"`
	Status        string  `json:"status" dynamodbav:"status"`
	Amount        float64 `json:"amount" dynamodbav:"amount"`
	// RawType is the gateway's own transaction type string ("sale").
	RawType string `json:"raw_type,omitempty" dynamodbav:"raw_type,omitempty"`
}

// Gateway is the payment collaborator contract. Implementations are
// constructed once at startup and injected; there is no package-level client.
type Gateway interface {
	// ClientToken returns an opaque token for client-side payment-method
	// collection. No side effects on failure.
	ClientToken(ctx context.Context) (string, error)

	// SubmitSale charges amount against the single-use payment nonce,
	// always requesting immediate settlement. A returned error means no
	// order may be created; callers must not retry with the same nonce.
	SubmitSale(ctx context.Context, amount float64, nonce string) (*TransactionResult, error)
}

// Error wraps a gateway failure so callers can distinguish it from
// persistence problems. Gateway errors are never retried by the pipeline.
type Error struct {
	Op    string // "client_token" or "sale"
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
