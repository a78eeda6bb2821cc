package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects a checkout before any external call is made.
	ErrEmptyCart = errors.New("cart is empty, nothing to charge")
	// ErrNegativePrice rejects a cart line with a price below zero.
	ErrNegativePrice = errors.New("cart item price must be non-negative")
)

// ReconciliationError is the financial-risk failure class: the gateway
// charge settled but the order record could not be persisted. The charge
// cannot be un-submitted here, so the error carries everything an operator
// needs to recover the linkage out of band.
type ReconciliationError struct {
	CheckoutID    string
	TransactionID string
	Err           error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("order persistence failed after settled charge (checkout=%s transaction=%s): %v",
		e.CheckoutID, e.TransactionID, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }
