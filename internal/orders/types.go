package orders

import (
	"time"

	"github.com/shopcore/go-checkout-pipeline/internal/gateway"
)

// Order statuses. The strings are the wire contract and are persisted
// verbatim, including the legacy "Not Process" initial value.
const (
	StatusNotProcess = "Not Process"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// CartItem is a purchase-intent line captured at checkout time. The price is
// the client-submitted snapshot used for charging, not a catalog lookup.
type CartItem struct {
	ProductID string  `json:"_id" dynamodbav:"product_id"`
	Price     float64 `json:"price" dynamodbav:"price"`
	Quantity  int     `json:"quantity,omitempty" dynamodbav:"quantity"` // defaults to 1
}

// Units returns the purchased unit count for the line.
func (i CartItem) Units() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// Order is the item stored in the orders table. The Payment snapshot is
// written once at creation and never touched by status updates.
type Order struct {
	OrderID   string                    `dynamodbav:"order_id" json:"order_id"` // PK
	BuyerID   string                    `dynamodbav:"buyer_id" json:"buyer_id"`
	Products  []CartItem                `dynamodbav:"products" json:"products"`
	Payment   gateway.TransactionResult `dynamodbav:"payment" json:"payment"`
	Status    string                    `dynamodbav:"status" json:"status"`
	CreatedAt time.Time                 `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time                 `dynamodbav:"updated_at" json:"updated_at"`
}

var statusRank = map[string]int{
	StatusNotProcess: 0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// KnownStatus reports whether s is one of the five order statuses.
func KnownStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether s admits no further movement.
func Terminal(s string) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from current to next.
// Movement is monotonic: forward along
// Not Process -> Processing -> Shipped -> Delivered, with Cancelled
// reachable from any non-terminal state. Re-applying the current status is
// allowed so repeated updates stay idempotent.
func CanTransition(current, next string) bool {
	if !KnownStatus(current) || !KnownStatus(next) {
		return false
	}
	if current == next {
		return true
	}
	if Terminal(current) {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[current]
}
