package validation

import "github.com/shopcore/go-checkout-pipeline/internal/orders"

// CartLine mirrors the client cart snapshot. The `_id` field name matches
// the storefront payload; quantity is optional and treated as 1 when absent
// (the storefront historically sent one line per unit).
type CartLine struct {
	ProductID string  `json:"_id" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// ProcessPaymentRequest is the payload for POST /products/braintree/payment.
type ProcessPaymentRequest struct {
	Nonce string     `json:"nonce" validate:"required"`
	Cart  []CartLine `json:"cart" validate:"required,min=1,dive"`
}

// CartItems converts the request lines into the order snapshot shape.
func (r ProcessPaymentRequest) CartItems() []orders.CartItem {
	items := make([]orders.CartItem, 0, len(r.Cart))
	for _, line := range r.Cart {
		items = append(items, orders.CartItem{
			ProductID: line.ProductID,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// UpdateOrderStatusRequest is the payload for PUT /order-status/:orderId.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
