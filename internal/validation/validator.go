package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
)

// New returns a configured validator with the custom order-status rule
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// Reject unknown status strings at the boundary so the state machine
	// only ever sees the five real values.
	v.RegisterStructValidation(updateStatusStructValidation, UpdateOrderStatusRequest{})

	return v
}

func updateStatusStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(UpdateOrderStatusRequest)
	if req.Status == "" {
		return // the required tag already reports this
	}
	if !orders.KnownStatus(req.Status) {
		sl.ReportError(req.Status, "status", "Status", "known_status",
			fmt.Sprintf("unknown order status %q", req.Status))
	}
}
