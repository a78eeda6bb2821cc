package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopcore/go-checkout-pipeline/internal/checkout"
	"github.com/shopcore/go-checkout-pipeline/internal/gateway"
	"github.com/shopcore/go-checkout-pipeline/internal/status"
	"github.com/shopcore/go-checkout-pipeline/internal/validation"
)

// buyerHeader is set by the upstream authenticator. Auth mechanics live
// outside this core; the payment route only requires the header's presence.
const buyerHeader = "X-Buyer-Id"

// HandlerConfig groups the services the routes dispatch to.
type HandlerConfig struct {
	Checkout *checkout.Service
	Status   *status.Service
}

// RegisterRoutes mounts the checkout and order-status routes under /api/v1.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	api := r.Group("/api/v1")

	api.GET("/products/braintree/token", func(c *gin.Context) {
		token, err := cfg.Checkout.ClientToken(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway_error", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientToken": token})
	})

	api.POST("/products/braintree/payment", func(c *gin.Context) {
		buyerID := c.GetHeader(buyerHeader)
		if buyerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_buyer"})
			return
		}

		var req validation.ProcessPaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res, err := cfg.Checkout.ProcessCheckout(c.Request.Context(), buyerID, req.CartItems(), req.Nonce)
		if err != nil {
			writeCheckoutError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	api.PUT("/order-status/:orderId", func(c *gin.Context) {
		var req validation.UpdateOrderStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		order, err := cfg.Status.SetStatus(c.Request.Context(), c.Param("orderId"), req.Status)
		if err != nil {
			writeStatusError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})
}

func writeCheckoutError(c *gin.Context, err error) {
	var gwErr *gateway.Error
	var recErr *checkout.ReconciliationError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
	case errors.As(err, &recErr):
		// Financial risk: the charge settled without a durable order. Hand
		// the operator-facing ids back so support can reconcile.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "reconciliation_fault",
			"checkout_id":    recErr.CheckoutID,
			"transaction_id": recErr.TransactionID,
		})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway_error", "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence_error", "detail": err.Error()})
	}
}

func writeStatusError(c *gin.Context, err error) {
	var notifErr *status.NotificationError

	switch {
	case errors.Is(err, status.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
	case errors.Is(err, status.ErrBadTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transition", "detail": err.Error()})
	case errors.As(err, &notifErr):
		// The status change is durable; only delivery failed.
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "notification_failed",
			"order":   notifErr.Order,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence_error", "detail": err.Error()})
	}
}
