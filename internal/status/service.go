package status

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopcore/go-checkout-pipeline/internal/aws"
	"github.com/shopcore/go-checkout-pipeline/internal/notify"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
	"github.com/shopcore/go-checkout-pipeline/internal/users"
)

var (
	// ErrOrderNotFound means there is nothing to update and no email goes out.
	ErrOrderNotFound = errors.New("order not found")
	// ErrBadTransition rejects unknown statuses and backward movement.
	ErrBadTransition = errors.New("illegal order status transition")
)

// NotificationError reports that the status change is durable but the buyer
// email could not be delivered. Order carries the updated record so callers
// can still respond with it.
type NotificationError struct {
	Order *orders.Order
	Err   error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("order %s updated but notification failed: %v", e.Order.OrderID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

type orderStore interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error
}

type userReader interface {
	Get(ctx context.Context, userID string) (*users.User, error)
}

// Service updates order lifecycle status and notifies the buyer.
type Service struct {
	orders  orderStore
	users   userReader
	sender  notify.Sender
	metrics *aws.MetricEmitter

	senderAddress string // From address for status mail
	clientURL     string // dashboard base linked in the mail body
}

// NewService wires the status service.
func NewService(ordersStore orderStore, usersStore userReader, sender notify.Sender, metrics *aws.MetricEmitter, senderAddress, clientURL string) *Service {
	return &Service{
		orders:        ordersStore,
		users:         usersStore,
		sender:        sender,
		metrics:       metrics,
		senderAddress: senderAddress,
		clientURL:     clientURL,
	}
}

// SetStatus moves the order to newStatus and emails the buyer. The write is
// the durable source of truth: once it lands, nothing rolls it back. Mail
// failure surfaces as *NotificationError with the updated order attached.
// Re-applying the current status is a permitted no-op that still notifies.
func (s *Service) SetStatus(ctx context.Context, orderID, newStatus string) (*orders.Order, error) {
	if !orders.KnownStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadTransition, newStatus)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !orders.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, order.Status, newStatus)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, newStatus); err != nil {
		if errors.Is(err, orders.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: concurrent update on order %s", ErrBadTransition, orderID)
		}
		return nil, fmt.Errorf("persist status: %w", err)
	}
	order.Status = newStatus

	buyer, err := s.users.Get(ctx, order.BuyerID)
	if err == nil && buyer == nil {
		err = fmt.Errorf("buyer %s not found", order.BuyerID)
	}
	if err != nil {
		s.metrics.Count(ctx, aws.MetricNotificationFailed, 1)
		return order, &NotificationError{Order: order, Err: fmt.Errorf("load buyer contact: %w", err)}
	}

	email := notify.StatusEmail(buyer.Name, buyer.Email, newStatus, s.senderAddress, s.clientURL)
	if err := s.sender.Send(ctx, email); err != nil {
		log.Printf("[status] notification failed order=%s buyer=%s: %v", orderID, buyer.Email, err)
		s.metrics.Count(ctx, aws.MetricNotificationFailed, 1)
		return order, &NotificationError{Order: order, Err: err}
	}

	return order, nil
}
