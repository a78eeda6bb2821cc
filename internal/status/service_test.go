package status

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopcore/go-checkout-pipeline/internal/notify"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
	"github.com/shopcore/go-checkout-pipeline/internal/users"
)

type fakeOrderStore struct {
	order     *orders.Order
	getErr    error
	updateErr error
	updates   []string
}

func (f *fakeOrderStore) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.order == nil || f.order.OrderID != orderID {
		return nil, nil
	}
	cp := *f.order
	return &cp, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, newStatus)
	f.order.Status = newStatus
	return nil
}

type fakeUserReader struct {
	user *users.User
	err  error
}

func (f *fakeUserReader) Get(ctx context.Context, userID string) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeSender struct {
	sent    []notify.Email
	sendErr error
}

func (f *fakeSender) Send(ctx context.Context, email notify.Email) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, email)
	return nil
}

func newTestService(store *fakeOrderStore, reader *fakeUserReader, sender *fakeSender) *Service {
	return NewService(store, reader, sender, nil, "shop@example.com", "https://shop.example.com")
}

func shippedFixture() (*fakeOrderStore, *fakeUserReader, *fakeSender) {
	store := &fakeOrderStore{order: &orders.Order{
		OrderID: "o1",
		BuyerID: "u1",
		Status:  orders.StatusNotProcess,
	}}
	reader := &fakeUserReader{user: &users.User{UserID: "u1", Name: "Ada", Email: "buyer@x.com"}}
	return store, reader, &fakeSender{}
}

func TestSetStatus_UpdatesAndNotifies(t *testing.T) {
	store, reader, sender := shippedFixture()
	svc := newTestService(store, reader, sender)

	order, err := svc.SetStatus(context.Background(), "o1", orders.StatusShipped)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if order.Status != orders.StatusShipped {
		t.Fatalf("expected %q, got %q", orders.StatusShipped, order.Status)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.To != "buyer@x.com" {
		t.Fatalf("wrong recipient: %q", mail.To)
	}
	if mail.Subject != "Order status" {
		t.Fatalf("wrong subject: %q", mail.Subject)
	}
	if !strings.Contains(mail.HTML, "Shipped") {
		t.Fatalf("body missing status: %s", mail.HTML)
	}
	if !strings.Contains(mail.HTML, "Ada") {
		t.Fatalf("body missing buyer name: %s", mail.HTML)
	}
	if mail.From != "shop@example.com" {
		t.Fatalf("wrong sender: %q", mail.From)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	store, reader, sender := shippedFixture()
	svc := newTestService(store, reader, sender)

	_, err := svc.SetStatus(context.Background(), "missing", orders.StatusShipped)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no notification may be sent for a missing order")
	}
	if len(store.updates) != 0 {
		t.Fatal("no update may happen for a missing order")
	}
}

func TestSetStatus_IdempotentRepeat(t *testing.T) {
	store, reader, sender := shippedFixture()
	store.order.Status = orders.StatusShipped
	svc := newTestService(store, reader, sender)

	for i := 0; i < 2; i++ {
		order, err := svc.SetStatus(context.Background(), "o1", orders.StatusShipped)
		if err != nil {
			t.Fatalf("repeat %d: %v", i, err)
		}
		if order.Status != orders.StatusShipped {
			t.Fatalf("repeat %d: status %q", i, order.Status)
		}
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected a notification per attempt, got %d", len(sender.sent))
	}
}

func TestSetStatus_RejectsBackwardMove(t *testing.T) {
	store, reader, sender := shippedFixture()
	store.order.Status = orders.StatusShipped
	svc := newTestService(store, reader, sender)

	_, err := svc.SetStatus(context.Background(), "o1", orders.StatusProcessing)
	if !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("rejected transition must not notify")
	}
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	store, reader, sender := shippedFixture()
	svc := newTestService(store, reader, sender)

	_, err := svc.SetStatus(context.Background(), "o1", "Teleported")
	if !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
}

func TestSetStatus_NotificationFailureKeepsUpdate(t *testing.T) {
	store, reader, sender := shippedFixture()
	sender.sendErr = errors.New("smtp down")
	svc := newTestService(store, reader, sender)

	order, err := svc.SetStatus(context.Background(), "o1", orders.StatusShipped)

	var notifErr *NotificationError
	if !errors.As(err, &notifErr) {
		t.Fatalf("expected NotificationError, got %v", err)
	}
	if order == nil || order.Status != orders.StatusShipped {
		t.Fatalf("updated order must be returned alongside the error, got %+v", order)
	}
	if notifErr.Order.Status != orders.StatusShipped {
		t.Fatalf("error must carry the updated order: %+v", notifErr.Order)
	}
	// the status write already happened and stands
	if store.order.Status != orders.StatusShipped {
		t.Fatalf("status change must be durable, got %q", store.order.Status)
	}
}

func TestSetStatus_BuyerLookupFailure(t *testing.T) {
	store, reader, sender := shippedFixture()
	reader.user = nil
	svc := newTestService(store, reader, sender)

	order, err := svc.SetStatus(context.Background(), "o1", orders.StatusProcessing)

	var notifErr *NotificationError
	if !errors.As(err, &notifErr) {
		t.Fatalf("expected NotificationError, got %v", err)
	}
	if order == nil || order.Status != orders.StatusProcessing {
		t.Fatal("status update must survive buyer lookup failure")
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should be sent without a recipient")
	}
}

func TestSetStatus_CancelFromAnyNonTerminal(t *testing.T) {
	store, reader, sender := shippedFixture()
	store.order.Status = orders.StatusShipped
	svc := newTestService(store, reader, sender)

	order, err := svc.SetStatus(context.Background(), "o1", orders.StatusCancelled)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if order.Status != orders.StatusCancelled {
		t.Fatalf("expected %q, got %q", orders.StatusCancelled, order.Status)
	}
}
