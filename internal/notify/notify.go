package notify

import (
	"context"
	"fmt"
)

// Email is one templated message: recipient, sender, subject and HTML body.
type Email struct {
	Subject string
	HTML    string
	To      string
	From    string
}

// Sender delivers email. Delivery is best-effort: callers report failures
// but never roll back the state change that triggered the message.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// StatusEmail composes the buyer-facing order status message.
func StatusEmail(buyerName, buyerEmail, status, from, clientURL string) Email {
	body := fmt.Sprintf(`
    <h1>Hi %s, Your order's status is: <span style="color:red;">%s</span></h1>
    <p>Visit <a href="%s/dashboard/user/orders">your dashboard</a> for more details</p>
  `, buyerName, status, clientURL)

	return Email{
		Subject: "Order status",
		HTML:    body,
		To:      buyerEmail,
		From:    from,
	}
}
