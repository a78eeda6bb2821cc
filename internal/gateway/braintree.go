package gateway

import (
	"context"
	"errors"
	"math"

	braintree "github.com/braintree-go/braintree-go"
)

// BraintreeConfig carries the merchant credentials read from the environment.
type BraintreeConfig struct {
	Environment string // "sandbox" (default) or "production"
	MerchantID  string
	PublicKey   string
	PrivateKey  string
}

// Braintree implements Gateway on top of the Braintree Go client.
type Braintree struct {
	bt *braintree.Braintree
}

// NewBraintree constructs the gateway client once from config.
func NewBraintree(cfg BraintreeConfig) *Braintree {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}
	return &Braintree{
		bt: braintree.New(env, cfg.MerchantID, cfg.PublicKey, cfg.PrivateKey),
	}
}

func (g *Braintree) ClientToken(ctx context.Context) (string, error) {
	token, err := g.bt.ClientToken().Generate(ctx)
	if err != nil {
		return "", &Error{Op: "client_token", Cause: err}
	}
	return token, nil
}

func (g *Braintree) SubmitSale(ctx context.Context, amount float64, nonce string) (*TransactionResult, error) {
	if nonce == "" {
		return nil, &Error{Op: "sale", Cause: errors.New("missing payment nonce")}
	}

	// Braintree amounts are fixed-point cents.
	cents := int64(math.Round(amount * 100))

	tx, err := g.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, &Error{Op: "sale", Cause: err}
	}

	return &TransactionResult{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
		Amount:        amount,
		RawType:       tx.Type,
	}, nil
}
