package main

// ReconciliationMessage is the alert payload sent by the API when a settled
// charge could not be persisted as an order. Field names mirror
// aws.ReconciliationAlert.
type ReconciliationMessage struct {
	CheckoutID    string  `json:"checkout_id"`
	BuyerID       string  `json:"buyer_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason,omitempty"`
}
