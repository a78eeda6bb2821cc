package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ReconciliationAlert describes a charge that succeeded without a durable
// order record. It is the payload carried on the alert queue and is the only
// linkage left between the gateway transaction and the buyer.
type ReconciliationAlert struct {
	CheckoutID    string  `json:"checkout_id"`
	BuyerID       string  `json:"buyer_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason,omitempty"`
}

// AlertPublisher wraps an SQS client and the alert queue URL.
type AlertPublisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewAlertPublisher returns an AlertPublisher bound to a queue URL.
func NewAlertPublisher(sqsClient SQSAPI, queueURL string) *AlertPublisher {
	return &AlertPublisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// PublishReconciliationAlert serializes the alert and sends it to the queue.
// The checkout id and transaction id are duplicated as message attributes so
// operators can filter without parsing bodies.
func (p *AlertPublisher) PublishReconciliationAlert(ctx context.Context, alert ReconciliationAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	bodyStr := string(body)
	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &bodyStr,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"checkout_id": {
				DataType:    awsString("String"),
				StringValue: &alert.CheckoutID,
			},
			"transaction_id": {
				DataType:    awsString("String"),
				StringValue: &alert.TransactionID,
			},
		},
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
