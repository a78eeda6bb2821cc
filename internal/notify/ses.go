package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/shopcore/go-checkout-pipeline/internal/aws"
)

// SESSender implements Sender on SESv2.
type SESSender struct {
	client aws.SESAPI
}

// NewSESSender returns a Sender backed by the given SES client.
func NewSESSender(client aws.SESAPI) *SESSender {
	return &SESSender{client: client}
}

func (s *SESSender) Send(ctx context.Context, email Email) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &email.From,
		Destination: &sestypes.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: &email.Subject},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: &email.HTML},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email to %s: %w", email.To, err)
	}
	return nil
}
