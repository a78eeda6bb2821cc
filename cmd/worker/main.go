package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shopcore/go-checkout-pipeline/internal/aws"
)

func main() {
	clients, err := aws.NewClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	pendingTable := os.Getenv("PENDING_CHECKOUTS_TABLE")
	if pendingTable == "" {
		pendingTable = "pending-checkouts"
	}

	reaper := NewReaper(clients, pendingTable)

	// If RUN_LOCAL=true, simulate a single alert for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"checkout_id":"local-checkout-1","transaction_id":"local-tx-1","amount":10}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := reaper.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(reaper.Handle)
}
