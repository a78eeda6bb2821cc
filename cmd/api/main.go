package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/shopcore/go-checkout-pipeline/internal/aws"
	"github.com/shopcore/go-checkout-pipeline/internal/checkout"
	"github.com/shopcore/go-checkout-pipeline/internal/gateway"
	"github.com/shopcore/go-checkout-pipeline/internal/handlers"
	"github.com/shopcore/go-checkout-pipeline/internal/inventory"
	"github.com/shopcore/go-checkout-pipeline/internal/notify"
	"github.com/shopcore/go-checkout-pipeline/internal/orders"
	"github.com/shopcore/go-checkout-pipeline/internal/pending"
	"github.com/shopcore/go-checkout-pipeline/internal/status"
	"github.com/shopcore/go-checkout-pipeline/internal/users"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()

	clients, err := aws.NewClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	// Gateway client constructed once and injected; no module-level state.
	gw := gateway.NewBraintree(gateway.BraintreeConfig{
		Environment: os.Getenv("BRAINTREE_ENVIRONMENT"),
		MerchantID:  os.Getenv("BRAINTREE_MERCHANT_ID"),
		PublicKey:   os.Getenv("BRAINTREE_PUBLIC_KEY"),
		PrivateKey:  os.Getenv("BRAINTREE_PRIVATE_KEY"),
	})

	ordersStore := orders.NewStore(clients.DynamoDB, getenv("ORDERS_TABLE", "orders"))
	ledger := inventory.NewLedger(clients.DynamoDB, getenv("PRODUCTS_TABLE", "products"))
	usersStore := users.NewStore(clients.DynamoDB, getenv("USERS_TABLE", "users"))
	intents := pending.NewStore(clients.DynamoDB, getenv("PENDING_CHECKOUTS_TABLE", "pending-checkouts"), 48*time.Hour)
	metrics := aws.NewMetricEmitter(clients.CloudWatch)

	var checkoutSvc *checkout.Service
	if queueURL := os.Getenv("RECONCILIATION_QUEUE_URL"); queueURL != "" {
		alerts := aws.NewAlertPublisher(clients.SQS, queueURL)
		checkoutSvc = checkout.NewService(gw, ordersStore, ledger, intents, alerts, metrics)
	} else {
		log.Printf("RECONCILIATION_QUEUE_URL not set; reconciliation faults go to logs and metrics only")
		checkoutSvc = checkout.NewService(gw, ordersStore, ledger, intents, nil, metrics)
	}

	statusSvc := status.NewService(
		ordersStore,
		usersStore,
		notify.NewSESSender(clients.SES),
		metrics,
		os.Getenv("EMAIL_SENDER"),
		getenv("CLIENT_URL", "http://localhost:3000"),
	)

	r := setupRouter(handlers.HandlerConfig{
		Checkout: checkoutSvc,
		Status:   statusSvc,
	})

	// if RUN_LOCAL is set to "true", run a local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
