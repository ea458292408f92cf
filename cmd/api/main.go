package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sokomarket/payflow/internal/handlers"
	"github.com/sokomarket/payflow/internal/notification"
	"github.com/sokomarket/payflow/internal/order"
	"github.com/sokomarket/payflow/internal/payment"
	"github.com/sokomarket/payflow/internal/provider"
	"github.com/sokomarket/payflow/internal/provider/touchpay"
	"github.com/sokomarket/payflow/internal/store"
	"github.com/sokomarket/payflow/internal/transaction"
)

func setupRouter(svc *payment.Service, notifications *notification.Store, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterPaymentsRoutes(r, handlers.PaymentsConfig{Service: svc, Logger: logger})
	handlers.RegisterNotificationsRoutes(r, handlers.NotificationsConfig{Store: notifications, Logger: logger})

	return r
}

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	clients, err := store.NewClients(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("failed to init aws clients")
	}

	gatewayClient, err := touchpay.NewClient(
		os.Getenv("GATEWAY_BASE_URL"),
		os.Getenv("GATEWAY_API_USERNAME"),
		os.Getenv("GATEWAY_API_PASSWORD"),
		logger,
	)
	if err != nil {
		logger.WithError(err).Fatal("payment gateway is not configured")
	}

	defaultProvider := os.Getenv("DEFAULT_PAYMENT_PROVIDER")
	if defaultProvider == "" {
		defaultProvider = touchpay.ProviderID
	}
	registry := provider.NewRegistry(defaultProvider, logger, touchpay.New(gatewayClient))

	transactions := transaction.NewStore(clients.DynamoDB, os.Getenv("TRANSACTIONS_TABLE"))
	orders := order.NewStore(clients.DynamoDB, os.Getenv("ORDERS_TABLE"))
	notifications := notification.NewStore(clients.DynamoDB, os.Getenv("NOTIFICATIONS_TABLE"))
	publisher := store.NewPublisher(clients.SQS, os.Getenv("NOTIFICATIONS_QUEUE_URL"))
	metrics := store.NewMetrics(clients.CloudWatch, "Payflow/Reconciliation", logger)

	svc := payment.NewService(registry, transactions, orders, publisher, metrics, logger)

	r := setupRouter(svc, notifications, logger)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Infof("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			logger.WithError(err).Fatal("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
