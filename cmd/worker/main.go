package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sokomarket/payflow/internal/notification"
	"github.com/sokomarket/payflow/internal/push"
	"github.com/sokomarket/payflow/internal/store"
	"github.com/sokomarket/payflow/internal/user"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	clients, err := store.NewClients(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("failed to init aws clients")
	}

	pushURL := os.Getenv("PUSH_API_URL")
	if pushURL == "" {
		pushURL = "https://exp.host/--/api/v2/push/send"
	}

	processor := NewProcessor(
		user.NewStore(clients.DynamoDB, os.Getenv("USERS_TABLE")),
		notification.NewStore(clients.DynamoDB, os.Getenv("NOTIFICATIONS_TABLE")),
		push.NewClient(pushURL, logger),
		logger,
	)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"user_id":"local-user-1","order_id":"local-order-1","title":"Payment received","message":"local test"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{
					Body: testBody,
				},
			},
		}
		if err := processor.Handle(context.Background(), event); err != nil {
			logger.WithError(err).Fatal("local handler error")
		}
		return
	}

	lambda.Start(processor.Handle)
}
