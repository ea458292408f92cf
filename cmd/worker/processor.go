package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sokomarket/payflow/internal/notification"
	"github.com/sokomarket/payflow/internal/push"
	"github.com/sokomarket/payflow/internal/user"
)

// Processor consumes dispatch messages and delivers push
// notifications: resolve the user's device token, send, record the
// in-app notification row, and clear tokens the push channel reports
// as dead.
type Processor struct {
	users         *user.Store
	notifications *notification.Store
	sender        push.Sender
	logger        *logrus.Logger
}

// NewProcessor wires the worker's collaborators.
func NewProcessor(users *user.Store, notifications *notification.Store, sender push.Sender, logger *logrus.Logger) *Processor {
	return &Processor{
		users:         users,
		notifications: notifications,
		sender:        sender,
		logger:        logger,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.logger.WithError(err).Error("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg DispatchMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log := p.logger.WithFields(logrus.Fields{
		"user_id":  msg.UserID,
		"order_id": msg.OrderID,
	})

	u, err := p.users.Get(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if u == nil || u.PushToken == "" {
		// nothing to deliver to; no external call, no notification row
		log.Info("user has no push token, skipping dispatch")
		return nil
	}

	ticket, err := p.sender.Send(ctx, push.Message{
		To:    u.PushToken,
		Title: msg.Title,
		Body:  msg.Message,
	})
	if err != nil {
		// transient push failure: let SQS redeliver
		return fmt.Errorf("send push: %w", err)
	}

	if ticket.DeviceNotRegistered() {
		// the token is dead; drop it and the message, retrying is useless
		if err := p.users.ClearPushToken(ctx, msg.UserID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				log.Warn("user vanished before push token cleanup")
				return nil
			}
			return fmt.Errorf("clear push token: %w", err)
		}
		log.Info("cleared unregistered push token")
		return nil
	}

	if !ticket.OK() {
		return fmt.Errorf("push service rejected message: %s", ticket.Message)
	}

	if err := p.notifications.Create(ctx, notification.Notification{
		NotificationID: uuid.NewString(),
		UserID:         msg.UserID,
		Title:          msg.Title,
		Message:        msg.Message,
	}); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	log.Info("notification dispatched")
	return nil
}
