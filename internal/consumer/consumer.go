// Package consumer triggers notifications from failure events published on the message bus.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	"github.com/telhawk-systems/telhawk-notify/internal/messaging"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
)

// Notifier renders and delivers a failure event.
type Notifier interface {
	Notify(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error)
}

// Consumer subscribes to failure events and invokes the notifier once per message.
type Consumer struct {
	client   messaging.Client
	notifier Notifier
	logger   *logging.Logger
	subject  string
	queue    string
	sub      messaging.Subscription
}

// New creates a consumer for subject in queue group queue.
func New(client messaging.Client, notifier Notifier, subject, queue string, logger *logging.Logger) *Consumer {
	if subject == "" {
		subject = messaging.SubjectWorkflowFailuresNotify
	}
	if queue == "" {
		queue = messaging.QueueNotifyWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Consumer{
		client:   client,
		notifier: notifier,
		logger:   logger,
		subject:  subject,
		queue:    queue,
	}
}

// Start subscribes to the configured subject. Non-blocking.
func (c *Consumer) Start() error {
	sub, err := c.client.QueueSubscribe(c.subject, c.queue, c.handle)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.subject, err)
	}
	c.sub = sub
	c.logger.Info("consuming failure events", "subject", c.subject, "queue", c.queue)
	return nil
}

// Stop unsubscribes. In-flight messages are left to the client's Drain.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Unsubscribe()
}

func (c *Consumer) handle(ctx context.Context, msg *messaging.Message) error {
	requestID := msg.Metadata[middleware.RequestIDHeader]
	if requestID == "" {
		requestID = middleware.NewRequestID()
	}
	ctx = middleware.WithRequestID(ctx, requestID)

	event, err := models.DecodeFailureEvent(msg.Data)
	if err != nil {
		c.logger.WarnContext(ctx, "rejected malformed failure event", logging.Error(err))
		c.reply(ctx, msg, models.ErrorResponse{RequestID: requestID, Error: err.Error()})
		return err
	}

	resp, err := c.notifier.Notify(ctx, "nats", event)
	if err != nil {
		c.reply(ctx, msg, models.ErrorResponse{RequestID: requestID, Error: err.Error()})
		return err
	}

	c.reply(ctx, msg, resp)
	return nil
}

// reply publishes the outcome when the publisher asked for one.
func (c *Consumer) reply(ctx context.Context, msg *messaging.Message, outcome any) {
	if msg.Reply == "" {
		return
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to encode reply", logging.Error(err))
		return
	}

	out := &messaging.Message{
		Subject:  msg.Reply,
		Data:     data,
		Metadata: map[string]string{middleware.RequestIDHeader: middleware.GetRequestID(ctx)},
	}
	if err := c.client.PublishMsg(ctx, out); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish reply", logging.Error(err))
	}
}
