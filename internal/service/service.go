package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/telhawk-systems/telhawk-notify/internal/card"
	"github.com/telhawk-systems/telhawk-notify/internal/dedup"
	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
)

// ErrNilEvent is returned when Notify is called without an event.
var ErrNilEvent = errors.New("failure event is required")

// Service renders failure events and hands them to a delivery channel.
type Service struct {
	channel notification.Channel
	guard   dedup.Guard
	logger  *logging.Logger
}

// NewService creates a new service instance. A nil guard disables duplicate suppression.
func NewService(channel notification.Channel, guard dedup.Guard, logger *logging.Logger) *Service {
	if guard == nil {
		guard = dedup.NoopGuard{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		channel: channel,
		guard:   guard,
		logger:  logger,
	}
}

// Notify renders event into a card message and delivers it once. source
// names the invoker (http, nats, lambda, cli) for logs and metrics. The
// request ID in the returned Response is taken from ctx.
func (s *Service) Notify(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error) {
	if event == nil {
		invocationsTotal.WithLabelValues(source, "invalid").Inc()
		return nil, ErrNilEvent
	}

	requestID := middleware.GetRequestID(ctx)
	log := s.logger.With(
		logging.Source(source),
		logging.Workflow(event.Workflow),
		logging.ExcID(event.ExcID),
	)

	msg := card.Compose(event)

	key := dedup.Key(event)
	acquired, err := s.guard.Acquire(ctx, key)
	if err != nil {
		// Fail open: a broken dedup store must not swallow alerts.
		log.WarnContext(ctx, "dedup check failed, delivering anyway", logging.Error(err))
	} else if !acquired {
		log.InfoContext(ctx, "duplicate failure event suppressed")
		invocationsTotal.WithLabelValues(source, "duplicate").Inc()
		return &models.Response{RequestID: requestID, Message: models.MessageAlreadySent}, nil
	}

	if err := s.channel.Send(ctx, msg); err != nil {
		if acquired {
			if rerr := s.guard.Release(ctx, key); rerr != nil {
				log.WarnContext(ctx, "failed to release dedup key", logging.Error(rerr))
			}
		}
		log.ErrorContext(ctx, "failed to deliver card message",
			logging.Channel(s.channel.Type()),
			logging.Error(err),
		)
		invocationsTotal.WithLabelValues(source, "failed").Inc()
		return nil, fmt.Errorf("%s delivery: %w", s.channel.Type(), err)
	}

	invocationsTotal.WithLabelValues(source, "sent").Inc()
	return &models.Response{RequestID: requestID, Message: models.MessageSent}, nil
}
