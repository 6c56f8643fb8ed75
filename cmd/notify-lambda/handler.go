package main

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
)

type notifier interface {
	Notify(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error)
}

// handler adapts the notify service to the Lambda runtime. The runtime decodes
// the invocation payload with FailureEvent.UnmarshalJSON, so events missing a
// required field never reach Handle.
type handler struct {
	notifier notifier
	logger   *logging.Logger
	initErr  error
}

// Handle renders and delivers one failure event. The returned error message is
// what the invoker sees, so delivery failures are unwrapped to the bare
// status message.
func (h *handler) Handle(ctx context.Context, event models.FailureEvent) (*models.Response, error) {
	if h.initErr != nil {
		return nil, h.initErr
	}

	requestID := ""
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		requestID = lc.AwsRequestID
	}
	if requestID == "" {
		requestID = middleware.NewRequestID()
	}
	ctx = middleware.WithRequestID(ctx, requestID)

	h.logger.DebugContext(ctx, "failure event received",
		logging.Workflow(event.Workflow),
		logging.ExcID(event.ExcID),
	)

	resp, err := h.notifier.Notify(ctx, "lambda", &event)
	if err != nil {
		var de *notification.DeliveryError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, err
	}
	return resp, nil
}
