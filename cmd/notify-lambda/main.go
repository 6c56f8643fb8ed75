package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/telhawk-systems/telhawk-notify/internal/config"
	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
	"github.com/telhawk-systems/telhawk-notify/internal/service"
)

func main() {
	logger := logging.New(logging.ParseLevel("info"), "json").With(logging.Service("notify-lambda"))

	h := &handler{logger: logger}

	cfg, err := config.Load("")
	if err != nil {
		// Returned from every invocation until the function is redeployed.
		h.initErr = err
	} else {
		logger = logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format).With(logging.Service("notify-lambda"))
		h.logger = logger

		channel, err := notification.NewGoogleChatChannel(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
		if err != nil {
			h.initErr = err
		} else {
			h.notifier = service.NewService(channel, nil, logger)
		}
	}
	logging.SetDefault(logger)

	lambda.Start(h.Handle)
}
