package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telhawk-systems/telhawk-notify/internal/config"
	"github.com/telhawk-systems/telhawk-notify/internal/consumer"
	"github.com/telhawk-systems/telhawk-notify/internal/dedup"
	"github.com/telhawk-systems/telhawk-notify/internal/handlers"
	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	natsclient "github.com/telhawk-systems/telhawk-notify/internal/messaging/nats"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
	"github.com/telhawk-systems/telhawk-notify/internal/server"
	"github.com/telhawk-systems/telhawk-notify/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format).With(logging.Service("notify"))
	logging.SetDefault(logger)

	// Delivery channel; without a URL every invocation reports the missing configuration
	var channel notification.Channel
	gc, err := notification.NewGoogleChatChannel(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
	switch {
	case errors.Is(err, notification.ErrMissingWebhookURL):
		logger.Warn("No webhook URL configured, notifications will fail until NOTIFY_WEBHOOK_URL is set")
		channel = notification.UnconfiguredChannel{}
	case err != nil:
		fatal(logger, "Failed to initialize webhook channel", err)
	default:
		logger.Info("Webhook channel configured", logging.URL(notification.RedactURL(cfg.Webhook.URL)))
		channel = gc
	}

	// Optional duplicate suppression
	var guard dedup.Guard
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := dedup.NewRedisClient(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			fatal(logger, "Failed to connect to Redis", err)
		}
		defer redisClient.Close()
		guard = dedup.NewRedisGuard(redisClient, cfg.Dedup.TTL)
		logger.Info("Duplicate suppression enabled", "ttl", cfg.Dedup.TTL.String())
	}

	// Initialize service
	svc := service.NewService(channel, guard, logger)

	// Optional NATS trigger
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL

		natsClient, err := natsclient.NewClient(natsCfg, logger)
		if err != nil {
			fatal(logger, "Failed to connect to NATS", err)
		}
		defer func() {
			if err := natsClient.Drain(); err != nil {
				logger.Warn("Failed to drain NATS connection", logging.Error(err))
			}
		}()

		c := consumer.New(natsClient, svc, cfg.NATS.Subject, cfg.NATS.Queue, logger)
		if err := c.Start(); err != nil {
			fatal(logger, "Failed to start NATS consumer", err)
		}
		defer func() { _ = c.Stop() }()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handlers.NewHandler(svc)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Notify service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(logger, "Server error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Error(err))
		return
	}

	logger.Info("Server stopped gracefully")
}

func fatal(logger *logging.Logger, msg string, err error) {
	logger.Error(msg, logging.Error(err))
	os.Exit(1)
}
