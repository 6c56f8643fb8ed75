package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-notify/internal/config"
	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
	"github.com/telhawk-systems/telhawk-notify/internal/service"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Render a failure event and deliver it",
		Long: `Read a failure event (JSON) from a file or stdin, render the card and
post it to the webhook. The webhook comes from --webhook-url, or from
webhook.url in the config file / NOTIFY_WEBHOOK_URL / WEBHOOK_URL.

Exactly one delivery attempt is made.`,
		Example: `  thawk-notify send -f event.json --webhook-url "https://chat.googleapis.com/v1/spaces/..."
  thawk-notify send -f event.json --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			file, _ := cmd.Flags().GetString("file")
			webhookURL, _ := cmd.Flags().GetString("webhook-url")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if webhookURL == "" {
				webhookURL = cfg.Webhook.URL
			}

			event, err := readEvent(cmd, file)
			if err != nil {
				return err
			}

			logger := logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), "text")

			var channel notification.Channel
			if dryRun {
				channel = notification.NewLogChannel(logger)
			} else {
				gc, err := notification.NewGoogleChatChannel(webhookURL, cfg.Webhook.Timeout, logger)
				if err != nil {
					if errors.Is(err, notification.ErrMissingWebhookURL) {
						return fmt.Errorf("%w: pass --webhook-url or set NOTIFY_WEBHOOK_URL", err)
					}
					return err
				}
				channel = gc
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.WithRequestID(ctx, middleware.NewRequestID())

			resp, err := service.NewService(channel, nil, logger).Notify(ctx, "cli", event)
			if err != nil {
				var de *notification.DeliveryError
				if errors.As(err, &de) {
					return de
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringP("file", "f", "", "event file (default: stdin)")
	cmd.Flags().String("webhook-url", "", "Google Chat webhook URL (overrides config)")
	cmd.Flags().Bool("dry-run", false, "log the rendered card instead of posting it")

	return cmd
}
