package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/telhawk-systems/telhawk-notify/internal/card"
	"github.com/telhawk-systems/telhawk-notify/internal/logging"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "TelHawk-Notify/1.0"
)

// ErrMissingWebhookURL is returned when no webhook endpoint is configured.
var ErrMissingWebhookURL = errors.New("missing webhook URL")

// Channel defines the interface for card message delivery.
type Channel interface {
	Send(ctx context.Context, msg *card.Message) error
	Type() string
}

// DeliveryError reports a failed delivery attempt. StatusCode is set when the
// endpoint answered with a non-2xx status; Err is set on transport failure.
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to send message. status code:%d", e.StatusCode)
	}
	return fmt.Sprintf("Failed to send request: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// GoogleChatChannel posts card messages to a Google Chat incoming webhook.
// Each Send makes exactly one attempt.
type GoogleChatChannel struct {
	url    string
	client *http.Client
	logger *logging.Logger
}

// NewGoogleChatChannel validates the webhook URL and builds the channel.
func NewGoogleChatChannel(webhookURL string, timeout time.Duration, logger *logging.Logger) (*GoogleChatChannel, error) {
	if webhookURL == "" {
		return nil, ErrMissingWebhookURL
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL must include a host")
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &GoogleChatChannel{
		url: webhookURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(logging.Channel("googlechat")),
	}, nil
}

func (g *GoogleChatChannel) Type() string {
	return "googlechat"
}

func (g *GoogleChatChannel) Send(ctx context.Context, msg *card.Message) error {
	body, err := encodeMessage(msg)
	if err != nil {
		deliveriesTotal.WithLabelValues(g.Type(), "error").Inc()
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		deliveriesTotal.WithLabelValues(g.Type(), "error").Inc()
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := g.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observe(g.Type(), "error", elapsed)
		return &DeliveryError{Err: redactError(err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observe(g.Type(), "failed", elapsed)
		g.logger.WarnContext(ctx, "webhook rejected message",
			logging.URL(RedactURL(g.url)),
			logging.Status(resp.StatusCode),
		)
		return &DeliveryError{StatusCode: resp.StatusCode}
	}

	observe(g.Type(), "success", elapsed)
	g.logger.InfoContext(ctx, "Message sent",
		logging.Status(resp.StatusCode),
		logging.Duration(elapsed.Milliseconds()),
	)
	return nil
}

// UnconfiguredChannel stands in for the webhook channel when no URL is set.
// Every Send fails with ErrMissingWebhookURL.
type UnconfiguredChannel struct{}

func (UnconfiguredChannel) Type() string {
	return "googlechat"
}

func (c UnconfiguredChannel) Send(context.Context, *card.Message) error {
	deliveriesTotal.WithLabelValues(c.Type(), "unconfigured").Inc()
	return ErrMissingWebhookURL
}

// LogChannel writes rendered card messages to the logger instead of delivering them.
type LogChannel struct {
	logger *logging.Logger
}

// NewLogChannel creates a dry-run channel.
func NewLogChannel(logger *logging.Logger) *LogChannel {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Type() string {
	return "log"
}

func (l *LogChannel) Send(ctx context.Context, msg *card.Message) error {
	body, err := encodeMessage(msg)
	if err != nil {
		deliveriesTotal.WithLabelValues(l.Type(), "error").Inc()
		return err
	}
	l.logger.InfoContext(ctx, "card message rendered",
		logging.Channel(l.Type()),
		"payload", string(bytes.TrimSpace(body)),
	)
	deliveriesTotal.WithLabelValues(l.Type(), "success").Inc()
	return nil
}

// encodeMessage serializes msg without HTML escaping so the card markup
// reaches the webhook as written.
func encodeMessage(msg *card.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("marshal card message: %w", err)
	}
	return buf.Bytes(), nil
}

// redactError strips webhook credentials from transport errors, which embed the request URL.
func redactError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = RedactURL(uerr.URL)
	}
	return err
}

// RedactURL masks credentials in a URL for safe logging.
// It redacts userinfo passwords and query parameter values.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	redacted := u.Redacted()
	if u.RawQuery == "" {
		return redacted
	}

	q := u.Query()
	for key := range q {
		q.Set(key, "REDACTED")
	}
	r, err := url.Parse(redacted)
	if err != nil {
		return redacted
	}
	r.RawQuery = q.Encode()
	return r.String()
}
