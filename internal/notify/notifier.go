package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrNotifyFailed is returned when the notification channel is unreachable
// or rejects the message.
var ErrNotifyFailed = errors.New("notification failed")

// DefaultEndpoint is the Telegram Bot API base URL.
const DefaultEndpoint = "https://api.telegram.org"

// ParseModeMarkdown is the formatting mode of every message.
const ParseModeMarkdown = "Markdown"

// Notifier sends a formatted text message to a configured destination.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// sendMessageRequest is the body of a Bot API sendMessage call.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// TelegramNotifier sends messages through the Telegram Bot API.
type TelegramNotifier struct {
	endpoint    string
	destination string
	credential  string
	client      *http.Client
	logger      *slog.Logger
}

// Option configures a TelegramNotifier.
type Option func(*TelegramNotifier)

// WithEndpoint overrides the Bot API base URL.
func WithEndpoint(endpoint string) Option {
	return func(n *TelegramNotifier) {
		if endpoint != "" {
			n.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(n *TelegramNotifier) {
		if c != nil {
			n.client = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *TelegramNotifier) {
		n.logger = logger
	}
}

// NewTelegramNotifier creates a notifier for chat destination using bot credential.
func NewTelegramNotifier(destination, credential string, opts ...Option) *TelegramNotifier {
	n := &TelegramNotifier{
		endpoint:    DefaultEndpoint,
		destination: destination,
		credential:  credential,
		client:      &http.Client{Timeout: 15 * time.Second},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enabled reports whether both destination and credential are configured.
func (n *TelegramNotifier) Enabled() bool {
	return n.destination != "" && n.credential != ""
}

// Send posts text to the destination chat. A disabled notifier skips
// silently and returns nil.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		n.logger.Debug("notification not configured, skipping")
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.destination,
		Text:      text,
		ParseMode: ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", ErrNotifyFailed, err)
	}

	url := n.endpoint + "/bot" + n.credential + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrNotifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: sendMessage returned %s", ErrNotifyFailed, resp.Status)
	}

	n.logger.Debug("notification sent")
	return nil
}
