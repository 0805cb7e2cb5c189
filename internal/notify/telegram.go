package notify

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/textutil"
)

var (
	ErrNotConfigured = errors.New("notification channel not configured")
	ErrTimeout       = errors.New("notification request timed out")
)

// ChannelError reports a non-success response from the notification API.
type ChannelError struct {
	StatusCode int
	Body       string
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("notification channel returned status %d: %s", e.StatusCode, e.Body)
}

const (
	defaultEndpoint = "https://api.telegram.org"
	requestTimeout  = 10 * time.Second

	// Subjects and senders are clipped before they go into a notification.
	notifyFieldLength = 100
)

// TelegramSink delivers notifications through the Telegram bot API.
type TelegramSink struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewTelegramSink(token, chatID string, logger *zap.Logger) *TelegramSink {
	return &TelegramSink{
		token:    token,
		chatID:   chatID,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Send posts a single HTML-formatted message to the configured chat.
func (s *TelegramSink) Send(text string) error {
	if s.token == "" || s.chatID == "" {
		return ErrNotConfigured
	}

	resp, err := s.client.PostForm(
		fmt.Sprintf("%s/bot%s/sendMessage", s.endpoint, s.token),
		url.Values{
			"chat_id":    {s.chatID},
			"text":       {text},
			"parse_mode": {"HTML"},
		},
	)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("could not send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ChannelError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	s.logger.Debug("Notification delivered")
	return nil
}

// SpamDetected announces a message the classifier flagged as spam.
func (s *TelegramSink) SpamDetected(subject, sender string, receivedAt time.Time) error {
	return s.Send(fmt.Sprintf(
		"🚨 <b>Spam detected</b>\n\n<b>Subject:</b> %s\n<b>From:</b> %s\n<b>Received:</b> %s",
		textutil.Truncate(subject, notifyFieldLength),
		textutil.Truncate(sender, notifyFieldLength),
		formatReceived(receivedAt),
	))
}

// HamVerified announces a message the classifier cleared.
func (s *TelegramSink) HamVerified(subject, sender string, receivedAt time.Time) error {
	return s.Send(fmt.Sprintf(
		"✅ <b>Ham verified</b>\n\n<b>Subject:</b> %s\n<b>From:</b> %s\n<b>Received:</b> %s",
		textutil.Truncate(subject, notifyFieldLength),
		textutil.Truncate(sender, notifyFieldLength),
		formatReceived(receivedAt),
	))
}

// ServiceStarted announces the monitor coming online.
func (s *TelegramSink) ServiceStarted() error {
	return s.Send("📬 <b>Spam sentinel started</b>\n\nMailbox monitoring is active.")
}

// ErrorOccurred reports an operational problem to the channel.
func (s *TelegramSink) ErrorOccurred(message string) error {
	return s.Send(fmt.Sprintf("⚠️ <b>Error</b>\n\n%s", textutil.Truncate(message, 400)))
}

func formatReceived(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02 15:04")
}
