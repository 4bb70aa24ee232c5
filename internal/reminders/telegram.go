package reminders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

var ErrTelegramNotConfigured = errors.New("telegram bot token and chat id are required")

type TelegramNotifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

func NewTelegramNotifier(botToken string, chatID string) (*TelegramNotifier, error) {
	botToken = strings.TrimSpace(botToken)
	chatID = strings.TrimSpace(chatID)
	if botToken == "" || chatID == "" {
		return nil, ErrTelegramNotConfigured
	}
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultTelegramAPIBase,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}, nil
}

// WithAPIBase points the notifier at another Bot API host.
func (notifier *TelegramNotifier) WithAPIBase(apiBase string) *TelegramNotifier {
	if trimmed := strings.TrimRight(strings.TrimSpace(apiBase), "/"); trimmed != "" {
		notifier.apiBase = trimmed
	}
	return notifier
}

func (notifier *TelegramNotifier) Notify(ctx context.Context, message Message) error {
	values := url.Values{}
	values.Set("chat_id", notifier.chatID)
	values.Set("text", message.Text())

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", notifier.apiBase, notifier.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := notifier.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
