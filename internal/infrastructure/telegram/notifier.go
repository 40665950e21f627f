package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

const defaultEndpoint = "https://api.telegram.org"

// Notifier sends briefings to a Telegram chat via bot API.
type Notifier struct {
	endpoint string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Messenger = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Notifier{
		endpoint: endpoint,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   client,
	}
}

// Send posts text as a plain message; no parse mode is set so nothing is interpreted as markup.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier: %w", domain.ErrMissingCredential)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.endpoint, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: telegram request failed: %v", domain.ErrBackendTransport, strings.ReplaceAll(err.Error(), n.botToken, "REDACTED"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Description string `json:"description"`
		}
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Description != "" {
			return fmt.Errorf("%w: telegram error %s: %s", domain.ErrBackendTransport, resp.Status, apiErr.Description)
		}
		return fmt.Errorf("%w: telegram error: %s", domain.ErrBackendTransport, resp.Status)
	}

	return nil
}
