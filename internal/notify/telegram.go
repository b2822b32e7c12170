// Package notify delivers out-of-band user messages through the Telegram
// Bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const apiBase = "https://api.telegram.org"

// Telegram sends messages via the Bot API sendMessage method.
type Telegram struct {
	botToken string
	client   *http.Client
	baseURL  string
}

func NewTelegram(botToken string) *Telegram {
	return &Telegram{
		botToken: botToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  apiBase,
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Notify(ctx context.Context, userID int64, message string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: userID, Text: message})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result sendMessageResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram api error: %s", result.Description)
	}

	return nil
}

// Log is a fallback notifier used when no bot token is configured. It only
// records that a notification would have been sent.
type Log struct{}

func (Log) Notify(_ context.Context, userID int64, message string) error {
	slog.Info("notification (no bot token configured)", "user_id", userID, "message", message)
	return nil
}
