package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cashbook/internal/models"
)

// TelegramAPI is the default Bot API endpoint.
const TelegramAPI = "https://api.telegram.org"

// TelegramNotifier sends reminders to one chat through the Telegram Bot API.
type TelegramNotifier struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegramNotifier creates a notifier for the bot token and chat. An
// empty baseURL means TelegramAPI.
func NewTelegramNotifier(baseURL, token, chatID string) *TelegramNotifier {
	if baseURL == "" {
		baseURL = TelegramAPI
	}
	return &TelegramNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *TelegramNotifier) Notify(ctx context.Context, task models.ReminderTask) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID: n.chatID,
		Text:   task.Title + "\n" + task.Body,
	})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", withoutURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", withoutURL(err))
	}
	defer resp.Body.Close()

	var out botResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode telegram response (status %d): %w", resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("telegram rejected message: %s", out.Description)
	}
	return nil
}

// withoutURL strips the request URL from err, since it carries the bot token.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
