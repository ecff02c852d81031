package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const telegramAPI = "https://api.telegram.org"

// maxMessageLen is the Telegram limit for a single message.
const maxMessageLen = 4096

// TelegramNotifier talks to the Telegram Bot API for one bot and one chat.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier, routing through proxyURL when set.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	n := &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  telegramAPI,
		Client:   &http.Client{Timeout: 35 * time.Second},
	}
	if u, err := url.Parse(proxyURL); err == nil && proxyURL != "" {
		n.Client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}
	return n
}

// botResponse is the envelope of every Bot API reply.
type botResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// call POSTs payload to a Bot API method and decodes the result into out
// when out is non-nil.
func (t *TelegramNotifier) call(ctx context.Context, method string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var env botResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || resp.StatusCode != http.StatusOK || !env.OK {
		return fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode, env.Description)
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// Send posts an HTML message to the chat, truncating it to the API limit.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen-4] + "\n..."
	}
	return t.call(ctx, "sendMessage", map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// SendWithRetry retries Send with doubling delays starting at one second.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	delay := time.Second
	var err error
	for attempt := 1; ; attempt++ {
		if err = t.Send(ctx, text); err == nil {
			return nil
		}
		if attempt > maxRetries {
			return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("telegram send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
