// Package telegram speaks the Bot API directly over HTTP: the bot needs
// four methods and a few payload shapes, which does not justify a client
// framework.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vestnikbot/vestnik/internal/logger"
	"github.com/vestnikbot/vestnik/internal/retry"
)

const defaultAPIBaseURL = "https://api.telegram.org"

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID int64 `json:"id"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// CallbackQuery carries the reviewer's button press with its opaque
// action payload.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// pollSlack is added on top of the long-poll window: the server holds an
// idle getUpdates connection for the full window, so the request deadline
// must land past it.
const pollSlack = 10 * time.Second

// Bot is a minimal Bot API client with retry on outbound deliveries.
type Bot struct {
	token    string
	client   *http.Client
	retryCfg retry.Config

	// pollClient has no fixed timeout; long polls are bounded by a
	// per-request context deadline instead.
	pollClient *http.Client

	// BaseURL is overridable for tests.
	BaseURL string
}

func NewBot(token string, retryCfg retry.Config) *Bot {
	return &Bot{
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
		pollClient: &http.Client{},
		retryCfg:   retryCfg,
		BaseURL:    defaultAPIBaseURL,
	}
}

// SendMessage sends a text message, optionally with an inline keyboard.
func (b *Bot) SendMessage(ctx context.Context, chatID, text string, keyboard *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}

	return retry.Do(ctx, b.retryCfg, func() error {
		_, err := b.call(ctx, "sendMessage", payload)
		return err
	})
}

// SendPhoto sends a photo by URL with a caption, optionally with an
// inline keyboard.
func (b *Bot) SendPhoto(ctx context.Context, chatID, photoURL, caption string, keyboard *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}

	return retry.Do(ctx, b.retryCfg, func() error {
		_, err := b.call(ctx, "sendPhoto", payload)
		return err
	})
}

// AnswerCallbackQuery acknowledges a button press with a short popup text.
func (b *Bot) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
	}

	_, err := b.call(ctx, "answerCallbackQuery", payload)
	return err
}

// GetUpdates long-polls for updates past the given offset.
func (b *Bot) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         timeoutSec,
		"allowed_updates": []string{"callback_query"},
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second+pollSlack)
	defer cancel()

	result, err := b.callWith(ctx, b.pollClient, "getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

func (b *Bot) call(ctx context.Context, method string, payload map[string]interface{}) (json.RawMessage, error) {
	return b.callWith(ctx, b.client, method, payload)
}

func (b *Bot) callWith(ctx context.Context, client *http.Client, method string, payload map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", b.BaseURL, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram API error on %s: status %d: %s", method, resp.StatusCode, parsed.Description)
	}

	return parsed.Result, nil
}
