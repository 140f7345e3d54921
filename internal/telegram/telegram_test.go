package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestnikbot/vestnik/internal/retry"
)

func newTestBot(t *testing.T, handler http.HandlerFunc) *Bot {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	bot := NewBot("test-token", retry.Config{MaxAttempts: 1, Delay: time.Millisecond})
	bot.BaseURL = server.URL
	return bot
}

func decodePayload(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	return payload
}

func TestSendMessagePayload(t *testing.T) {
	var gotPath string
	var payload map[string]interface{}
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		payload = decodePayload(t, r)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	kb := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "Отправить", CallbackData: "send_1"}},
	}}
	err := bot.SendMessage(context.Background(), "42", "*Заголовок*", kb)

	require.NoError(t, err)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "*Заголовок*", payload["text"])
	assert.Equal(t, "Markdown", payload["parse_mode"])
	assert.Equal(t, true, payload["disable_web_page_preview"])
	assert.NotNil(t, payload["reply_markup"])
}

func TestSendPhotoPayload(t *testing.T) {
	var payload map[string]interface{}
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	err := bot.SendPhoto(context.Background(), "-100123", "https://img/1.jpg", "caption", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://img/1.jpg", payload["photo"])
	assert.Equal(t, "caption", payload["caption"])
	_, hasKeyboard := payload["reply_markup"]
	assert.False(t, hasKeyboard)
}

func TestSendMessageAPIError(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := bot.SendMessage(context.Background(), "42", "text", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestAnswerCallbackQuery(t *testing.T) {
	var payload map[string]interface{}
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		w.Write([]byte(`{"ok":true,"result":true}`))
	})

	err := bot.AnswerCallbackQuery(context.Background(), "cb1", "Новость отправлена в канал")

	require.NoError(t, err)
	assert.Equal(t, "cb1", payload["callback_query_id"])
	assert.Equal(t, "Новость отправлена в канал", payload["text"])
}

func TestGetUpdatesParsesCallbacks(t *testing.T) {
	var payload map[string]interface{}
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"callback_query":{"id":"cb1","from":{"id":42},"data":"send_3"}}
		]}`))
	})

	updates, err := bot.GetUpdates(context.Background(), 5, 30)

	require.NoError(t, err)
	assert.Equal(t, float64(5), payload["offset"])
	assert.Equal(t, float64(30), payload["timeout"])
	require.Len(t, updates, 1)
	assert.Equal(t, int64(7), updates[0].UpdateID)
	require.NotNil(t, updates[0].CallbackQuery)
	assert.Equal(t, "send_3", updates[0].CallbackQuery.Data)
	assert.Equal(t, int64(42), updates[0].CallbackQuery.From.ID)
}

func TestGetUpdatesOutlivesDeliveryClientTimeout(t *testing.T) {
	// The long poll must not be bounded by the delivery client's fixed
	// timeout: the server holds an idle poll for the full window, so the
	// poll deadline has to land past it.
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"ok":true,"result":[]}`))
	})
	bot.client.Timeout = 10 * time.Millisecond

	updates, err := bot.GetUpdates(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestGetUpdatesHonorsContext(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and
		// can observe the client disconnect; otherwise r.Context() is
		// never canceled and the handler deadlocks against Cleanup.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bot.GetUpdates(ctx, 0, 30)

	assert.Error(t, err)
}
