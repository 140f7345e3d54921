// Package review implements the approve-and-publish handshake: a
// reviewer's button press is resolved back to a persisted record, the
// message is re-rendered from storage and pushed to the public channel.
package review

import (
	"context"

	"github.com/vestnikbot/vestnik/internal/format"
	"github.com/vestnikbot/vestnik/internal/logger"
	"github.com/vestnikbot/vestnik/internal/metrics"
	"github.com/vestnikbot/vestnik/internal/storage"
	"github.com/vestnikbot/vestnik/internal/telegram"
)

// Reviewer-visible acknowledgments. The public channel never sees raw
// errors; the reviewer only ever sees one of these.
const (
	ackPublished = "Новость отправлена в канал"
	ackAlready   = "Новость уже опубликована"
	ackNotFound  = "Новость не найдена"
	ackSendError = "Ошибка при отправке"
	ackBadAction = "Некорректный запрос"
)

// Sink is the outbound side of the gate.
type Sink interface {
	SendMessage(ctx context.Context, chatID, text string, keyboard *telegram.InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatID, photoURL, caption string, keyboard *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

type handlerFunc func(ctx context.Context, cb *telegram.CallbackQuery, recordID int64)

// Gate resolves reviewer actions against the store and publishes approved
// records to the channel.
type Gate struct {
	store         storage.Store
	sink          Sink
	channelChatID string
	handlers      map[ActionKind]handlerFunc
}

func NewGate(store storage.Store, sink Sink, channelChatID string) *Gate {
	g := &Gate{
		store:         store,
		sink:          sink,
		channelChatID: channelChatID,
	}
	g.handlers = map[ActionKind]handlerFunc{
		ActionSend: g.handleSend,
	}
	return g
}

// HandleCallback dispatches one reviewer button press.
func (g *Gate) HandleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	action, err := ParseAction(cb.Data)
	if err != nil {
		logger.Warn("rejected callback payload", "data", cb.Data)
		g.answer(ctx, cb.ID, ackBadAction)
		return
	}

	handler, ok := g.handlers[action.Kind]
	if !ok {
		g.answer(ctx, cb.ID, ackBadAction)
		return
	}
	handler(ctx, cb, action.RecordID)
}

func (g *Gate) handleSend(ctx context.Context, cb *telegram.CallbackQuery, recordID int64) {
	rec, err := g.store.GetByID(ctx, recordID)
	if err != nil {
		logger.Error("failed to load record for publish", "id", recordID, "error", err)
		g.answer(ctx, cb.ID, ackSendError)
		return
	}
	if rec == nil {
		// Stale or replayed action: terminal, no retry
		logger.Warn("publish requested for unknown record", "id", recordID)
		g.answer(ctx, cb.ID, ackNotFound)
		return
	}
	if rec.PublishedToChannelAt != nil {
		logger.Info("record already published", "id", recordID)
		g.answer(ctx, cb.ID, ackAlready)
		return
	}

	// The stored record is the source of truth: re-render from scratch
	hasImage := format.UsableImage(rec.ImageURL)
	message := format.Render(rec.Title, rec.Author, rec.Description, format.LimitFor(hasImage))

	if hasImage {
		err = g.sink.SendPhoto(ctx, g.channelChatID, rec.ImageURL, message, nil)
	} else {
		err = g.sink.SendMessage(ctx, g.channelChatID, message, nil)
	}
	if err != nil {
		logger.Error("failed to publish to channel", "id", recordID, "error", err)
		g.answer(ctx, cb.ID, ackSendError)
		return
	}

	if _, err := g.store.MarkPublished(ctx, recordID); err != nil {
		logger.Error("failed to mark record published", "id", recordID, "error", err)
	}

	metrics.Global.IncrementPublished()
	logger.Info("news published to channel", "id", recordID, "title", rec.Title)
	g.answer(ctx, cb.ID, ackPublished)
}

func (g *Gate) answer(ctx context.Context, callbackID, text string) {
	if err := g.sink.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		logger.Warn("failed to answer callback", "error", err)
	}
}
