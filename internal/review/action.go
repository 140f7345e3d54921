package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vestnikbot/vestnik/internal/telegram"
)

// ActionKind enumerates what a reviewer button can ask for.
type ActionKind string

// ActionSend asks to publish the record to the public channel.
const ActionSend ActionKind = "send"

// Action is the decoded form of a callback payload.
type Action struct {
	Kind     ActionKind
	RecordID int64
}

// ErrMalformedAction is returned for any payload that is not exactly a
// known kind plus a decimal record id. The parser fails closed: stale
// clients, manual edits and truncated payloads all land here.
var ErrMalformedAction = errors.New("malformed action payload")

// maxPayloadLen matches the Telegram callback_data limit.
const maxPayloadLen = 64

// ParseAction decodes an opaque callback payload such as "send_12".
func ParseAction(data string) (Action, error) {
	if data == "" || len(data) > maxPayloadLen {
		return Action{}, ErrMalformedAction
	}

	kind, idPart, ok := strings.Cut(data, "_")
	if !ok || kind != string(ActionSend) || idPart == "" {
		return Action{}, ErrMalformedAction
	}

	for _, c := range idPart {
		if c < '0' || c > '9' {
			return Action{}, ErrMalformedAction
		}
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Action{}, ErrMalformedAction
	}

	return Action{Kind: ActionSend, RecordID: id}, nil
}

// Token encodes an action into a callback payload.
func Token(kind ActionKind, recordID int64) string {
	return fmt.Sprintf("%s_%d", kind, recordID)
}

// ApproveKeyboard builds the single-button markup attached to a reviewer
// notification.
func ApproveKeyboard(recordID int64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{Text: "Отправить", CallbackData: Token(ActionSend, recordID)},
			},
		},
	}
}
