package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionValid(t *testing.T) {
	action, err := ParseAction("send_12")

	require.NoError(t, err)
	assert.Equal(t, ActionSend, action.Kind)
	assert.Equal(t, int64(12), action.RecordID)
}

func TestParseActionRejectsMalformedPayloads(t *testing.T) {
	cases := []string{
		"",
		"send",
		"send_",
		"send_x9",
		"send_9x",
		"sendx_1",
		"_1",
		"send_1_2",
		"send_-1",
		"send_ 1",
		"approve_1",
		"SEND_1",
		"send_" + strings.Repeat("1", 70),
	}

	for _, data := range cases {
		_, err := ParseAction(data)
		assert.ErrorIs(t, err, ErrMalformedAction, "payload %q must be rejected", data)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token := Token(ActionSend, 42)
	assert.Equal(t, "send_42", token)

	action, err := ParseAction(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), action.RecordID)
}

func TestApproveKeyboard(t *testing.T) {
	kb := ApproveKeyboard(7)

	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, "Отправить", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "send_7", kb.InlineKeyboard[0][0].CallbackData)
}
