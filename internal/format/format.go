// Package format renders news records into Telegram-safe Markdown
// messages. All length accounting is done in runes, after escaping, so
// the rendered message never exceeds the transport's character limits.
package format

import (
	"strings"
)

const (
	// CaptionLimit is the Telegram cap for photo captions.
	CaptionLimit = 1024
	// TextLimit is the Telegram cap for plain text messages.
	TextLimit = 4096

	ellipsis = "..."
)

// reserved are the Markdown characters Telegram's legacy parser treats as
// markup.
const reserved = "*_[]`"

// Escape prefixes every reserved Markdown character with a backslash,
// character by character. Applied to user/model-generated text only,
// never to the static header template.
func Escape(text string) string {
	if text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LimitFor picks the message cap by delivery shape.
func LimitFor(hasImage bool) int {
	if hasImage {
		return CaptionLimit
	}
	return TextLimit
}

// UsableImage reports whether the URL can be sent as a Telegram photo.
func UsableImage(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Render composes the reviewer/channel message: a bold title header, an
// author line when the author is known, then the description. If the
// composed message exceeds the limit, the description is truncated with
// an ellipsis and the header kept intact; if the header alone exceeds the
// limit, the whole message is truncated.
func Render(title, author, description string, limit int) string {
	var h strings.Builder
	h.WriteString("*")
	h.WriteString(Escape(title))
	h.WriteString("*\n\n")
	if author != "" {
		h.WriteString("Автор: *")
		h.WriteString(Escape(author))
		h.WriteString("*\n\n")
	}
	header := h.String()
	body := Escape(description)

	headerRunes := []rune(header)
	bodyRunes := []rune(body)

	if len(headerRunes)+len(bodyRunes) <= limit {
		return header + body
	}

	remaining := limit - len(headerRunes)
	if remaining <= len(ellipsis) {
		// Header leaves no room for any content: cut the whole message
		return string(trimDanglingEscape(headerRunes[:limit-len(ellipsis)])) + ellipsis
	}

	cut := trimDanglingEscape(bodyRunes[:remaining-len(ellipsis)])
	return header + string(cut) + ellipsis
}

// trimDanglingEscape drops a trailing backslash that would otherwise be
// split from the character it escapes.
func trimDanglingEscape(runes []rune) []rune {
	trailing := 0
	for i := len(runes) - 1; i >= 0 && runes[i] == '\\'; i-- {
		trailing++
	}
	if trailing%2 == 1 {
		return runes[:len(runes)-1]
	}
	return runes
}
