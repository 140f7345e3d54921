package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeReservedCharacters(t *testing.T) {
	assert.Equal(t, `A\*B\_C\[D\]E`, Escape("A*B_C[D]E"))
	assert.Equal(t, "обычный текст", Escape("обычный текст"))
	assert.Equal(t, "", Escape(""))
	assert.Equal(t, "\\`code\\`", Escape("`code`"))
}

func TestEscapeIsCharacterByCharacter(t *testing.T) {
	// Every reserved character gets its own backslash, even in runs
	assert.Equal(t, `\*\*\*`, Escape("***"))
}

func TestLimitFor(t *testing.T) {
	assert.Equal(t, CaptionLimit, LimitFor(true))
	assert.Equal(t, TextLimit, LimitFor(false))
}

func TestUsableImage(t *testing.T) {
	assert.True(t, UsableImage("https://example.com/a.jpg"))
	assert.True(t, UsableImage("http://example.com/a.jpg"))
	assert.False(t, UsableImage(""))
	assert.False(t, UsableImage("ftp://example.com/a.jpg"))
	assert.False(t, UsableImage("example.com/a.jpg"))
}

func TestRenderFitsWithoutTruncation(t *testing.T) {
	got := Render("Заголовок", "Иван", "Краткое описание.", TextLimit)

	assert.Equal(t, "*Заголовок*\n\nАвтор: *Иван*\n\nКраткое описание.", got)
}

func TestRenderOmitsEmptyAuthor(t *testing.T) {
	got := Render("Title", "", "Body", TextLimit)

	assert.Equal(t, "*Title*\n\nBody", got)
	assert.NotContains(t, got, "Автор")
}

func TestRenderEscapesTitleAndBody(t *testing.T) {
	got := Render("a*b", "c_d", "e[f]", TextLimit)

	assert.Contains(t, got, `*a\*b*`)
	assert.Contains(t, got, `*c\_d*`)
	assert.Contains(t, got, `e\[f\]`)
}

func TestRenderTruncatesToExactLimit(t *testing.T) {
	// Header "*T*\n\n" is 5 runes; 45 remain, so the body is cut to 42
	// runes plus the ellipsis.
	got := Render("T", "", strings.Repeat("x", 100), 50)

	runes := []rune(got)
	require.Len(t, runes, 50)
	assert.True(t, strings.HasPrefix(got, "*T*\n\n"))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestRenderCaptionCapWithCyrillic(t *testing.T) {
	// Multibyte text: the cap is counted in runes, not bytes
	got := Render("Заголовок", "Автор", strings.Repeat("я", 3000), CaptionLimit)

	assert.Len(t, []rune(got), CaptionLimit)
	assert.True(t, strings.HasPrefix(got, "*Заголовок*\n\n"))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestRenderNeverSplitsEscapePair(t *testing.T) {
	// The cut lands between a backslash and the character it escapes;
	// the dangling backslash must be dropped.
	got := Render("T", "", "x*yyyy", 10)

	assert.Equal(t, "*T*\n\nx...", got)
}

func TestRenderHeaderNearLimitShortBodyUntouched(t *testing.T) {
	// Header "*1234*\n\n" is 8 runes, exactly limit-3; the one-rune body
	// fits, so nothing may be truncated.
	got := Render("1234", "", "x", 11)

	assert.Equal(t, "*1234*\n\nx", got)
}

func TestRenderExactFitUntouched(t *testing.T) {
	// Header 8 runes + body 3 runes lands exactly on the limit
	got := Render("1234", "", "xyz", 11)

	assert.Equal(t, "*1234*\n\nxyz", got)
}

func TestRenderHeaderAloneOverLimit(t *testing.T) {
	got := Render(strings.Repeat("t", 100), "", "body", 20)

	assert.Len(t, []rune(got), 20)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestRenderLongMessageUnderTextLimit(t *testing.T) {
	got := Render("Title", "Author", strings.Repeat("word ", 2000), TextLimit)

	assert.LessOrEqual(t, len([]rune(got)), TextLimit)
}
