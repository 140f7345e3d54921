package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func serveHTML(t *testing.T, html string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestExtractArticleContent(t *testing.T) {
	paragraph := strings.Repeat("Researchers announced a breakthrough in materials science today. ", 5)
	url := serveHTML(t, `<html><head><title>News</title></head><body>
		<article>
			<p>`+paragraph+`</p>
			<p>`+paragraph+`</p>
			<p>`+paragraph+`</p>
		</article>
	</body></html>`)

	e := NewExtractor(5 * time.Second)
	got := e.Extract(context.Background(), url)

	assert.NotEqual(t, BodyUnavailable, got)
	assert.Contains(t, got, "breakthrough in materials science")
}

func TestExtractCapsBodyLength(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><article>")
	for i := 0; i < 50; i++ {
		b.WriteString("<p>")
		b.WriteString(strings.Repeat("Длинное предложение о новостях науки и техники. ", 10))
		b.WriteString("</p>")
	}
	b.WriteString("</article></body></html>")
	url := serveHTML(t, b.String())

	e := NewExtractor(5 * time.Second)
	got := e.Extract(context.Background(), url)

	assert.NotEqual(t, BodyUnavailable, got)
	assert.LessOrEqual(t, len([]rune(got)), 3000)
}

func TestExtractTooShortContent(t *testing.T) {
	url := serveHTML(t, `<html><body><article><p>Too short.</p></article></body></html>`)

	e := NewExtractor(5 * time.Second)
	got := e.Extract(context.Background(), url)

	assert.Equal(t, BodyUnavailable, got)
}

func TestExtractBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	e := NewExtractor(5 * time.Second)
	got := e.Extract(context.Background(), server.URL)

	assert.Equal(t, BodyUnavailable, got)
}

func TestExtractUnreachableHost(t *testing.T) {
	e := NewExtractor(500 * time.Millisecond)
	got := e.Extract(context.Background(), "http://127.0.0.1:1/nothing")

	assert.Equal(t, BodyUnavailable, got)
}
