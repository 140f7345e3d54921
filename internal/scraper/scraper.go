package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/vestnikbot/vestnik/internal/logger"
)

// BodyUnavailable is returned when the article text cannot be extracted.
// It is valid (if low quality) input for the enrichment step, not an error.
const BodyUnavailable = "Не удалось извлечь текст статьи."

// maxBodyRunes bounds the extracted text to keep downstream enrichment
// cost predictable.
const maxBodyRunes = 3000

// Extractor fetches a page and pulls out its main textual content.
type Extractor struct {
	client *http.Client
}

func NewExtractor(timeout time.Duration) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract returns the main article text for the URL, capped at a bounded
// prefix. Any failure degrades to the BodyUnavailable sentinel.
func (e *Extractor) Extract(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		logger.Warn("scraper: bad url", "url", pageURL, "error", err)
		return BodyUnavailable
	}

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Warn("scraper: fetch failed", "url", pageURL, "error", err)
		return BodyUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("scraper: bad status", "url", pageURL, "status", resp.StatusCode)
		return BodyUnavailable
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		logger.Warn("scraper: parse failed", "url", pageURL, "error", err)
		return BodyUnavailable
	}

	text := extractReadable(doc, pageURL)
	if text == "" {
		text = extractGenericContent(doc)
	}

	text = cleanContent(text)
	if len(strings.TrimSpace(text)) < 100 {
		return BodyUnavailable
	}

	return truncateRunes(text, maxBodyRunes)
}

// extractReadable runs the readability heuristic over the already-parsed
// document.
func extractReadable(doc *goquery.Document, pageURL string) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return ""
	}
	return article.TextContent
}

// extractGenericContent is the tag-density fallback: collect paragraphs
// from the usual content containers.
func extractGenericContent(doc *goquery.Document) string {
	var paragraphs []string

	selectors := []string{
		"article p",
		".article-body p",
		".article-content p",
		".content p",
		"main p",
		"p",
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 2 {
			break
		}
		paragraphs = paragraphs[:0]
	}

	return strings.Join(paragraphs, "\n\n")
}

// cleanContent removes junk whitespace and boilerplate-looking lines.
func cleanContent(content string) string {
	lines := strings.Split(content, "\n")
	var cleanLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) <= 5 {
			continue
		}
		cleanLines = append(cleanLines, line)
	}

	return strings.Join(cleanLines, "\n")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
