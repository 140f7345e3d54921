package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTranslateBaseURL = "https://translate.googleapis.com/translate_a/single"

// TranslateStrategy needs no API key: it builds an extractive
// lead-sentence summary and runs it through the public Google Translate
// endpoint. It is the default strategy and the most deterministic one.
type TranslateStrategy struct {
	client     *http.Client
	targetLang string

	// BaseURL is overridable for tests.
	BaseURL string
	// SummarySentences is how many leading sentences the extractive
	// summary keeps.
	SummarySentences int
}

func NewTranslateStrategy(targetLang string, timeout time.Duration) *TranslateStrategy {
	return &TranslateStrategy{
		client:           &http.Client{Timeout: timeout},
		targetLang:       targetLang,
		BaseURL:          defaultTranslateBaseURL,
		SummarySentences: 2,
	}
}

func (t *TranslateStrategy) Name() string { return "translate" }

func (t *TranslateStrategy) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return text, nil
	}

	// Use public Google Translate endpoint (free)
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", t.targetLang)
	params.Set("dt", "t") // return translations
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	translation, err := parseTranslateResponse(body)
	if err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	return translation, nil
}

func (t *TranslateStrategy) Summarize(ctx context.Context, body string) (string, error) {
	summary := LeadSentences(body, t.SummarySentences)
	if summary == "" {
		return "", errors.New("nothing to summarize")
	}
	return t.Translate(ctx, summary)
}

// parseTranslateResponse unpacks the endpoint's array-of-arrays payload.
func parseTranslateResponse(body []byte) (string, error) {
	var response []interface{}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	if len(response) == 0 {
		return "", errors.New("empty response from translate endpoint")
	}

	// First element contains translations
	translations, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder

	// Collect all translation parts
	for _, translation := range translations {
		if translationArray, ok := translation.([]interface{}); ok && len(translationArray) > 0 {
			if translatedText, ok := translationArray[0].(string); ok {
				result.WriteString(translatedText)
			}
		}
	}

	return result.String(), nil
}

// LeadSentences keeps the first n sentences of the text: a cheap
// extractive summary for when no model is available.
func LeadSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || n <= 0 {
		return ""
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Sentence ends at punctuation followed by a space or end of text
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
		start = i + 1
		if len(sentences) >= n {
			break
		}
	}

	if len(sentences) == 0 {
		return text
	}
	return strings.Join(sentences, " ")
}
