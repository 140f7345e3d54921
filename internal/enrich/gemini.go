package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// GeminiStrategy does cross-lingual summarization in a single model call.
type GeminiStrategy struct {
	client     *genai.Client
	targetLang string
}

func NewGeminiStrategy(apiKey, targetLang string) (*GeminiStrategy, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiStrategy{client: client, targetLang: targetLang}, nil
}

func (g *GeminiStrategy) Name() string { return "gemini" }

func (g *GeminiStrategy) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *GeminiStrategy) Translate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following news headline to %s.
Keep it short and natural, do not translate brand or organization names.
Reply with the translation only, no comments.

%s`, langName(g.targetLang), text)

	return g.generate(ctx, prompt)
}

func (g *GeminiStrategy) Summarize(ctx context.Context, body string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following news article in %s in 2-3 sentences.
Keep the journalistic tone, avoid lead-ins like "The article says that".
Reply with the summary only, no comments.

%s`, langName(g.targetLang), body)

	return g.generate(ctx, prompt)
}

func (g *GeminiStrategy) generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(geminiModel)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return strings.TrimSpace(text), nil
}
