package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIStrategy translates and summarizes through chat completions.
type OpenAIStrategy struct {
	client     *openai.Client
	targetLang string
}

func NewOpenAIStrategy(apiKey, targetLang string) *OpenAIStrategy {
	return &OpenAIStrategy{
		client:     openai.NewClient(apiKey),
		targetLang: targetLang,
	}
}

func (o *OpenAIStrategy) Name() string { return "openai" }

func (o *OpenAIStrategy) Translate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following news headline to %s.
Keep the meaning and tone of the original.
Translate only the text itself, without additional comments.

%s`, langName(o.targetLang), text)

	return o.complete(ctx, prompt)
}

func (o *OpenAIStrategy) Summarize(ctx context.Context, body string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following news article in %s in 2-3 sentences.
Keep the meaning, tone and journalistic style of the original.
Reply with the summary only, without additional comments.

%s`, langName(o.targetLang), body)

	return o.complete(ctx, prompt)
}

func (o *OpenAIStrategy) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: 2000,
	})

	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
