package enrich

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vestnikbot/vestnik/internal/cache"
	"github.com/vestnikbot/vestnik/internal/config"
	"github.com/vestnikbot/vestnik/internal/logger"
	"github.com/vestnikbot/vestnik/internal/metrics"
	"github.com/vestnikbot/vestnik/internal/ratelimit"
)

// SummaryUnavailable is the degraded-path description. It is valid input
// for the message formatter, not a pipeline-aborting condition.
const SummaryUnavailable = "Сводка недоступна."

// maxInputRunes bounds what we hand to a strategy in one call.
const maxInputRunes = 4000

// Strategy is one interchangeable translate/summarize implementation.
// Translate moves short text (titles) into the target language; Summarize
// produces a short target-language description of an article body.
type Strategy interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, body string) (string, error)
}

// Service wraps a strategy with the request budget, the result cache and
// sentinel fallbacks. Callers never see an error: failures degrade to the
// original title and the SummaryUnavailable sentinel.
type Service struct {
	strategy Strategy
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
}

func NewService(strategy Strategy, c *cache.Cache, limiter *ratelimit.Limiter) *Service {
	return &Service{
		strategy: strategy,
		cache:    c,
		limiter:  limiter,
	}
}

// NewStrategy builds the strategy selected by config.
func NewStrategy(cfg *config.Config) (Strategy, error) {
	switch cfg.EnrichProvider {
	case "gemini":
		return NewGeminiStrategy(cfg.GeminiAPIKey, cfg.TargetLang)
	case "openai":
		return NewOpenAIStrategy(cfg.OpenAIAPIKey, cfg.TargetLang), nil
	case "translate":
		return NewTranslateStrategy(cfg.TargetLang, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown enrich provider %q", cfg.EnrichProvider)
	}
}

// Enrich returns the translated title and a target-language description
// for the article body.
func (s *Service) Enrich(ctx context.Context, title, body string) (string, string) {
	key := cache.Key(title, body)
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("enrichment cache hit", "title", title)
		return cached.Title, cached.Description
	}

	outTitle := s.translateTitle(ctx, title)
	description := s.describe(ctx, body)

	if description != SummaryUnavailable {
		s.cache.Set(key, cache.Result{Title: outTitle, Description: description})
	}

	return outTitle, description
}

func (s *Service) translateTitle(ctx context.Context, title string) string {
	if title == "" {
		return title
	}
	if !s.limiter.Allow(s.strategy.Name()) {
		return title
	}

	s.limiter.Record(s.strategy.Name())
	translated, err := s.strategy.Translate(ctx, boundInput(title))
	if err != nil || strings.TrimSpace(translated) == "" {
		logger.Warn("title translation failed, keeping original", "provider", s.strategy.Name(), "error", err)
		return title
	}
	return strings.TrimSpace(translated)
}

func (s *Service) describe(ctx context.Context, body string) string {
	if strings.TrimSpace(body) == "" {
		return SummaryUnavailable
	}
	if !s.limiter.Allow(s.strategy.Name()) {
		return SummaryUnavailable
	}

	s.limiter.Record(s.strategy.Name())
	summary, err := s.strategy.Summarize(ctx, boundInput(body))
	if err != nil || strings.TrimSpace(summary) == "" {
		metrics.Global.IncrementEnrichmentFailures()
		logger.Warn("summarization failed", "provider", s.strategy.Name(), "error", err)
		return SummaryUnavailable
	}
	return strings.TrimSpace(summary)
}

func boundInput(text string) string {
	if utf8.RuneCountInString(text) <= maxInputRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxInputRunes])
}

// langName resolves a language code to the name used in prompts.
func langName(code string) string {
	switch code {
	case "ru":
		return "Russian"
	case "uk":
		return "Ukrainian"
	case "da":
		return "Danish"
	case "de":
		return "German"
	case "en":
		return "English"
	default:
		return code
	}
}
