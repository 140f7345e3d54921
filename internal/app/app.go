// Package app wires configuration, storage, sources, enrichment and the
// Telegram transport into the running bot.
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vestnikbot/vestnik/internal/cache"
	"github.com/vestnikbot/vestnik/internal/config"
	"github.com/vestnikbot/vestnik/internal/enrich"
	"github.com/vestnikbot/vestnik/internal/logger"
	"github.com/vestnikbot/vestnik/internal/news"
	"github.com/vestnikbot/vestnik/internal/newsapi"
	"github.com/vestnikbot/vestnik/internal/ratelimit"
	"github.com/vestnikbot/vestnik/internal/retry"
	"github.com/vestnikbot/vestnik/internal/review"
	"github.com/vestnikbot/vestnik/internal/rss"
	"github.com/vestnikbot/vestnik/internal/scraper"
	"github.com/vestnikbot/vestnik/internal/storage"
	"github.com/vestnikbot/vestnik/internal/telegram"
)

// Run builds the application and blocks serving reviewer actions until
// the context is cancelled. Startup failures (missing credentials, store
// init) are returned to the caller before any loop starts.
func Run(ctx context.Context) error {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	strategy, err := enrich.NewStrategy(cfg)
	if err != nil {
		return fmt.Errorf("init enrichment: %w", err)
	}
	if closer, ok := strategy.(interface{ Close() }); ok {
		defer closer.Close()
	}

	limiter := ratelimit.New(nil, cfg.MaxEnrichRequests)
	resultCache := cache.New(time.Duration(cfg.CacheTTLHours) * time.Hour)
	defer resultCache.Stop()
	enricher := enrich.NewService(strategy, resultCache, limiter)

	bot := telegram.NewBot(cfg.TelegramToken, retry.Config{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	})

	pipeline := news.NewPipeline(news.PipelineDeps{
		Config:    cfg,
		Source:    newsapi.NewClient(cfg.NewsAPIKey, cfg.PageSize, cfg.RequestTimeout),
		Feeds:     rss.NewFetcher(cfg.RequestTimeout),
		Store:     store,
		Extractor: scraper.NewExtractor(cfg.RequestTimeout),
		Enricher:  enricher,
		Notifier:  bot,
	})

	gate := review.NewGate(store, bot, cfg.ChannelChatID)

	logger.Info("bot started",
		"provider", cfg.EnrichProvider,
		"categories", len(cfg.Categories),
		"interval", cfg.CycleInterval)

	go pipeline.Run(ctx)

	return serveUpdates(ctx, bot, gate, cfg.AdminChatID)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		return storage.NewPostgresStore(cfg.DatabaseURL)
	}
	logger.Warn("DATABASE_URL not set, using file store", "path", cfg.FileStorePath)
	return storage.NewFileStore(cfg.FileStorePath)
}

// serveUpdates long-polls Telegram and routes reviewer button presses to
// the gate. Only the designated reviewer is honored.
func serveUpdates(ctx context.Context, bot *telegram.Bot, gate *review.Gate, adminChatID string) error {
	var offset int64

	for {
		if ctx.Err() != nil {
			logger.Info("update loop stopped")
			return nil
		}

		updates, err := bot.GetUpdates(ctx, offset, 30)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to get updates", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.CallbackQuery == nil {
				continue
			}
			if strconv.FormatInt(update.CallbackQuery.From.ID, 10) != adminChatID {
				logger.Warn("callback from non-reviewer ignored", "from", update.CallbackQuery.From.ID)
				continue
			}
			gate.HandleCallback(ctx, update.CallbackQuery)
		}
	}
}
