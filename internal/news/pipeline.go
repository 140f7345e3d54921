package news

import (
	"context"
	"fmt"
	"time"

	"github.com/vestnikbot/vestnik/internal/config"
	"github.com/vestnikbot/vestnik/internal/format"
	"github.com/vestnikbot/vestnik/internal/logger"
	"github.com/vestnikbot/vestnik/internal/metrics"
	"github.com/vestnikbot/vestnik/internal/review"
	"github.com/vestnikbot/vestnik/internal/storage"
	"github.com/vestnikbot/vestnik/internal/telegram"
)

// Source pulls candidate articles for one category from the news API.
type Source interface {
	FetchCategory(ctx context.Context, cat config.Category) ([]Article, error)
}

// FeedSource pulls candidates from a category's optional RSS feeds.
type FeedSource interface {
	FetchFeeds(ctx context.Context, urls []string) []Article
}

// Extractor pulls the main text out of an article page. It degrades to a
// sentinel string, never an error.
type Extractor interface {
	Extract(ctx context.Context, url string) string
}

// Enricher translates the title and produces the target-language
// description. Failures degrade to the original title and a sentinel
// description.
type Enricher interface {
	Enrich(ctx context.Context, title, body string) (title2, description string)
}

// Notifier delivers staged candidates to the reviewer.
type Notifier interface {
	SendMessage(ctx context.Context, chatID, text string, keyboard *telegram.InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatID, photoURL, caption string, keyboard *telegram.InlineKeyboardMarkup) error
}

// PipelineDeps wires the collaborating services into the scheduler.
type PipelineDeps struct {
	Config    *config.Config
	Source    Source
	Feeds     FeedSource
	Store     storage.Store
	Extractor Extractor
	Enricher  Enricher
	Notifier  Notifier
}

// Pipeline is the ingestion scheduler: it drives fetch, dedup,
// enrichment, persistence and reviewer notification on a fixed interval.
type Pipeline struct {
	cfg       *config.Config
	source    Source
	feeds     FeedSource
	store     storage.Store
	extractor Extractor
	enricher  Enricher
	notifier  Notifier
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:       deps.Config,
		source:    deps.Source,
		feeds:     deps.Feeds,
		store:     deps.Store,
		extractor: deps.Extractor,
		enricher:  deps.Enricher,
		notifier:  deps.Notifier,
	}
}

// Run executes cycles until the context is cancelled. Cycles never
// overlap: the next one starts a fixed interval after the previous one
// finished.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		start := time.Now()
		p.RunCycle(ctx)
		metrics.Global.RecordCycleTime(time.Since(start))
		metrics.Global.SetLastRun()

		select {
		case <-ctx.Done():
			logger.Info("ingestion loop stopped")
			return
		case <-time.After(p.cfg.CycleInterval):
		}
	}
}

// RunCycle processes every category once, in config order. A failure on
// one category or article is logged and the cycle moves on.
func (p *Pipeline) RunCycle(ctx context.Context) {
	logger.Info("ingestion cycle started", "categories", len(p.cfg.Categories))
	notifiedInCycle := 0

	for _, cat := range p.cfg.Categories {
		if ctx.Err() != nil {
			return
		}
		if p.cfg.NotifyPerCycle > 0 && notifiedInCycle >= p.cfg.NotifyPerCycle {
			logger.Info("per-cycle notify cap reached", "cap", p.cfg.NotifyPerCycle)
			break
		}

		articles := p.fetchCategory(ctx, cat)
		if len(articles) > p.cfg.MaxPerCategory {
			articles = articles[:p.cfg.MaxPerCategory]
		}

		notifiedInCategory := 0
		for _, article := range articles {
			if ctx.Err() != nil {
				return
			}
			if p.cfg.NotifyPerCategory > 0 && notifiedInCategory >= p.cfg.NotifyPerCategory {
				break
			}
			if p.cfg.NotifyPerCycle > 0 && notifiedInCycle >= p.cfg.NotifyPerCycle {
				break
			}

			notified, err := p.processArticle(ctx, cat.Name, article)
			if err != nil {
				logger.Error("article processing failed", "category", cat.Name, "url", article.URL, "error", err)
				continue
			}
			if notified {
				notifiedInCategory++
				notifiedInCycle++
			}
		}
	}

	logger.Info("ingestion cycle finished", "notified", notifiedInCycle)
}

// fetchCategory merges API results with the category's optional RSS
// feeds. Source failures are contained here: they cost the category its
// candidates for this cycle, nothing more.
func (p *Pipeline) fetchCategory(ctx context.Context, cat config.Category) []Article {
	var articles []Article

	if cat.Topic != "" || cat.Query != "" {
		fetched, err := p.source.FetchCategory(ctx, cat)
		if err != nil {
			metrics.Global.IncrementSourceFetchFailures()
			metrics.Global.SetError(err.Error())
			logger.Error("category fetch failed", "category", cat.Name, "error", err)
		} else {
			articles = fetched
		}
	}

	if p.feeds != nil && len(cat.Feeds) > 0 {
		articles = append(articles, p.feeds.FetchFeeds(ctx, cat.Feeds)...)
	}

	metrics.Global.IncrementFetched(len(articles))
	logger.Debug("category fetched", "category", cat.Name, "candidates", len(articles))
	return articles
}

// processArticle runs one candidate through the dedup gate, enrichment,
// persistence and reviewer notification. It reports whether the reviewer
// was notified.
func (p *Pipeline) processArticle(ctx context.Context, category string, article Article) (bool, error) {
	// Dedup gate first: enrichment is the expensive step, never spend it
	// on an article we already have.
	exists, err := p.store.Exists(ctx, article.URL)
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		metrics.Global.IncrementDuplicatesFiltered()
		logger.Debug("duplicate skipped", "url", article.URL)
		return false, nil
	}

	body := p.extractor.Extract(ctx, article.URL)
	title, description := p.enricher.Enrich(ctx, article.Title, body)
	metrics.Global.IncrementEnriched()

	author := article.Author
	if author == "" {
		author = "Не указан"
	}

	rec := &storage.NewsRecord{
		Category:    category,
		Title:       title,
		Author:      author,
		Description: description,
		URL:         article.URL,
		ImageURL:    article.ImageURL,
		PublishedAt: article.PublishedAt,
	}

	inserted, err := p.store.Insert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("persist record: %w", err)
	}
	if !inserted {
		// Lost the race to a concurrent producer; their record stands
		metrics.Global.IncrementDuplicatesFiltered()
		return false, nil
	}

	// Insert does not hand back the generated id; read the record back
	stored, err := p.store.GetByURL(ctx, article.URL)
	if err != nil {
		return false, fmt.Errorf("reload record: %w", err)
	}
	if stored == nil {
		return false, fmt.Errorf("record vanished after insert: %s", article.URL)
	}

	if err := p.notifyReviewer(ctx, stored); err != nil {
		metrics.Global.IncrementDeliveryFailures()
		return false, fmt.Errorf("notify reviewer: %w", err)
	}

	metrics.Global.IncrementReviewerNotified()
	logger.Info("candidate staged for review", "id", stored.ID, "category", category, "title", stored.Title)
	return true, nil
}

func (p *Pipeline) notifyReviewer(ctx context.Context, rec *storage.NewsRecord) error {
	hasImage := format.UsableImage(rec.ImageURL)
	message := format.Render(rec.Title, rec.Author, rec.Description, format.LimitFor(hasImage))
	keyboard := review.ApproveKeyboard(rec.ID)

	if hasImage {
		return p.notifier.SendPhoto(ctx, p.cfg.AdminChatID, rec.ImageURL, message, keyboard)
	}
	return p.notifier.SendMessage(ctx, p.cfg.AdminChatID, message, keyboard)
}
