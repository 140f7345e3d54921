package rss

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vestnikbot/vestnik/internal/logger"
	"github.com/vestnikbot/vestnik/internal/news"
)

// Fetcher pulls candidate articles from RSS feeds configured per category.
type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		parser:  gofeed.NewParser(),
		timeout: timeout,
	}
}

// FetchFeeds downloads and parses all feeds, returns candidates in feed
// order. A broken feed is logged and skipped, it never aborts the batch.
func (f *Fetcher) FetchFeeds(ctx context.Context, urls []string) []news.Article {
	var articles []news.Article
	successCount := 0

	for _, feedURL := range urls {
		fctx, cancel := context.WithTimeout(ctx, f.timeout)
		feed, err := f.parser.ParseURLWithContext(feedURL, fctx)
		cancel()
		if err != nil {
			logger.Warn("rss feed failed", "feed", feedURL, "error", err)
			continue
		}

		for _, item := range feed.Items {
			if item.Link == "" || item.Title == "" {
				continue
			}
			articles = append(articles, news.Article{
				URL:         item.Link,
				Title:       item.Title,
				Author:      itemAuthor(item),
				ImageURL:    itemImage(item),
				PublishedAt: item.Published,
			})
		}
		successCount++
	}

	if len(urls) > 0 {
		logger.Debug("rss feeds processed", "ok", successCount, "total", len(urls))
	}
	return articles
}

func itemAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}
