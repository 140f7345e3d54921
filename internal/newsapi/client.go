package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vestnikbot/vestnik/internal/config"
	"github.com/vestnikbot/vestnik/internal/news"
)

const defaultBaseURL = "https://newsapi.org"

// Client fetches candidate articles from NewsAPI. First-class topics go to
// the top-headlines endpoint, free-text concepts to full-text search; the
// two query shapes have different relevance and recency semantics upstream.
type Client struct {
	apiKey   string
	pageSize int
	client   *http.Client

	// BaseURL is overridable for tests.
	BaseURL string
}

func NewClient(apiKey string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		pageSize: pageSize,
		client:   &http.Client{Timeout: timeout},
		BaseURL:  defaultBaseURL,
	}
}

type apiArticle struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

// FetchCategory returns the candidates for one category in source order.
// Entries without a URL or title are dropped.
func (c *Client) FetchCategory(ctx context.Context, cat config.Category) ([]news.Article, error) {
	if cat.Topic == "" && cat.Query == "" {
		return nil, nil
	}

	endpoint, params := c.buildQuery(cat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", cat.Name, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch category %q: %w", cat.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch category %q: status %d", cat.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %q: %w", cat.Name, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response for %q: %w", cat.Name, err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("fetch category %q: api status %q (%s)", cat.Name, parsed.Status, parsed.Message)
	}

	articles := make([]news.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.URL == "" || a.Title == "" {
			continue
		}
		articles = append(articles, news.Article{
			URL:         a.URL,
			Title:       a.Title,
			Author:      a.Author,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}

func (c *Client) buildQuery(cat config.Category) (string, url.Values) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	if c.pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(c.pageSize))
	}

	if cat.Topic != "" {
		params.Set("category", cat.Topic)
		return c.BaseURL + "/v2/top-headlines", params
	}

	params.Set("q", cat.Query)
	params.Set("sortBy", "publishedAt")
	return c.BaseURL + "/v2/everything", params
}
