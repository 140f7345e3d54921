package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Category describes one news category to poll. Topic maps to the
// top-headlines endpoint, Query to the full-text search endpoint; the two
// have different relevance and recency semantics upstream, so the
// distinction is kept in config. Feeds lists optional RSS sources merged
// after the API results.
type Category struct {
	Name  string   `yaml:"name"`
	Topic string   `yaml:"topic,omitempty"`
	Query string   `yaml:"query,omitempty"`
	Feeds []string `yaml:"feeds,omitempty"`
}

type Config struct {
	// Telegram settings
	TelegramToken string
	AdminChatID   string
	ChannelChatID string

	// News source settings
	NewsAPIKey     string
	CategoriesPath string
	Categories     []Category
	PageSize       int

	// Storage settings
	DatabaseURL   string // empty = JSON file store
	FileStorePath string

	// Enrichment settings
	EnrichProvider    string // gemini | openai | translate
	GeminiAPIKey      string
	OpenAIAPIKey      string
	TargetLang        string
	MaxEnrichRequests int // daily budget across providers (0 = unlimited)
	CacheTTLHours     int

	// Scheduler settings
	CycleInterval     time.Duration
	MaxPerCategory    int
	NotifyPerCategory int // 0 = unlimited
	NotifyPerCycle    int // 0 = unlimited

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// categoriesFile is the YAML config structure
// categories:
//   - name: science
//     topic: science
type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		CategoriesPath:    "configs/categories.yaml",
		PageSize:          20,
		FileStorePath:     "news.json",
		EnrichProvider:    "translate",
		TargetLang:        "ru",
		CacheTTLHours:     48,
		CycleInterval:     time.Hour,
		MaxPerCategory:    10,
		NotifyPerCategory: 1,
		RequestTimeout:    15 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        2 * time.Second,
	}

	// Load from environment
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.AdminChatID = os.Getenv("ADMIN_CHAT_ID")
	cfg.ChannelChatID = os.Getenv("CHANNEL_CHAT_ID")
	cfg.NewsAPIKey = os.Getenv("NEWSAPI_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	cfg.CategoriesPath = getEnvOrDefault("CATEGORIES_PATH", cfg.CategoriesPath)
	cfg.FileStorePath = getEnvOrDefault("FILE_STORE_PATH", cfg.FileStorePath)
	cfg.EnrichProvider = getEnvOrDefault("ENRICH_PROVIDER", cfg.EnrichProvider)
	cfg.TargetLang = getEnvOrDefault("TARGET_LANG", cfg.TargetLang)

	cfg.PageSize = getEnvIntOrDefault("NEWSAPI_PAGE_SIZE", cfg.PageSize)
	cfg.MaxPerCategory = getEnvIntOrDefault("MAX_PER_CATEGORY", cfg.MaxPerCategory)
	cfg.NotifyPerCategory = getEnvIntOrDefault("NOTIFY_PER_CATEGORY", cfg.NotifyPerCategory)
	cfg.NotifyPerCycle = getEnvIntOrDefault("NOTIFY_PER_CYCLE", cfg.NotifyPerCycle)
	cfg.MaxEnrichRequests = getEnvIntOrDefault("MAX_ENRICH_REQUESTS", cfg.MaxEnrichRequests)
	cfg.CacheTTLHours = getEnvIntOrDefault("CACHE_TTL_HOURS", cfg.CacheTTLHours)

	if v := os.Getenv("CYCLE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CycleInterval = d
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	cats, err := loadCategories(cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}
	cfg.Categories = cats

	return cfg, cfg.Validate()
}

// loadCategories reads the category list from a YAML file. A missing file
// is not an error: the built-in default set is used instead.
func loadCategories(path string) ([]Category, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultCategories(), nil
		}
		return nil, fmt.Errorf("open categories config: %w", err)
	}
	defer f.Close()

	var file categoriesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse categories config %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return defaultCategories(), nil
	}
	return file.Categories, nil
}

func defaultCategories() []Category {
	return []Category{
		{Name: "science", Topic: "science"},
		{Name: "technology", Topic: "technology"},
		{Name: "general", Topic: "general"},
		{Name: "game", Query: "game"},
		{Name: "robots", Query: "robots"},
		{Name: "artificial intelligence", Query: "artificial intelligence"},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.AdminChatID == "" {
		return fmt.Errorf("ADMIN_CHAT_ID is required")
	}
	if c.ChannelChatID == "" {
		return fmt.Errorf("CHANNEL_CHAT_ID is required")
	}
	if c.NewsAPIKey == "" {
		return fmt.Errorf("NEWSAPI_KEY is required")
	}
	switch c.EnrichProvider {
	case "translate":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for ENRICH_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for ENRICH_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("ENRICH_PROVIDER must be 'gemini', 'openai' or 'translate'")
	}
	for _, cat := range c.Categories {
		if cat.Topic == "" && cat.Query == "" && len(cat.Feeds) == 0 {
			return fmt.Errorf("category %q needs a topic, a query or feeds", cat.Name)
		}
	}
	return nil
}
