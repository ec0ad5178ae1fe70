package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/user/linkstitcher/internal/db"
)

type Config struct {
	DataDir     string            `mapstructure:"data_dir"`
	LogLevel    string            `mapstructure:"log_level"`
	LogPretty   bool              `mapstructure:"log_pretty"`
	Database    DatabaseConfig    `mapstructure:"database"`
	LLM         LLMConfig         `mapstructure:"llm"`
	GitHub      GitHubConfig      `mapstructure:"github"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Arxiv       EndpointConfig    `mapstructure:"arxiv"`
	OEmbed      EndpointConfig    `mapstructure:"oembed"`
	Summary     SummaryConfig     `mapstructure:"summary"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency"`
	Files       FilesConfig       `mapstructure:"files"`
	FeedsDir    string            `mapstructure:"feeds_dir"`
	FeedLink    string            `mapstructure:"feed_link"`
	Filter      FilterConfig      `mapstructure:"filter"`
	RabbitMQ    RabbitMQConfig    `mapstructure:"rabbitmq"`
	Feeds       []FeedConfig      `mapstructure:"feeds"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 or postgres
	DSN    string `mapstructure:"dsn"`
}

type LLMConfig struct {
	Provider  string        `mapstructure:"provider"` // anthropic, openai, openrouter, command
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Command   []string      `mapstructure:"command"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Workers   int           `mapstructure:"workers"`
}

type GitHubConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type SummaryConfig struct {
	MaxChars int `mapstructure:"max_chars"`
}

type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers"`
}

type FilesConfig struct {
	Bookmarked string `mapstructure:"bookmarked"`
	Saved      string `mapstructure:"saved"`
}

type FilterConfig struct {
	OnError string `mapstructure:"on_error"` // exclude, include, fail
}

type RabbitMQConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
	QueueName  string `mapstructure:"queue_name"`
}

// FeedConfig describes one remote feed that is ingested, filtered and
// re-published as a local RSS file.
type FeedConfig struct {
	Name        string   `mapstructure:"name"`
	URL         string   `mapstructure:"url"`
	Source      string   `mapstructure:"source"`
	Title       string   `mapstructure:"title"`
	Description string   `mapstructure:"description"`
	File        string   `mapstructure:"file"`
	RecencyDays int      `mapstructure:"recency_days"`
	Keywords    []string `mapstructure:"keywords"`
	Topics      []string `mapstructure:"topics"`
}

// HackerNewsFeed is the default feed profile.
var HackerNewsFeed = FeedConfig{
	Name:        "hackernews",
	URL:         "https://hnrss.org/best",
	Source:      "Hackernews: Customized",
	Title:       "linkstitcher/hackernews",
	Description: "The linkstitcher feed for Hacker News",
	File:        "hackernews.feed.xml",
	RecencyDays: 7,
	Keywords: []string{
		"programming languages", "type theory", "type system", "haskell", "AI",
		"developer tools", "video game development", "functional programming",
		"dev tools", "rust", "purescript", "compilers", "developer experience",
		"category theory", "liquid haskell", "monad", "metaprogramming", "mac mini",
		"logic programming", "effect systems for purely functional programming langauges",
		"typescript", "ocaml", "rust", "purescript", "compiler", "mcp",
		"prediction market", "homotopy",
	},
	Topics: []string{
		"haskell", "functional", "google", "software", "korea", "japan", "singapore",
		"palantir", "math", "meta", "gwern", "type", "lang", "syntax", "semantics", "github",
	},
}

// SavedFeed is the profile of the feed written from saved URLs.
var SavedFeed = FeedConfig{
	Name:        "saveds",
	Title:       "linkstitcher/saveds",
	Description: "The linkstitcher feed for saved URLs.",
	File:        "saveds.feed.xml",
	RecencyDays: 7,
}

// Options are command-line overrides applied on top of every other source.
type Options struct {
	ConfigFile string
	DataDir    string
	LogLevel   string
}

// Load reads configuration from defaults, an optional YAML file, .env and
// LINKSTITCHER_* environment variables.
func Load(opts Options) (*Config, error) {
	defaultDataDir := opts.DataDir
	if defaultDataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		defaultDataDir = filepath.Join(homeDir, ".linkstitcher")
	}

	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("llm.provider", "command")
	v.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.command", []string{"gemini", "-p"})
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.workers", 2)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "linkstitcher/1.0")
	v.SetDefault("http.max_concurrent", 8)
	v.SetDefault("summary.max_chars", 600)
	v.SetDefault("concurrency.workers", 4)
	v.SetDefault("feed_link", "https://github.com/rybla/linkstitcher")
	v.SetDefault("filter.on_error", "exclude")
	v.SetDefault("rabbitmq.exchange", "linkstitcher")
	v.SetDefault("rabbitmq.routing_key", "previews")
	v.SetDefault("rabbitmq.queue_name", "linkstitcher.previews")
	v.SetDefault("feeds", []map[string]interface{}{feedDefaults(HackerNewsFeed)})

	// Environment variable overrides
	v.SetEnvPrefix("LINKSTITCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database.dsn", "LINKSTITCHER_DATABASE_DSN", "DATABASE_URL")
	v.BindEnv("github.token", "LINKSTITCHER_GITHUB_TOKEN", "GITHUB_PERSONAL_ACCESS_TOKEN")
	v.BindEnv("files.bookmarked", "LINKSTITCHER_FILES_BOOKMARKED", "BOOKMARKED_URLS_FILEPATH")
	v.BindEnv("files.saved", "LINKSTITCHER_FILES_SAVED", "SAVED_URLS_FILEPATH")
	// keys without a default are invisible to AutomaticEnv during Unmarshal
	for _, key := range []string{
		"llm.api_key", "llm.base_url", "github.base_url", "arxiv.base_url", "oembed.base_url",
		"feeds_dir", "rabbitmq.url",
	} {
		v.BindEnv(key)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultDataDir)
		// Read config file if exists (ignore error if not found)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if opts.DataDir != "" {
		v.Set("data_dir", opts.DataDir)
	}
	if opts.LogLevel != "" {
		v.Set("log_level", opts.LogLevel)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.FeedsDir == "" {
		cfg.FeedsDir = filepath.Join(cfg.DataDir, "feeds")
	}
	if cfg.Files.Bookmarked == "" {
		cfg.Files.Bookmarked = filepath.Join(cfg.DataDir, "bookmarked.txt")
	}
	if cfg.Files.Saved == "" {
		cfg.Files.Saved = filepath.Join(cfg.DataDir, "saved.txt")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func feedDefaults(f FeedConfig) map[string]interface{} {
	return map[string]interface{}{
		"name":         f.Name,
		"url":          f.URL,
		"source":       f.Source,
		"title":        f.Title,
		"description":  f.Description,
		"file":         f.File,
		"recency_days": f.RecencyDays,
		"keywords":     f.Keywords,
		"topics":       f.Topics,
	}
}

// Validate checks settings that do not depend on which command runs.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Filter.OnError {
	case "exclude", "include", "fail":
	default:
		return fmt.Errorf("unsupported filter.on_error policy: %s", c.Filter.OnError)
	}

	for _, f := range c.Feeds {
		if f.Name == "" || f.URL == "" {
			return errors.New("every feed needs a name and url")
		}
	}
	return nil
}

// DatabaseDSN returns the configured DSN, defaulting to a sqlite file in
// the data directory.
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return db.SQLiteDSN(c.DataDir)
}

// Feed returns the feed profile with the given name.
func (c *Config) Feed(name string) (FeedConfig, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return FeedConfig{}, false
}
