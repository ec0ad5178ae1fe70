package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/linkstitcher/internal/config"
	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/feed"
	"github.com/user/linkstitcher/internal/fetch"
	"github.com/user/linkstitcher/internal/filter"
	"github.com/user/linkstitcher/internal/indexer"
	"github.com/user/linkstitcher/internal/llm"
	"github.com/user/linkstitcher/internal/logger"
	"github.com/user/linkstitcher/internal/publisher"
	"github.com/user/linkstitcher/internal/sources"
)

// app holds what every command needs once config is loaded.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *db.Store
	client *fetch.Client
	pool   *llm.Pool
	pub    *publisher.RabbitMQ
}

func newApp(cmd *cobra.Command) (*app, error) {
	configFile, _ := cmd.Flags().GetString("config")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load(config.Options{ConfigFile: configFile, DataDir: dataDir, LogLevel: logLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		client: &fetch.Client{
			HTTPClient:        &http.Client{},
			UserAgent:         cfg.HTTP.UserAgent,
			PerRequestTimeout: cfg.HTTP.Timeout,
			MaxConcurrent:     cfg.HTTP.MaxConcurrent,
		},
	}, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.pub != nil {
		a.pub.Close()
	}
	a.store.Close()
}

// completer starts the completion pool on first use.
func (a *app) completer() (*llm.Pool, error) {
	if a.pool == nil {
		pool, err := llm.New(a.cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to set up completions: %w", err)
		}
		a.pool = pool
	}
	return a.pool, nil
}

// publisher returns nil when no broker is configured or it is unreachable.
func (a *app) publisher() indexer.Publisher {
	if a.cfg.RabbitMQ.URL == "" {
		return nil
	}
	if a.pub == nil {
		pub, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        a.cfg.RabbitMQ.URL,
			Exchange:   a.cfg.RabbitMQ.Exchange,
			RoutingKey: a.cfg.RabbitMQ.RoutingKey,
			QueueName:  a.cfg.RabbitMQ.QueueName,
		}, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("publishing disabled")
			return nil
		}
		a.pub = pub
	}
	return a.pub
}

func (a *app) embellisher() (*indexer.Embellisher, error) {
	readmes := sources.NewGitHubReadmes(&http.Client{Timeout: a.cfg.HTTP.Timeout}, a.cfg.GitHub.Token)
	if a.cfg.GitHub.BaseURL != "" {
		if err := readmes.SetBaseURL(a.cfg.GitHub.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid github.base_url: %w", err)
		}
	}

	extractors := sources.NewExtractors(sources.Deps{
		Client:         a.client,
		Readmes:        readmes,
		Readability:    sources.GoReadability{},
		PDF:            sources.PlainTextPDF{},
		ArxivEndpoint:  a.cfg.Arxiv.BaseURL,
		OEmbedEndpoint: a.cfg.OEmbed.BaseURL,
		MaxChars:       a.cfg.Summary.MaxChars,
		Log:            a.log,
	})
	return indexer.NewEmbellisher(extractors, a.cfg.Summary.MaxChars, a.log), nil
}

func (a *app) indexer(bookmarker indexer.Bookmarker) (*indexer.Indexer, error) {
	embellisher, err := a.embellisher()
	if err != nil {
		return nil, err
	}
	policy, err := filter.ParsePolicy(a.cfg.Filter.OnError)
	if err != nil {
		return nil, err
	}

	return indexer.New(
		a.store,
		embellisher,
		bookmarker,
		feed.NewReader(a.client, a.log),
		a.publisher(),
		a.log,
		indexer.Options{Workers: a.cfg.Concurrency.Workers, FilterPolicy: policy},
	), nil
}

// writeFeed renders the recent previews matching q into the profile's file.
func (a *app) writeFeed(ctx context.Context, profile config.FeedConfig, q db.RecentQuery) error {
	if profile.RecencyDays > 0 {
		q.Since = db.Today().AddDate(0, 0, -profile.RecencyDays)
	}
	previews, err := a.store.Recent(ctx, q)
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.FeedsDir, profile.File)
	ch := feed.Channel{Title: profile.Title, Description: profile.Description, Link: a.cfg.FeedLink}
	if err := feed.Write(path, ch, previews); err != nil {
		return err
	}

	a.log.Info().Str("path", path).Int("items", len(previews)).Msg("feed written")
	return nil
}

// readURLs returns the non-empty lines of path. A missing file yields no URLs.
func readURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

// clearURLs truncates path once its URLs were processed.
func clearURLs(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("failed to clear %s: %w", path, err)
	}
	return nil
}
