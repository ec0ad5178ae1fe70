package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/filter"
)

const (
	DefaultWorkers = 4

	// feedSyncKeyPrefix + source name stores the last successful ingestion time.
	feedSyncKeyPrefix = "feed_last_sync:"
)

// Stats counts what happened to the URLs of one batch.
type Stats struct {
	Input        int
	Skipped      int
	Enriched     int
	EnrichFailed int
	Rejected     int
	FilterErrors int
	Stored       int
	StoreErrors  int
	TagErrors    int
	Published    int
}

type Options struct {
	Workers      int
	FilterPolicy filter.ErrorPolicy
}

// FeedSource is one remote feed to ingest. Every item is stamped with
// Source. A nil Filter keeps every new item.
type FeedSource struct {
	URL    string
	Source string
	Filter Filter
}

// Indexer runs the saved, bookmark and feed ingestion flows.
type Indexer struct {
	store      Store
	enricher   Enricher
	bookmarker Bookmarker
	reader     FeedReader
	publisher  Publisher
	log        zerolog.Logger
	opts       Options
}

// New builds an Indexer. bookmarker, reader and publisher may be nil when
// the caller never runs the flows that need them.
func New(
	store Store,
	enricher Enricher,
	bookmarker Bookmarker,
	reader FeedReader,
	publisher Publisher,
	log zerolog.Logger,
	opts Options,
) *Indexer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.FilterPolicy == "" {
		opts.FilterPolicy = filter.ExcludeOnError
	}
	return &Indexer{
		store:      store,
		enricher:   enricher,
		bookmarker: bookmarker,
		reader:     reader,
		publisher:  publisher,
		log:        log,
		opts:       opts,
	}
}

// Embellish enriches fresh previews for urls without touching the store.
func (ix *Indexer) Embellish(ctx context.Context, urls []string) ([]*db.Preview, *Stats) {
	urls = Unique(urls)
	stats := &Stats{Input: len(urls)}

	previews := make([]*db.Preview, len(urls))
	for i, u := range urls {
		previews[i] = db.NewPreview(u)
	}
	ix.enrichAll(ctx, previews, stats)
	return previews, stats
}

// AddSaved stores every unknown URL as a saved, embellished preview.
// Known URLs are left alone.
func (ix *Indexer) AddSaved(ctx context.Context, urls []string) (*Stats, error) {
	urls = Unique(urls)
	stats := &Stats{Input: len(urls)}

	var previews []*db.Preview
	for _, u := range urls {
		exists, err := ix.store.Exists(ctx, u)
		if err != nil {
			return stats, err
		}
		if exists {
			ix.log.Debug().Str("url", u).Msg("already indexed, skipping")
			stats.Skipped++
			continue
		}
		p := db.NewPreview(u)
		p.Saved = true
		previews = append(previews, p)
	}

	ix.enrichAll(ctx, previews, stats)

	for _, p := range previews {
		if err := ix.store.Insert(ctx, p); err != nil {
			ix.log.Error().Err(err).Str("url", p.URL).Msg("failed to store saved preview")
			stats.StoreErrors++
			continue
		}
		stats.Stored++
		ix.publish(ctx, p, true, stats)
	}

	ix.log.Info().
		Int("input", stats.Input).
		Int("skipped", stats.Skipped).
		Int("stored", stats.Stored).
		Msg("saved urls processed")
	return stats, nil
}

// AddBookmarks loads or creates a preview per URL, embellishes it when
// needed, tags it and upserts it. Tag and store failures do not stop the
// batch; they are joined into the returned error.
func (ix *Indexer) AddBookmarks(ctx context.Context, urls []string) (*Stats, error) {
	if ix.bookmarker == nil {
		return nil, errors.New("bookmarking is not configured")
	}

	urls = Unique(urls)
	stats := &Stats{Input: len(urls)}

	previews := make([]*db.Preview, 0, len(urls))
	for _, u := range urls {
		p, err := ix.store.Get(ctx, u)
		if errors.Is(err, db.ErrNotFound) {
			p = db.NewPreview(u)
		} else if err != nil {
			return stats, err
		}
		previews = append(previews, p)
	}

	var pending []*db.Preview
	for _, p := range previews {
		if !p.Embellished {
			pending = append(pending, p)
		}
	}
	ix.enrichAll(ctx, pending, stats)

	tagErrs := make([]error, len(previews))
	g := new(errgroup.Group)
	g.SetLimit(ix.opts.Workers)
	for i, p := range previews {
		i, p := i, p
		g.Go(func() error {
			tagErrs[i] = ix.bookmarker.Bookmark(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, p := range previews {
		if tagErrs[i] != nil {
			ix.log.Warn().Err(tagErrs[i]).Str("url", p.URL).Msg("tagging failed")
			stats.TagErrors++
			errs = append(errs, tagErrs[i])
		}

		isNew, err := ix.store.Upsert(ctx, p)
		if err != nil {
			ix.log.Error().Err(err).Str("url", p.URL).Msg("failed to store bookmark")
			stats.StoreErrors++
			errs = append(errs, err)
			continue
		}
		stats.Stored++
		ix.publish(ctx, p, isNew, stats)
	}

	ix.log.Info().
		Int("input", stats.Input).
		Int("stored", stats.Stored).
		Int("tag_errors", stats.TagErrors).
		Msg("bookmarks processed")
	return stats, errors.Join(errs...)
}

// IngestFeed reads src, drops URLs already known, embellishes and filters
// the rest and inserts what survives.
func (ix *Indexer) IngestFeed(ctx context.Context, src FeedSource) (*Stats, error) {
	if ix.reader == nil {
		return nil, errors.New("feed reading is not configured")
	}
	log := ix.log.With().Str("feed", src.URL).Logger()

	items, err := ix.reader.Read(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", src.URL, err)
	}
	log.Info().Int("items", len(items)).Msg("feed read")

	stats := &Stats{}
	seen := make(map[string]bool, len(items))
	var previews []*db.Preview
	for _, p := range items {
		if p.URL == "" || seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		stats.Input++

		exists, err := ix.store.Exists(ctx, p.URL)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.Skipped++
			continue
		}
		if src.Source != "" {
			p.Source = db.Ptr(src.Source)
		}
		previews = append(previews, p)
	}

	ix.enrichAll(ctx, previews, stats)

	kept := previews
	if src.Filter != nil {
		verdicts := src.Filter.CheckAll(ctx, previews, ix.opts.Workers)
		var failed []filter.Verdict
		kept, failed, err = filter.Keep(verdicts, ix.opts.FilterPolicy)
		for _, v := range failed {
			log.Warn().Err(v.Err).Str("url", v.Preview.URL).Msg("filter check failed")
		}
		stats.FilterErrors = len(failed)
		if err != nil {
			return stats, fmt.Errorf("failed to filter %s: %w", src.URL, err)
		}
		for _, v := range verdicts {
			if v.Err == nil && !v.Passed {
				stats.Rejected++
			}
		}
	}

	for _, p := range kept {
		if err := ix.store.Insert(ctx, p); err != nil {
			log.Error().Err(err).Str("url", p.URL).Msg("failed to store feed item")
			stats.StoreErrors++
			continue
		}
		stats.Stored++
		ix.publish(ctx, p, true, stats)
	}

	if src.Source != "" {
		stamp := time.Now().UTC().Format(time.RFC3339)
		if err := ix.store.SetMetadata(ctx, feedSyncKeyPrefix+src.Source, stamp); err != nil {
			log.Warn().Err(err).Msg("failed to record feed sync time")
		}
	}

	log.Info().
		Int("input", stats.Input).
		Int("skipped", stats.Skipped).
		Int("rejected", stats.Rejected).
		Int("stored", stats.Stored).
		Msg("feed ingested")
	return stats, nil
}

// enrichAll embellishes previews with at most Workers in flight. A preview
// is marked embellished only when extraction succeeded.
func (ix *Indexer) enrichAll(ctx context.Context, previews []*db.Preview, stats *Stats) {
	var enriched, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(ix.opts.Workers)
	for _, p := range previews {
		p := p
		g.Go(func() error {
			if _, err := ix.enricher.Embellish(ctx, p); err != nil {
				failed.Add(1)
				return nil
			}
			p.Embellished = true
			enriched.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	stats.Enriched += int(enriched.Load())
	stats.EnrichFailed += int(failed.Load())
}

func (ix *Indexer) publish(ctx context.Context, p *db.Preview, isNew bool, stats *Stats) {
	if ix.publisher == nil {
		return
	}
	if err := ix.publisher.Publish(ctx, p, isNew); err != nil {
		ix.log.Warn().Err(err).Str("url", p.URL).Msg("failed to publish preview event")
		return
	}
	stats.Published++
}

// Unique drops empty and repeated URLs, keeping first occurrences in order.
func Unique(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
