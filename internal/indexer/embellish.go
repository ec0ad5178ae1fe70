package indexer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/sources"
)

// Embellisher runs classify, extract and normalize for one preview.
type Embellisher struct {
	extractors map[sources.Kind]sources.Extractor
	maxChars   int
	log        zerolog.Logger
}

func NewEmbellisher(extractors map[sources.Kind]sources.Extractor, maxChars int, log zerolog.Logger) *Embellisher {
	return &Embellisher{extractors: extractors, maxChars: maxChars, log: log}
}

// Embellish enriches p in place and returns the raw content it found.
// Extraction errors are logged and returned, but p is always normalized
// with whatever was populated. Embellished is left for the caller to set.
func (e *Embellisher) Embellish(ctx context.Context, p *db.Preview) (string, error) {
	target := sources.Classify(p.URL)
	log := e.log.With().Str("url", p.URL).Str("kind", target.Kind.String()).Logger()
	log.Debug().Msg("embellishing preview")

	var content string
	var extractErr error

	extractor, ok := e.extractors[target.Kind]
	if !ok {
		extractErr = fmt.Errorf("no extractor for %s", target.Kind)
	} else {
		result, err := extractor.Extract(ctx, target)
		if result != nil {
			apply(p, result)
			content = result.Content
		}
		if err != nil {
			extractErr = fmt.Errorf("failed to extract %s: %w", p.URL, err)
		}
	}
	if extractErr != nil {
		log.Warn().Err(extractErr).Msg("extraction failed, continuing with partial data")
	}

	Normalize(p, content, e.maxChars)
	return content, extractErr
}

func apply(p *db.Preview, r *sources.Result) {
	if r.Title != "" {
		p.Title = db.Ptr(r.Title)
	}
	if r.PublishedDate != "" {
		p.PublishedDate = db.Ptr(r.PublishedDate)
	}
	if len(r.Tags) > 0 {
		p.SetTags(r.Tags)
	}
	if r.Summary != "" {
		p.Summary = db.Ptr(r.Summary)
	}
	if p.Source == nil && r.Source != "" {
		p.Source = db.Ptr(r.Source)
	}
}
