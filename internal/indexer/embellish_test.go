package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/fetch"
	"github.com/user/linkstitcher/internal/sources"
)

type extractorFunc func(ctx context.Context, target sources.Target) (*sources.Result, error)

func (f extractorFunc) Extract(ctx context.Context, target sources.Target) (*sources.Result, error) {
	return f(ctx, target)
}

func staticExtractor(r *sources.Result, err error) sources.Extractor {
	return extractorFunc(func(context.Context, sources.Target) (*sources.Result, error) {
		return r, err
	})
}

func TestEmbellish_Paper(t *testing.T) {
	var gotID string
	e := NewEmbellisher(map[sources.Kind]sources.Extractor{
		sources.KindPaper: extractorFunc(func(_ context.Context, target sources.Target) (*sources.Result, error) {
			gotID = target.PaperID
			return &sources.Result{
				Title:         "Attention",
				PublishedDate: "2017-06-12T17:57:34Z",
				Tags:          []string{"Computation and Language"},
				Summary:       "abstract",
				Source:        "ArXiv",
				Content:       "abstract",
			}, nil
		}),
	}, 600, zerolog.Nop())

	p := db.NewPreview("https://arxiv.org/abs/1706.03762")
	content, err := e.Embellish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "1706.03762", gotID)
	assert.Equal(t, "abstract", content)
	assert.Equal(t, "Attention", db.Str(p.Title))
	assert.Equal(t, "Computation and Language", db.Str(p.Tags))
	assert.Equal(t, "ArXiv", db.Str(p.Source))
	assert.Equal(t, "Source: ArXiv\n\nabstract", db.Str(p.Summary))
	assert.False(t, p.Embellished)
}

func TestEmbellish_KeepsExistingSource(t *testing.T) {
	e := NewEmbellisher(map[sources.Kind]sources.Extractor{
		sources.KindPaper: staticExtractor(&sources.Result{Summary: "abstract", Source: "ArXiv"}, nil),
	}, 600, zerolog.Nop())

	p := db.NewPreview("https://arxiv.org/abs/1706.03762")
	p.Source = db.Ptr("Hackernews: Customized")
	_, err := e.Embellish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "Hackernews: Customized", db.Str(p.Source))
	assert.Equal(t, "Source: Hackernews: Customized\n\nabstract", db.Str(p.Summary))
}

func TestEmbellish_ContentFallback(t *testing.T) {
	e := NewEmbellisher(map[sources.Kind]sources.Extractor{
		sources.KindDocument: staticExtractor(&sources.Result{Title: "Page", Content: "0123456789"}, nil),
	}, 4, zerolog.Nop())

	p := db.NewPreview("https://example.com/post")
	_, err := e.Embellish(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "0123", db.Str(p.Summary))
}

func TestEmbellish_FailureStillNormalizes(t *testing.T) {
	e := NewEmbellisher(map[sources.Kind]sources.Extractor{
		sources.KindDocument: staticExtractor(nil, errors.New("boom")),
	}, 600, zerolog.Nop())

	p := db.NewPreview("https://example.com/post")
	p.Title = db.Ptr("From the feed")
	p.Source = db.Ptr("Hackernews: Customized")

	_, err := e.Embellish(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, "Source: Hackernews: Customized\n\nTitle: From the feed", db.Str(p.Summary))
}

func TestEmbellish_NoExtractor(t *testing.T) {
	e := NewEmbellisher(map[sources.Kind]sources.Extractor{}, 600, zerolog.Nop())

	p := db.NewPreview("https://github.com/rybla/linkstitcher")
	_, err := e.Embellish(context.Background(), p)
	assert.Error(t, err)
	assert.Nil(t, p.Summary)
}

type htmlGetter struct{}

func (htmlGetter) Get(context.Context, string) (*fetch.Response, error) {
	return &fetch.Response{
		Body:           []byte("<html><body></body></html>"),
		ContentType:    "text/html; charset=utf-8",
		HasContentType: true,
	}, nil
}

type brokenReadability struct{}

func (brokenReadability) Parse([]byte, string) (*sources.Article, error) {
	return nil, errors.New("no readable content")
}

func TestEmbellish_ReadabilityFailureFallsBackToURL(t *testing.T) {
	e := NewEmbellisher(map[sources.Kind]sources.Extractor{
		sources.KindDocument: &sources.DocumentExtractor{
			Client:      htmlGetter{},
			Readability: brokenReadability{},
			Log:         zerolog.Nop(),
		},
	}, 600, zerolog.Nop())

	p := db.NewPreview("https://example.com/post")
	p.Source = db.Ptr("Hackernews: Customized")
	_, err := e.Embellish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/post", db.Str(p.Title))
	assert.Equal(t, "Source: Hackernews: Customized\n\nTitle: https://example.com/post", db.Str(p.Summary))
}
