package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkstitcher/internal/db"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestTagger_Bookmark(t *testing.T) {
	var prompt string
	tagger := NewTagger(completerFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return " go, rss, feeds\n", nil
	}))

	p := db.NewPreview("https://example.com")
	p.Title = db.Ptr("Feeds in Go")
	p.Summary = db.Ptr("A post about feeds")

	require.NoError(t, tagger.Bookmark(context.Background(), p))
	assert.True(t, p.Bookmarked)
	assert.Equal(t, "go, rss, feeds", db.Str(p.Tags))
	assert.True(t, strings.Contains(prompt, "Title: Feeds in Go"))
	assert.True(t, strings.Contains(prompt, "A post about feeds..."))
}

func TestTagger_SkipsWhenTagged(t *testing.T) {
	called := false
	tagger := NewTagger(completerFunc(func(context.Context, string) (string, error) {
		called = true
		return "x", nil
	}))

	tests := []struct {
		name    string
		preview *db.Preview
	}{
		{"already tagged", &db.Preview{Title: db.Ptr("t"), Summary: db.Ptr("s"), Tags: db.Ptr("a")}},
		{"no title", &db.Preview{Summary: db.Ptr("s")}},
		{"no summary", &db.Preview{Title: db.Ptr("t")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tagger.Bookmark(context.Background(), tt.preview))
			assert.True(t, tt.preview.Bookmarked)
		})
	}
	assert.False(t, called)
}

func TestTagger_FailureStillBookmarks(t *testing.T) {
	tagger := NewTagger(completerFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota")
	}))

	p := &db.Preview{URL: "https://example.com", Title: db.Ptr("t"), Summary: db.Ptr("s")}
	assert.Error(t, tagger.Bookmark(context.Background(), p))
	assert.True(t, p.Bookmarked)
	assert.Nil(t, p.Tags)
}

func TestTagger_EmptyResponse(t *testing.T) {
	tagger := NewTagger(completerFunc(func(context.Context, string) (string, error) {
		return "  \n", nil
	}))

	p := &db.Preview{URL: "https://example.com", Title: db.Ptr("t"), Summary: db.Ptr("s")}
	require.NoError(t, tagger.Bookmark(context.Background(), p))
	assert.Nil(t, p.Tags)
}
