package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/fetch"
)

const hnFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Hacker News: Best</title>
    <link>https://news.ycombinator.com/best</link>
    <description>Best stories</description>
    <item>
      <title>Show HN: A typed Lisp</title>
      <link>https://example.com/lisp</link>
      <description>A small Lisp with a type system</description>
      <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
      <category>lang</category>
      <category>types</category>
    </item>
    <item>
      <title>No link here</title>
      <description>dropped</description>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.com/second</link>
    </item>
  </channel>
</rss>`

func TestReader_Read(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(hnFeed))
	}))
	defer srv.Close()

	r := NewReader(&fetch.Client{}, zerolog.Nop())
	previews, err := r.Read(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, previews, 2)

	first := previews[0]
	assert.Equal(t, "https://example.com/lisp", first.URL)
	assert.Equal(t, "Show HN: A typed Lisp", db.Str(first.Title))
	assert.Equal(t, "A small Lisp with a type system", db.Str(first.Summary))
	assert.Equal(t, "Mon, 01 Jan 2024 10:00:00 +0000", db.Str(first.PublishedDate))
	assert.Equal(t, "lang, types", db.Str(first.Tags))
	assert.Equal(t, "Hacker News: Best", db.Str(first.Source))
	assert.False(t, first.Saved)
	assert.False(t, first.Embellished)

	second := previews[1]
	assert.Nil(t, second.Summary)
	assert.Nil(t, second.Tags)
}

func TestReader_BadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	_, err := NewReader(&fetch.Client{}, zerolog.Nop()).Read(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFromItem_NoLink(t *testing.T) {
	_, ok := FromItem("src", &gofeed.Item{Title: "t"})
	assert.False(t, ok)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds", "saveds.feed.xml")

	added := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	previews := []db.Preview{
		{URL: "https://example.com/b", AddedDate: added, Title: db.Ptr("B"), Summary: db.Ptr("Source: GitHub\n\nreadme")},
		{URL: "https://example.com/a", AddedDate: added},
	}
	ch := Channel{
		Title:       "linkstitcher/saveds",
		Description: "The linkstitcher feed for saved URLs.",
		Link:        "https://github.com/rybla/linkstitcher",
	}
	require.NoError(t, Write(path, ch, previews))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "https://www.rybl.net/favicon.ico"))

	parsed, err := gofeed.NewParser().Parse(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "linkstitcher/saveds", parsed.Title)
	assert.Equal(t, "The linkstitcher feed for saved URLs.", parsed.Description)
	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "https://example.com/b", parsed.Items[0].Link)
	assert.Equal(t, "B", parsed.Items[0].Title)
	assert.Equal(t, "Source: GitHub\n\nreadme", parsed.Items[0].Description)
	assert.Equal(t, "https://example.com/a", parsed.Items[1].Link)
	require.NotNil(t, parsed.Items[1].PublishedParsed)
	assert.True(t, parsed.Items[1].PublishedParsed.Equal(added))
}

func TestWrite_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xml")
	require.NoError(t, Write(path, Channel{Title: "t", Description: "d", Link: "https://example.com"}, nil))

	parsed, err := gofeed.NewParser().ParseString(mustRead(t, path))
	require.NoError(t, err)
	assert.Empty(t, parsed.Items)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}
