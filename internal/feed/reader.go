package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/fetch"
)

type Getter interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Reader turns a remote RSS or Atom feed into previews.
type Reader struct {
	Client Getter
	Log    zerolog.Logger
}

func NewReader(client Getter, log zerolog.Logger) *Reader {
	return &Reader{Client: client, Log: log}
}

func (r *Reader) Read(ctx context.Context, url string) ([]*db.Preview, error) {
	resp, err := r.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", url, err)
	}

	previews := make([]*db.Preview, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		p, ok := FromItem(parsed.Title, item)
		if !ok {
			r.Log.Warn().Str("feed", url).Str("title", item.Title).Msg("feed item has no link, skipping")
			continue
		}
		previews = append(previews, p)
	}
	return previews, nil
}

// FromItem builds a preview from a feed item. It reports false when the
// item has no link.
func FromItem(source string, item *gofeed.Item) (*db.Preview, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return nil, false
	}

	p := db.NewPreview(link)
	if item.Title != "" {
		p.Title = db.Ptr(item.Title)
	}
	if item.Description != "" {
		p.Summary = db.Ptr(item.Description)
	}
	if item.Published != "" {
		p.PublishedDate = db.Ptr(item.Published)
	}
	if len(item.Categories) > 0 {
		p.SetTags(item.Categories)
	}
	if source != "" {
		p.Source = db.Ptr(source)
	}
	return p, true
}
