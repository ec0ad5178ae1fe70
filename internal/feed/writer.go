package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/feeds"

	"github.com/user/linkstitcher/internal/db"
)

const (
	imageURL   = "https://www.rybl.net/favicon.ico"
	imageTitle = "rybl/linkstitcher"
)

// Channel is the metadata of a written feed.
type Channel struct {
	Title       string
	Description string
	Link        string
}

// Build renders previews, in the given order, as a feed.
func Build(ch Channel, previews []db.Preview) *feeds.Feed {
	f := &feeds.Feed{
		Title:       ch.Title,
		Link:        &feeds.Link{Href: ch.Link},
		Description: ch.Description,
		Created:     time.Now().UTC(),
		Image: &feeds.Image{
			Url:   imageURL,
			Title: imageTitle,
			Link:  ch.Link,
		},
	}

	for _, p := range previews {
		f.Items = append(f.Items, &feeds.Item{
			Title:       db.Str(p.Title),
			Link:        &feeds.Link{Href: p.URL},
			Id:          p.URL,
			Description: db.Str(p.Summary),
			Created:     p.AddedDate,
		})
	}
	return f
}

// Write renders previews as RSS 2.0 into path, replacing any existing file.
func Write(path string, ch Channel, previews []db.Preview) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create feed directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create feed file: %w", err)
	}
	defer out.Close()

	if err := Build(ch, previews).WriteRss(out); err != nil {
		return fmt.Errorf("failed to write feed %s: %w", path, err)
	}
	return out.Close()
}
