package sources

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// GoReadability is the Readability implementation backed by go-readability.
type GoReadability struct{}

func (GoReadability) Parse(page []byte, pageURL string) (*Article, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(page), u)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoReadableContent, pageURL)
	}

	return &Article{
		Title:         article.Title,
		TextContent:   strings.TrimSpace(article.TextContent),
		PublishedTime: article.PublishedTime,
	}, nil
}
