package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/llm"
)

// Tagger synthesizes tags for a preview and marks it bookmarked.
type Tagger struct {
	completer llm.Completer
}

func NewTagger(completer llm.Completer) *Tagger {
	return &Tagger{completer: completer}
}

// TagPrompt asks for a comma-separated tag list.
func TagPrompt(title, summary string) string {
	return fmt.Sprintf(
		"Consider the following content:\n\nTitle: %s\n\nText:\n\n%s...\n\nWrite a comma-separated list of categorizational tags for the above content. Respond ONLY with the comma-separated list",
		title, summary,
	)
}

// Bookmark requests tags when p has a title and summary but no tags yet.
// The response is stored verbatim with surrounding whitespace trimmed. A
// blank response leaves tags absent.
// Bookmarked is set even when the completion fails.
func (t *Tagger) Bookmark(ctx context.Context, p *db.Preview) error {
	defer func() { p.Bookmarked = true }()

	if p.Tags != nil || p.Title == nil || p.Summary == nil {
		return nil
	}

	response, err := t.completer.Complete(ctx, TagPrompt(*p.Title, *p.Summary))
	if err != nil {
		return fmt.Errorf("failed to generate tags for %s: %w", p.URL, err)
	}

	if tags := strings.TrimSpace(response); tags != "" {
		p.Tags = db.Ptr(tags)
	}
	return nil
}
