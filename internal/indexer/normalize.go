package indexer

import (
	"strings"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/sources"
)

// Normalize fills the summary fallback chain after extraction:
//  1. no summary and content available: truncated content
//  2. still no summary and a title: "Title: <title>"
//  3. a summary and a source: prefix "Source: <source>\n\n" once
//
// Re-running Normalize on an already prefixed summary is a no-op.
func Normalize(p *db.Preview, content string, maxChars int) {
	if p.Summary == nil && content != "" {
		p.Summary = db.Ptr(sources.Truncate(content, maxChars))
	}

	if p.Summary == nil && p.Title != nil {
		p.Summary = db.Ptr("Title: " + *p.Title)
	}

	if p.Summary != nil && p.Source != nil {
		prefix := SourcePrefix(*p.Source)
		if !strings.HasPrefix(*p.Summary, prefix) {
			p.Summary = db.Ptr(prefix + *p.Summary)
		}
	}
}

func SourcePrefix(source string) string {
	return "Source: " + source + "\n\n"
}
