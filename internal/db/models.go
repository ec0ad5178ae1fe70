package db

import (
	"strings"
	"time"
)

// Preview is the normalized record describing one ingested URL.
type Preview struct {
	URL           string    `db:"url" json:"url"`
	AddedDate     time.Time `db:"added_date" json:"added_date"`
	Saved         bool      `db:"saved" json:"saved"`
	Embellished   bool      `db:"embellished" json:"embellished"`
	Bookmarked    bool      `db:"bookmarked" json:"bookmarked"`
	Source        *string   `db:"source" json:"source,omitempty"`
	Title         *string   `db:"title" json:"title,omitempty"`
	PublishedDate *string   `db:"published_date" json:"published_date,omitempty"`
	Tags          *string   `db:"tags" json:"tags,omitempty"` // comma-separated
	Summary       *string   `db:"summary" json:"summary,omitempty"`
}

// NewPreview returns a bare preview for url added today.
func NewPreview(url string) *Preview {
	return &Preview{URL: url, AddedDate: Today()}
}

// Today returns the current UTC date at midnight.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// TagList splits the stored tag string into trimmed, non-empty tokens.
func (p *Preview) TagList() []string {
	if p.Tags == nil {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(*p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SetTags stores tags as a ", " joined list. An empty list clears the field.
func (p *Preview) SetTags(tags []string) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		p.Tags = nil
		return
	}
	p.Tags = Ptr(strings.Join(clean, ", "))
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}

// Str dereferences s, returning "" for nil.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
