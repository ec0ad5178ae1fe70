package filter

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/llm"
)

// Config lists the relevance criteria. An empty list disables its phase.
type Config struct {
	Keywords []string
	Topics   []string
}

// SmartFilter decides whether a preview is worth keeping: a case-sensitive
// keyword gate on the summary, then an LLM topic gate.
type SmartFilter struct {
	keywords  []string
	topics    []string
	completer llm.Completer
}

func New(cfg Config, completer llm.Completer) *SmartFilter {
	return &SmartFilter{
		keywords:  append([]string(nil), cfg.Keywords...),
		topics:    append([]string(nil), cfg.Topics...),
		completer: completer,
	}
}

func (f *SmartFilter) AddKeywords(keywords ...string) {
	f.keywords = append(f.keywords, keywords...)
}

func (f *SmartFilter) AddTopics(topics ...string) {
	f.topics = append(f.topics, topics...)
}

// Check reports whether p passes both phases. A preview without a summary
// never passes. Completion errors are returned, never folded into false.
func (f *SmartFilter) Check(ctx context.Context, p *db.Preview) (bool, error) {
	if p.Summary == nil {
		return false, nil
	}
	summary := *p.Summary

	if len(f.keywords) > 0 && !containsAny(summary, f.keywords) {
		return false, nil
	}

	if len(f.topics) > 0 {
		if f.completer == nil {
			return false, fmt.Errorf("topic check for %s: no completer configured", p.URL)
		}
		response, err := f.completer.Complete(ctx, TopicPrompt(f.topics, summary))
		if err != nil {
			return false, fmt.Errorf("topic check for %s: %w", p.URL, err)
		}
		if !strings.Contains(response, "yes") && !strings.Contains(response, "Yes") {
			return false, nil
		}
	}

	return true, nil
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// TopicPrompt asks whether summary relates to any of topics.
func TopicPrompt(topics []string, summary string) string {
	return fmt.Sprintf(
		"Your task is to decide if the following passage is related to any of the following topics: %s. The passage is as follows.\n\n%s\n\n",
		strings.Join(topics, ", "),
		indent(summary),
	)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// Verdict pairs a preview with the outcome of its check.
type Verdict struct {
	Preview *db.Preview
	Passed  bool
	Err     error
}

// Checked runs Check and keeps the preview alongside the result.
func (f *SmartFilter) Checked(ctx context.Context, p *db.Preview) Verdict {
	passed, err := f.Check(ctx, p)
	return Verdict{Preview: p, Passed: passed, Err: err}
}

// CheckAll checks previews concurrently with at most limit checks in
// flight. Verdicts are returned in input order.
func (f *SmartFilter) CheckAll(ctx context.Context, previews []*db.Preview, limit int) []Verdict {
	verdicts := make([]Verdict, len(previews))

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range previews {
		i, p := i, p
		g.Go(func() error {
			verdicts[i] = f.Checked(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return verdicts
}
