package filter

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkstitcher/internal/db"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func answer(s string) completerFunc {
	return func(context.Context, string) (string, error) { return s, nil }
}

func preview(summary string) *db.Preview {
	p := db.NewPreview("https://example.com/" + strings.ReplaceAll(summary, " ", "-"))
	p.Summary = db.Ptr(summary)
	return p
}

func TestCheck_NoSummary(t *testing.T) {
	var calls int32
	f := New(Config{Keywords: []string{"rust"}, Topics: []string{"rust"}}, completerFunc(func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "yes", nil
	}))

	ok, err := f.Check(context.Background(), db.NewPreview("https://example.com"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, calls)

	ok, err = New(Config{}, nil).Check(context.Background(), db.NewPreview("https://example.com"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_KeywordsCaseSensitive(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		summary  string
		want     bool
	}{
		{"lowercase keyword misses", []string{"rust"}, "I love Rust", false},
		{"exact case matches", []string{"Rust"}, "I love Rust", true},
		{"substring matches", []string{"compiler"}, "writing compilers in Go", true},
		{"any keyword", []string{"haskell", "ocaml"}, "ocaml 5 released", true},
		{"none match", []string{"haskell"}, "a post about cooking", false},
		{"empty set passes", nil, "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(Config{Keywords: tt.keywords}, nil)
			ok, err := f.Check(context.Background(), preview(tt.summary))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheck_TopicPhase(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"lowercase yes", "yes", true},
		{"capital Yes", "Yes, it is related.", true},
		{"embedded yes", "the answer is yes.", true},
		{"no", "No.", false},
		{"shouting", "YES", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(Config{Topics: []string{"math"}}, answer(tt.response))
			ok, err := f.Check(context.Background(), preview("category theory for programmers"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheck_TopicSkippedWhenEmpty(t *testing.T) {
	f := New(Config{Keywords: []string{"Go"}}, completerFunc(func(context.Context, string) (string, error) {
		t.Fatal("completer must not be called without topics")
		return "", nil
	}))
	ok, err := f.Check(context.Background(), preview("Go 1.24 is out"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_KeywordGateRunsFirst(t *testing.T) {
	var calls int32
	f := New(Config{Keywords: []string{"rust"}, Topics: []string{"lang"}}, completerFunc(func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "yes", nil
	}))
	ok, err := f.Check(context.Background(), preview("gardening tips"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, calls)
}

func TestCheck_CompleterErrorPropagates(t *testing.T) {
	boom := errors.New("service down")
	f := New(Config{Topics: []string{"math"}}, completerFunc(func(context.Context, string) (string, error) {
		return "", boom
	}))
	ok, err := f.Check(context.Background(), preview("proofs"))
	assert.False(t, ok)
	assert.True(t, errors.Is(err, boom))
}

func TestTopicPrompt(t *testing.T) {
	got := TopicPrompt([]string{"haskell", "math"}, "line one\nline two")
	want := "Your task is to decide if the following passage is related to any of the following topics: haskell, math. The passage is as follows.\n\n    line one\n    line two\n\n"
	assert.Equal(t, want, got)
}

func TestAddTopics(t *testing.T) {
	var prompt string
	f := New(Config{}, completerFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "no", nil
	}))
	f.AddKeywords("monad")
	f.AddTopics("type theory")

	ok, err := f.Check(context.Background(), preview("a monad tutorial"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, prompt, "topics: type theory.")
}

func TestCheckAll(t *testing.T) {
	f := New(Config{Topics: []string{"x"}}, completerFunc(func(_ context.Context, p string) (string, error) {
		switch {
		case strings.Contains(p, "good"):
			return "Yes", nil
		case strings.Contains(p, "broken"):
			return "", errors.New("boom")
		default:
			return "no", nil
		}
	}))

	previews := []*db.Preview{preview("good one"), preview("bad one"), preview("broken one"), preview("good two")}
	verdicts := f.CheckAll(context.Background(), previews, 2)
	require.Len(t, verdicts, 4)

	for i, v := range verdicts {
		assert.Same(t, previews[i], v.Preview)
	}
	assert.True(t, verdicts[0].Passed)
	assert.False(t, verdicts[1].Passed)
	assert.NoError(t, verdicts[1].Err)
	assert.Error(t, verdicts[2].Err)
	assert.True(t, verdicts[3].Passed)
}

func TestKeep(t *testing.T) {
	a, b, c := preview("a"), preview("b"), preview("c")
	verdicts := []Verdict{
		{Preview: a, Passed: true},
		{Preview: b, Passed: false},
		{Preview: c, Err: errors.New("boom")},
	}

	kept, failed, err := Keep(verdicts, ExcludeOnError)
	require.NoError(t, err)
	assert.Equal(t, []*db.Preview{a}, kept)
	assert.Len(t, failed, 1)

	kept, _, err = Keep(verdicts, IncludeOnError)
	require.NoError(t, err)
	assert.Equal(t, []*db.Preview{a, c}, kept)

	_, failed, err = Keep(verdicts, FailOnError)
	assert.Error(t, err)
	assert.Len(t, failed, 1)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ExcludeOnError, p)

	p, err = ParsePolicy("include")
	require.NoError(t, err)
	assert.Equal(t, IncludeOnError, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
