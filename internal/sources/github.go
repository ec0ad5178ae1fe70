package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ReadmeFetcher returns the decoded README of owner/repo. ok is false when
// the repository has no README.
type ReadmeFetcher interface {
	Readme(ctx context.Context, owner, repo string) (text string, ok bool, err error)
}

// GitHubReadmes fetches READMEs through the GitHub REST API.
type GitHubReadmes struct {
	client *github.Client
}

// NewGitHubReadmes builds a README fetcher. token may be empty for
// unauthenticated, rate-limited access.
func NewGitHubReadmes(httpClient *http.Client, token string) *GitHubReadmes {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubReadmes{client: client}
}

// SetBaseURL points the client at a different API host.
func (g *GitHubReadmes) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	g.client.BaseURL = u
	return nil
}

func (g *GitHubReadmes) Readme(ctx context.Context, owner, repo string) (string, bool, error) {
	readme, _, err := g.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get README for %s/%s: %w", owner, repo, err)
	}

	text, err := readme.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("failed to decode README for %s/%s: %w", owner, repo, err)
	}
	return text, true, nil
}

// GitHubExtractor summarizes repositories from their README.
type GitHubExtractor struct {
	Readmes  ReadmeFetcher
	MaxChars int
}

// RepoFromURL returns the owner and name path segments of a repository URL.
func RepoFromURL(raw string) (owner, repo string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRepoURL, raw)
	}
	return segments[0], strings.TrimSuffix(segments[1], ".git"), nil
}

func (g *GitHubExtractor) Extract(ctx context.Context, target Target) (*Result, error) {
	owner, repo, err := RepoFromURL(target.URL)
	if err != nil {
		return nil, err
	}

	text, ok, err := g.Readmes.Readme(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Result{}, nil
	}
	return &Result{
		Summary: Truncate(text, g.MaxChars),
		Content: text,
	}, nil
}
