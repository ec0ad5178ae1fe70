package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultOEmbedEndpoint = "https://publish.twitter.com/oembed"

// Post is the oEmbed payload for a social post.
type Post struct {
	URL        string `json:"url"`
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	HTML       string `json:"html"`
}

// TwitterExtractor resolves X/Twitter posts through the public oEmbed API.
type TwitterExtractor struct {
	Client   Getter
	Endpoint string
	MaxChars int
}

func (t *TwitterExtractor) Fetch(ctx context.Context, postURL string) (*Post, error) {
	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = DefaultOEmbedEndpoint
	}

	resp, err := t.Client.Get(ctx, endpoint+"?url="+url.QueryEscape(postURL))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oEmbed for %s: %w", postURL, err)
	}

	var post Post
	if err := json.Unmarshal(resp.Body, &post); err != nil {
		return nil, fmt.Errorf("failed to parse oEmbed response: %w", err)
	}
	return &post, nil
}

func (t *TwitterExtractor) Extract(ctx context.Context, target Target) (*Result, error) {
	post, err := t.Fetch(ctx, target.URL)
	if err != nil {
		return nil, err
	}

	text, err := StripMarkup(post.HTML)
	if err != nil {
		return nil, err
	}

	return &Result{
		Summary: Truncate(text, t.MaxChars),
		Content: text,
	}, nil
}

// StripMarkup returns the text nodes of an HTML fragment joined by single
// spaces. Script and style contents are dropped.
func StripMarkup(fragment string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse html fragment: %w", err)
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, " "), nil
}
