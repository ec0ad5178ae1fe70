package sources

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/user/linkstitcher/internal/fetch"
)

var (
	ErrMissingContentType = errors.New("response has no content-type header")
	ErrNoResults          = errors.New("no arXiv results")
	ErrInvalidRepoURL     = errors.New("repository URL must have owner and name segments")
	ErrNoReadableContent  = errors.New("readability found no content")
)

// Result is what an extractor learned about a URL. Empty fields were not
// populated.
type Result struct {
	Title         string
	PublishedDate string
	Tags          []string
	Summary       string
	// Source is applied only when the preview has no source yet.
	Source string
	// Content is the raw text used for summary fallback.
	Content string
}

// Extractor obtains content and metadata for one kind of URL. It may return
// a partially filled Result alongside an error.
type Extractor interface {
	Extract(ctx context.Context, target Target) (*Result, error)
}

// Getter is the HTTP capability extractors need.
type Getter interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Truncate cuts s to at most n runes without adding an ellipsis. A
// non-positive n leaves s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Deps are the capabilities the default extractors are built from.
type Deps struct {
	Client         Getter
	Readmes        ReadmeFetcher
	Readability    Readability
	PDF            PDFConverter
	ArxivEndpoint  string
	OEmbedEndpoint string
	// MaxChars is the summary budget for extractors that truncate.
	MaxChars int
	Log      zerolog.Logger
}

// NewExtractors returns one extractor per Kind.
func NewExtractors(d Deps) map[Kind]Extractor {
	return map[Kind]Extractor{
		KindPaper:      &ArxivExtractor{Client: d.Client, Endpoint: d.ArxivEndpoint},
		KindSocialPost: &TwitterExtractor{Client: d.Client, Endpoint: d.OEmbedEndpoint, MaxChars: d.MaxChars},
		KindRepository: &GitHubExtractor{Readmes: d.Readmes, MaxChars: d.MaxChars},
		KindDocument: &DocumentExtractor{
			Client:      d.Client,
			Readability: d.Readability,
			PDF:         d.PDF,
			Log:         d.Log,
		},
	}
}
