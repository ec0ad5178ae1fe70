package sources

import "strings"

// Kind is the extraction strategy a URL is dispatched to.
type Kind int

const (
	KindDocument Kind = iota
	KindPaper
	KindSocialPost
	KindRepository
)

func (k Kind) String() string {
	switch k {
	case KindPaper:
		return "paper"
	case KindSocialPost:
		return "social_post"
	case KindRepository:
		return "repository"
	default:
		return "document"
	}
}

// Target is a classified URL.
type Target struct {
	URL  string
	Kind Kind
	// PaperID is set for KindPaper.
	PaperID string
}

const (
	arxivPDFPrefix  = "https://arxiv.org/pdf/"
	arxivAbsPrefix  = "https://arxiv.org/abs/"
	arxivHTMLPrefix = "https://arxiv.org/html/"
	githubPrefix    = "https://github.com"
)

var socialPrefixes = []string{
	"https://x.com/",
	"https://twitter.com/",
}

// Classify maps url to a Kind. Rules are checked in order and the first
// match wins; anything unmatched is a generic document. A bare
// https://github.com is a repository and fails later for lack of an owner.
func Classify(url string) Target {
	if id, ok := PaperID(url); ok {
		return Target{URL: url, Kind: KindPaper, PaperID: id}
	}
	for _, prefix := range socialPrefixes {
		if strings.HasPrefix(url, prefix) {
			return Target{URL: url, Kind: KindSocialPost}
		}
	}
	if strings.HasPrefix(url, githubPrefix) {
		return Target{URL: url, Kind: KindRepository}
	}
	return Target{URL: url, Kind: KindDocument}
}

// PaperID extracts the arXiv identifier from a pdf, abs or html URL.
func PaperID(url string) (string, bool) {
	if s, ok := strings.CutPrefix(url, arxivPDFPrefix); ok {
		return strings.TrimSuffix(s, ".pdf"), true
	}
	if s, ok := strings.CutPrefix(url, arxivAbsPrefix); ok {
		return s, true
	}
	if s, ok := strings.CutPrefix(url, arxivHTMLPrefix); ok {
		return s, true
	}
	return "", false
}
