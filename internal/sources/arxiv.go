package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

const DefaultArxivEndpoint = "http://export.arxiv.org/api/query"

// Paper is one entry of an arXiv API response.
type Paper struct {
	ID                  string
	Updated             string
	Published           string
	Title               string
	Summary             string
	Authors             []string
	PrimaryCategory     string
	PrimaryCategoryName string
	Categories          []string
	CategoryNames       []string
	PDFURL              string
	HTMLURL             string
	Comment             string
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Updated   string `xml:"updated"`
	Published string `xml:"published"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	} `xml:"link"`
	Comment string `xml:"comment"`
}

// ParsePapers decodes an arXiv Atom response.
func ParsePapers(body []byte) ([]Paper, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arXiv response: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		// the API reports bad ids as a single entry pointing at its error docs
		if strings.Contains(e.ID, "arxiv.org/api/errors") {
			continue
		}
		p := Paper{
			ID:                  strings.TrimSpace(e.ID),
			Updated:             strings.TrimSpace(e.Updated),
			Published:           strings.TrimSpace(e.Published),
			Title:               strings.Join(strings.Fields(e.Title), " "),
			Summary:             strings.TrimSpace(e.Summary),
			PrimaryCategory:     e.PrimaryCategory.Term,
			PrimaryCategoryName: CategoryName(e.PrimaryCategory.Term),
			Comment:             strings.TrimSpace(e.Comment),
		}
		for _, a := range e.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		for _, c := range e.Categories {
			p.Categories = append(p.Categories, c.Term)
			p.CategoryNames = append(p.CategoryNames, CategoryName(c.Term))
		}
		for _, l := range e.Links {
			switch {
			case l.Title == "pdf":
				p.PDFURL = strings.Replace(l.Href, "http:", "https:", 1) + ".pdf"
			case l.Type == "text/html":
				p.HTMLURL = strings.Replace(l.Href, "http:", "https:", 1)
			}
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// ArxivExtractor looks papers up by id through the arXiv query API.
type ArxivExtractor struct {
	Client   Getter
	Endpoint string
}

func (a *ArxivExtractor) Fetch(ctx context.Context, id string) (*Paper, error) {
	endpoint := a.Endpoint
	if endpoint == "" {
		endpoint = DefaultArxivEndpoint
	}

	resp, err := a.Client.Get(ctx, endpoint+"?id_list="+url.QueryEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query arXiv for %s: %w", id, err)
	}

	papers, err := ParsePapers(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoResults, id)
	}
	return &papers[0], nil
}

func (a *ArxivExtractor) Extract(ctx context.Context, target Target) (*Result, error) {
	paper, err := a.Fetch(ctx, target.PaperID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Title:         paper.Title,
		PublishedDate: paper.Published,
		Tags:          paper.CategoryNames,
		Summary:       paper.Summary,
		Source:        "ArXiv",
		Content:       paper.Summary,
	}, nil
}
