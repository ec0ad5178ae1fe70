package sources

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Article is the readable part of an HTML page.
type Article struct {
	Title         string
	TextContent   string
	PublishedTime *time.Time
}

// Readability extracts the main article from an HTML page.
type Readability interface {
	Parse(page []byte, pageURL string) (*Article, error)
}

// PDFConverter extracts plain text from a PDF on disk.
type PDFConverter interface {
	Text(path string) (string, error)
}

// DocumentExtractor handles any URL without a dedicated extractor by
// dispatching on the response content type.
type DocumentExtractor struct {
	Client      Getter
	Readability Readability
	PDF         PDFConverter
	Log         zerolog.Logger
}

func (d *DocumentExtractor) Extract(ctx context.Context, target Target) (*Result, error) {
	resp, err := d.Client.Get(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	if !resp.HasContentType {
		return nil, fmt.Errorf("%w: %s", ErrMissingContentType, target.URL)
	}

	contentType := resp.ContentType
	switch {
	case isPDF(contentType):
		text, err := d.pdfText(resp.Body)
		if err != nil {
			return nil, err
		}
		return &Result{Content: text}, nil

	case strings.HasPrefix(contentType, "text/html"):
		article, err := d.Readability.Parse(resp.Body, target.URL)
		if err != nil {
			d.Log.Warn().Err(err).Str("url", target.URL).Msg("readability failed, using URL as title")
			return &Result{Title: target.URL}, nil
		}
		result := &Result{Title: article.Title, Content: article.TextContent}
		if article.PublishedTime != nil {
			result.PublishedDate = article.PublishedTime.Format(time.RFC3339)
		}
		return result, nil

	default:
		d.Log.Info().Str("url", target.URL).Str("content_type", contentType).Msg("unrecognized content type")
		return &Result{}, nil
	}
}

func isPDF(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	return mediaType == "text/pdf" || mediaType == "application/pdf"
}

func (d *DocumentExtractor) pdfText(body []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "linkstitcher-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(body); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}

	text, err := d.PDF.Text(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	return text, nil
}
