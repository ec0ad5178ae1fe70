package sources

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PlainTextPDF converts PDFs with the ledongthuc/pdf reader.
type PlainTextPDF struct{}

func (PlainTextPDF) Text(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
