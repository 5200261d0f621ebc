// Package ingestion turns uploaded resume documents (PDF, HTML, plain
// text, markdown) into cleaned plain text ready for extraction.
package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// UnreadableDocumentError means the source document has no extractable
// text at all. Callers must not retry extraction on such a document.
type UnreadableDocumentError struct {
	Path    string
	Message string
	Cause   error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unreadable document %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("unreadable document %s: %s", e.Path, e.Message)
}

func (e *UnreadableDocumentError) Unwrap() error {
	return e.Cause
}

// ExtractDocumentText reads a resume document and returns its cleaned
// text plus metadata. The format is inferred from the file extension;
// unknown extensions are treated as plain text.
func ExtractDocumentText(path string) (string, *Metadata, error) {
	var (
		raw    string
		format string
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		format = "pdf"
		raw, err = extractPDF(path)
	case ".html", ".htm":
		format = "html"
		raw, err = extractHTML(path)
	default:
		format = "text"
		raw, err = readTextFile(path)
	}
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", nil, &UnreadableDocumentError{Path: path, Message: "no extractable text"}
	}

	return cleaned, NewMetadata(cleaned, path, format), nil
}

func readTextFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}

func extractPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", &UnreadableDocumentError{Path: path, Message: "failed to open PDF", Cause: err}
	}
	defer func() { _ = file.Close() }()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", &UnreadableDocumentError{Path: path, Message: "failed to extract PDF text", Cause: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", &UnreadableDocumentError{Path: path, Message: "failed to read PDF text", Cause: err}
	}
	return buf.String(), nil
}

func extractHTML(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", &UnreadableDocumentError{Path: path, Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		// fall back to the whole-document text for fragments without a body
		return doc.Text(), nil
	}
	return strings.Join(lines, "\n"), nil
}
