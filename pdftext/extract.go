// Package pdftext extracts plain text from PDF documents. Parsing is
// delegated to github.com/ledongthuc/pdf; this package only deals with
// assembling page text and guarding against malformed input.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract returns the concatenated text of every page, pages separated by
// a newline, leading/trailing whitespace trimmed.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	pages, err := ExtractPages(r, size)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

// ExtractPages returns the text of each page in order. A page that cannot
// be read contributes an empty string rather than failing the document.
func ExtractPages(r io.ReaderAt, size int64) (pages []string, err error) {
	// The parser panics on some malformed documents; a broken PDF must
	// surface as an error, never take the batch down.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("pdftext: malformed document: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pdftext: %w", err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, pErr := page.GetPlainText(nil)
		if pErr != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}
	return pages, nil
}

// ExtractBytes extracts from an in-memory document, as downloaded from an
// attachment endpoint.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}

// ExtractFile extracts from a PDF on disk.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return Extract(f, info.Size())
}

// ExtractFilePages renders a file page by page with "--- Page n ---"
// headers, the format the extract command prints and saves.
func ExtractFilePages(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	pages, err := ExtractPages(f, info.Size())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, page := range pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s\n", i+1, page)
	}
	return strings.TrimSpace(b.String()), nil
}

// Preview truncates text to n characters, marking how much was cut.
// Truncation happens on rune boundaries so the preview stays valid UTF-8.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return fmt.Sprintf("%s...\n[Document continues - %d characters total]", string(runes[:n]), len(runes))
}
