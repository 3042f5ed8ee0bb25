package extract

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/mkonduri/docqa/internal/config"
)

// Primary strategy: per-page text via dslipak/pdf.
func (e *Extractor) extractPDFPages(path string) ([]Page, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []Page
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := protectExtract(page)
		if err != nil {
			// A single broken page must not sink the document.
			e.logger.Warn("failed to parse page", "path", path, "page", i, "error", err)
			continue
		}

		pages = append(pages, Page{
			Number: i,
			Text:   text,
		})
	}
	return pages, nil
}

// Fallback strategy: whole-document text via lu4p/cat. Page attribution is
// lost, so everything lands on page 1.
func (e *Extractor) extractWholeDoc(path string) ([]Page, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("fallback extraction failed: %w", err)
	}

	return []Page{
		{
			Number: 1,
			Text:   text,
		},
	}, nil
}

// protectExtract runs GetPlainText behind a timeout; some malformed PDFs
// make the parser spin forever on a single page.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		text string
		err  error
	}
	resChan := make(chan result, 1)

	go func() {
		text, err := page.GetPlainText(nil)
		resChan <- result{text, err}
	}()
	select {
	case r := <-resChan:
		return r.text, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}
