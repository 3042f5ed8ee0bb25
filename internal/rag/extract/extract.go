package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkonduri/docqa/pkg/logger_i"
)

// Page is one page of extracted plain text.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ExtractionError means every strategy came back empty for the file.
// The indexer reports it and moves on to the next file.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no text extracted from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type strategy struct {
	name string
	fn   func(path string) ([]Page, error)
}

// Extractor tries an ordered list of strategies until one yields
// non-whitespace text.
type Extractor struct {
	strategies []strategy
	logger     *logger_i.Logger
}

func NewExtractor() *Extractor {
	e := &Extractor{logger: logger_i.NewLogger("Extractor")}
	e.strategies = []strategy{
		{name: "pdf-pages", fn: e.extractPDFPages},
		{name: "whole-doc", fn: e.extractWholeDoc},
	}
	return e
}

func newWithStrategies(strategies []strategy) *Extractor {
	return &Extractor{strategies: strategies, logger: logger_i.NewLogger("Extractor")}
}

// Extract returns per-page text in page order. Read-only on the file.
func (e *Extractor) Extract(path string) ([]Page, error) {
	var lastErr error
	for _, s := range e.strategies {
		pages, err := s.fn(path)
		if err != nil {
			e.logger.Warn("extraction strategy failed", "strategy", s.name, "path", path, "error", err)
			lastErr = err
			continue
		}
		if hasText(pages) {
			e.logger.Debug("extracted document", "strategy", s.name, "path", path, "pages", len(pages))
			return pages, nil
		}
		e.logger.Debug("strategy yielded no text, trying next", "strategy", s.name, "path", path)
	}

	if lastErr == nil {
		lastErr = errors.New("all strategies yielded empty text")
	}
	return nil, &ExtractionError{Path: path, Err: lastErr}
}

func hasText(pages []Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
