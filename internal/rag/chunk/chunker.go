package chunk

import (
	"fmt"
	"strings"

	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/rag/extract"
)

// Split cuts per-page text into fixed-size character windows with the given
// overlap between consecutive windows. Sizes count Unicode code points, so a
// window edge never lands inside a multi-byte rune. Chunk indices are a
// single ordinal sequence per source, continuing across pages; the overlap
// window resets at page boundaries so a chunk never spans two pages.
// Whitespace-only pages produce nothing.
func Split(pages []extract.Page, source string, size int, overlap int) ([]docModel.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, size)
	}

	stride := size - overlap
	var chunks []docModel.Chunk
	index := 0

	for _, page := range pages {
		text := []rune(strings.TrimSpace(page.Text))
		if len(text) == 0 {
			continue
		}

		for i := 0; i < len(text); i += stride {
			end := i + size
			if end > len(text) {
				end = len(text)
			}
			chunks = append(chunks, docModel.Chunk{
				Source: source,
				Index:  index,
				Page:   page.Number,
				Text:   string(text[i:end]),
			})
			index++
			if end == len(text) {
				break
			}
		}
	}

	return chunks, nil
}
