package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mkonduri/docqa/internal/rag/extract"
)

func TestSplit_InvalidParams(t *testing.T) {
	pages := []extract.Page{{Number: 1, Text: "hello"}}

	if _, err := Split(pages, "a.pdf", 0, 0); err == nil {
		t.Error("Expected error for zero chunk size, got nil")
	}
	if _, err := Split(pages, "a.pdf", 10, 10); err == nil {
		t.Error("Expected error for overlap == size, got nil")
	}
	if _, err := Split(pages, "a.pdf", 10, -1); err == nil {
		t.Error("Expected error for negative overlap, got nil")
	}
}

func TestSplit_SkipsEmptyPages(t *testing.T) {
	pages := []extract.Page{
		{Number: 1, Text: "   \n\t  "},
		{Number: 2, Text: "real content"},
		{Number: 3, Text: ""},
	}

	chunks, err := Split(pages, "a.pdf", 100, 10)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 2 {
		t.Errorf("Chunk came from page %d, want 2", chunks[0].Page)
	}
	if chunks[0].Text != "real content" {
		t.Errorf("Chunk text = %q, want trimmed page text", chunks[0].Text)
	}
}

func TestSplit_OverlapAndCoverage(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	pages := []extract.Page{{Number: 1, Text: text}}
	size, overlap := 30, 5

	chunks, err := Split(pages, "a.pdf", size, overlap)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	// every chunk respects the size bound
	for _, c := range chunks {
		if len(c.Text) > size {
			t.Errorf("Chunk %d is %d chars, exceeds size %d", c.Index, len(c.Text), size)
		}
		if c.Source != "a.pdf" {
			t.Errorf("Chunk %d source = %q, want a.pdf", c.Index, c.Source)
		}
	}

	// consecutive chunks share exactly the overlap window
	stride := size - overlap
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		if len(prev) < size {
			break // only the final chunk may be short
		}
		if prev[stride:] != chunks[i].Text[:overlap] {
			t.Errorf("Chunks %d and %d do not share the overlap window", i-1, i)
		}
	}

	// reconstructing from strides recovers the full text
	var rebuilt strings.Builder
	for i, c := range chunks {
		if i == len(chunks)-1 {
			rebuilt.WriteString(c.Text)
		} else {
			rebuilt.WriteString(c.Text[:stride])
		}
	}
	if rebuilt.String() != text {
		t.Error("Stride reconstruction does not recover the original text")
	}
}

func TestSplit_IndexContinuesAcrossPages(t *testing.T) {
	pages := []extract.Page{
		{Number: 1, Text: strings.Repeat("x", 25)},
		{Number: 2, Text: strings.Repeat("y", 25)},
	}

	chunks, err := Split(pages, "b.pdf", 10, 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("Chunk at position %d has index %d, want a single sequence", i, c.Index)
		}
	}

	// no chunk mixes characters from two pages
	for _, c := range chunks {
		if strings.Contains(c.Text, "x") && strings.Contains(c.Text, "y") {
			t.Errorf("Chunk %d spans a page boundary: %q", c.Index, c.Text)
		}
	}

	firstPageTwo := -1
	for _, c := range chunks {
		if c.Page == 2 {
			firstPageTwo = c.Index
			break
		}
	}
	if firstPageTwo <= 0 {
		t.Fatal("Expected page 2 chunks after page 1 chunks")
	}
	if !strings.HasPrefix(chunks[firstPageTwo].Text, "y") {
		t.Error("Overlap window leaked across the page boundary")
	}
}

func TestSplit_MultibyteRunesStayIntact(t *testing.T) {
	// 3-byte runes; windows measured in bytes would cut them mid-sequence
	text := strings.Repeat("日本語テキスト", 10) // 70 runes, 210 bytes
	pages := []extract.Page{{Number: 1, Text: text}}
	size, overlap := 7, 2

	chunks, err := Split(pages, "jp.pdf", size, overlap)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	for _, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Fatalf("Chunk %d contains invalid UTF-8: %q", c.Index, c.Text)
		}
		if utf8.RuneCountInString(c.Text) > size {
			t.Errorf("Chunk %d is %d runes, exceeds size %d", c.Index, utf8.RuneCountInString(c.Text), size)
		}
	}

	// reconstructing from rune strides recovers the full text
	stride := size - overlap
	var rebuilt []rune
	for i, c := range chunks {
		runes := []rune(c.Text)
		if i == len(chunks)-1 {
			rebuilt = append(rebuilt, runes...)
		} else {
			rebuilt = append(rebuilt, runes[:stride]...)
		}
	}
	if string(rebuilt) != text {
		t.Error("Rune stride reconstruction does not recover the original text")
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	pages := []extract.Page{{Number: 1, Text: "tiny"}}

	chunks, err := Split(pages, "c.pdf", 2000, 200)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "tiny" || chunks[0].Index != 0 {
		t.Errorf("Unexpected chunk: %+v", chunks[0])
	}
}
