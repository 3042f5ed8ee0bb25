package extract

import (
	"errors"
	"testing"
)

func TestExtract_FallsBackWhenPrimaryIsEmpty(t *testing.T) {
	primaryCalled := false
	fallbackCalled := false

	e := newWithStrategies([]strategy{
		{name: "primary", fn: func(path string) ([]Page, error) {
			primaryCalled = true
			return []Page{{Number: 1, Text: "   \n  "}}, nil
		}},
		{name: "fallback", fn: func(path string) ([]Page, error) {
			fallbackCalled = true
			return []Page{{Number: 1, Text: "recovered text"}}, nil
		}},
	})

	pages, err := e.Extract("scanned.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !primaryCalled || !fallbackCalled {
		t.Error("Expected both strategies to be tried in order")
	}
	if len(pages) != 1 || pages[0].Text != "recovered text" {
		t.Errorf("Unexpected pages: %+v", pages)
	}
}

func TestExtract_FallsBackWhenPrimaryErrors(t *testing.T) {
	e := newWithStrategies([]strategy{
		{name: "primary", fn: func(path string) ([]Page, error) {
			return nil, errors.New("malformed xref")
		}},
		{name: "fallback", fn: func(path string) ([]Page, error) {
			return []Page{{Number: 1, Text: "whole doc text"}}, nil
		}},
	})

	pages, err := e.Extract("broken.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if pages[0].Text != "whole doc text" {
		t.Errorf("Unexpected text: %q", pages[0].Text)
	}
}

func TestExtract_PrimaryWinsWhenItHasText(t *testing.T) {
	fallbackCalled := false

	e := newWithStrategies([]strategy{
		{name: "primary", fn: func(path string) ([]Page, error) {
			return []Page{{Number: 1, Text: "page one"}, {Number: 2, Text: "page two"}}, nil
		}},
		{name: "fallback", fn: func(path string) ([]Page, error) {
			fallbackCalled = true
			return nil, nil
		}},
	})

	pages, err := e.Extract("fine.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if fallbackCalled {
		t.Error("Fallback ran even though primary produced text")
	}
	if len(pages) != 2 {
		t.Errorf("Expected 2 pages, got %d", len(pages))
	}
}

func TestExtract_AllStrategiesFail(t *testing.T) {
	e := newWithStrategies([]strategy{
		{name: "primary", fn: func(path string) ([]Page, error) {
			return nil, errors.New("cannot parse")
		}},
		{name: "fallback", fn: func(path string) ([]Page, error) {
			return []Page{{Number: 1, Text: ""}}, nil
		}},
	})

	_, err := e.Extract("image-only.pdf")
	if err == nil {
		t.Fatal("Expected an error when no strategy yields text")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected *ExtractionError, got %T", err)
	}
	if extractionErr.Path != "image-only.pdf" {
		t.Errorf("Error path = %q, want image-only.pdf", extractionErr.Path)
	}
}
