package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/rag/extract"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

// --- Mocks ---

type mockExtractor struct {
	extractFunc func(path string) ([]extract.Page, error)
}

func (m *mockExtractor) Extract(path string) ([]extract.Page, error) {
	return m.extractFunc(path)
}

type mockEmbedder struct {
	batchCalls int
	batchFunc  func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type memStore struct {
	mu      sync.Mutex
	records map[string]map[int]docModel.Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]map[int]docModel.Record)}
}

func (s *memStore) InsertIfAbsent(ctx context.Context, rec docModel.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[rec.Source] == nil {
		s.records[rec.Source] = make(map[int]docModel.Record)
	}
	if _, exists := s.records[rec.Source][rec.ChunkID]; exists {
		return false, nil
	}
	s.records[rec.Source][rec.ChunkID] = rec
	return true, nil
}

func (s *memStore) ExistingChunks(ctx context.Context, source string) (map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make(map[int]bool)
	for id := range s.records[source] {
		existing[id] = true
	}
	return existing, nil
}

func (s *memStore) Query(ctx context.Context, vector []float32, topK int) ([]docModel.SearchHit, error) {
	return nil, nil
}

func (s *memStore) GetCachedAnswer(ctx context.Context, vector []float32) (docModel.Answer, bool, error) {
	return docModel.Answer{}, false, nil
}

func (s *memStore) SaveToCache(ctx context.Context, id string, vector []float32, answer docModel.Answer) error {
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) count(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[source])
}

// --- Helpers ---

func testIndexer(store *memStore, embedder *mockEmbedder, ex TextExtractor, batchSize int) *Indexer {
	return &Indexer{
		extractor: ex,
		store:     store,
		embedder:  embedder,
		chunkSize: 50,
		overlap:   10,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("TestIndexer"),
	}
}

func writePDFs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-fake"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// --- Tests ---

func TestRun_IndexesAndIsIdempotent(t *testing.T) {
	dir := writePDFs(t, "paper1.pdf", "notes.txt")

	store := newMemStore()
	embedder := &mockEmbedder{}
	ex := &mockExtractor{extractFunc: func(path string) ([]extract.Page, error) {
		return []extract.Page{{Number: 1, Text: "some extracted page content for chunking tests"}}, nil
	}}
	ix := testIndexer(store, embedder, ex, 64)

	summary, err := ix.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, want 1 (txt files are ignored)", summary.FilesProcessed)
	}
	if summary.ChunksInserted == 0 {
		t.Fatal("Expected chunks to be inserted")
	}
	firstInserted := summary.ChunksInserted

	// second run finds everything already stored
	summary, err = ix.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Second Run failed: %v", err)
	}
	if summary.ChunksInserted != 0 {
		t.Errorf("Second run inserted %d chunks, want 0", summary.ChunksInserted)
	}
	if summary.ChunksSkipped != firstInserted {
		t.Errorf("Second run skipped %d chunks, want %d", summary.ChunksSkipped, firstInserted)
	}
	if store.count("paper1.pdf") != firstInserted {
		t.Errorf("Store holds %d records, want %d", store.count("paper1.pdf"), firstInserted)
	}
}

func TestRun_ExtractionFailureSkipsFile(t *testing.T) {
	dir := writePDFs(t, "good.pdf", "scanned.pdf")

	store := newMemStore()
	ex := &mockExtractor{extractFunc: func(path string) ([]extract.Page, error) {
		if filepath.Base(path) == "scanned.pdf" {
			return nil, &extract.ExtractionError{Path: path, Err: errors.New("no text")}
		}
		return []extract.Page{{Number: 1, Text: "good content"}}, nil
	}}
	ix := testIndexer(store, &mockEmbedder{}, ex, 64)

	summary, err := ix.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.FilesProcessed != 1 || summary.FilesFailed != 1 {
		t.Errorf("Got processed=%d failed=%d, want 1/1", summary.FilesProcessed, summary.FilesFailed)
	}
	if store.count("good.pdf") == 0 {
		t.Error("Healthy file was not indexed")
	}
}

func TestRun_Batching(t *testing.T) {
	dir := writePDFs(t, "long.pdf")

	// 5 chunks of <=50 chars with stride 40 needs ~200 chars
	longText := ""
	for i := 0; i < 200; i++ {
		longText += "a"
	}

	store := newMemStore()
	embedder := &mockEmbedder{}
	ex := &mockExtractor{extractFunc: func(path string) ([]extract.Page, error) {
		return []extract.Page{{Number: 1, Text: longText}}, nil
	}}
	ix := testIndexer(store, embedder, ex, 2)

	summary, err := ix.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	wantBatches := (summary.ChunksInserted + 1) / 2
	if embedder.batchCalls != wantBatches {
		t.Errorf("BatchEmbedding called %d times for %d chunks with batch size 2, want %d",
			embedder.batchCalls, summary.ChunksInserted, wantBatches)
	}
}

func TestRun_EmbeddingFailureAborts(t *testing.T) {
	dir := writePDFs(t, "doc.pdf")

	store := newMemStore()
	embedder := &mockEmbedder{batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider is down")
	}}
	ex := &mockExtractor{extractFunc: func(path string) ([]extract.Page, error) {
		return []extract.Page{{Number: 1, Text: "content"}}, nil
	}}
	ix := testIndexer(store, embedder, ex, 64)

	_, err := ix.Run(context.Background(), dir)
	if err == nil {
		t.Fatal("Expected embedding failure to abort the run")
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	ix := testIndexer(newMemStore(), &mockEmbedder{}, &mockExtractor{
		extractFunc: func(path string) ([]extract.Page, error) { return nil, nil },
	}, 64)

	_, err := ix.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("Expected an error for a missing directory")
	}
}
