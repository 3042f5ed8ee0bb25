package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/mkonduri/docqa/internal/config"
	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/metrics"
	"github.com/mkonduri/docqa/internal/rag/chunk"
	"github.com/mkonduri/docqa/internal/rag/embedding"
	"github.com/mkonduri/docqa/internal/rag/extract"
	"github.com/mkonduri/docqa/internal/rag/vectorDB"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

// TextExtractor yields per-page plain text for a document on disk.
type TextExtractor interface {
	Extract(path string) ([]extract.Page, error)
}

// Indexer drives the write path: walk a PDF directory, extract, chunk,
// embed in batches and insert. Everything already stored is skipped, so an
// interrupted run picks up where it left off on the next invocation.
type Indexer struct {
	extractor TextExtractor
	store     vectorDB.Store
	embedder  embedding.Embedder

	chunkSize int
	overlap   int
	batchSize int

	logger *logger_i.Logger
}

func New(store vectorDB.Store, embedder embedding.Embedder) *Indexer {
	return &Indexer{
		extractor: extract.NewExtractor(),
		store:     store,
		embedder:  embedder,
		chunkSize: config.ChunkSize,
		overlap:   config.ChunkOverlap,
		batchSize: config.EmbedBatchSize,
		logger:    logger_i.NewLogger("Indexer"),
	}
}

// Run indexes every .pdf under pdfsDir. Files that cannot be extracted are
// reported in the summary and skipped; embedding or store failures abort
// the run (stored batches persist, rerun to resume).
func (ix *Indexer) Run(ctx context.Context, pdfsDir string) (docModel.IndexSummary, error) {
	var summary docModel.IndexSummary

	var paths []string
	err := filepath.WalkDir(pdfsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("walking %s: %w", pdfsDir, err)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		ix.logger.Info("processing document", "path", path)
		if err := ix.indexFile(ctx, path, &summary); err != nil {
			var extractionErr *extract.ExtractionError
			if errors.As(err, &extractionErr) {
				ix.logger.Warn("skipping file, extraction failed", "path", path, "error", err)
				summary.FilesFailed++
				continue
			}
			return summary, err
		}
		summary.FilesProcessed++
	}

	ix.logger.Info("indexing run finished",
		"files_processed", summary.FilesProcessed,
		"files_failed", summary.FilesFailed,
		"chunks_inserted", summary.ChunksInserted,
		"chunks_skipped", summary.ChunksSkipped)
	return summary, nil
}

func (ix *Indexer) indexFile(ctx context.Context, path string, summary *docModel.IndexSummary) error {
	pages, err := ix.extractor.Extract(path)
	if err != nil {
		return err
	}

	source := filepath.Base(path)
	chunks, err := chunk.Split(pages, source, ix.chunkSize, ix.overlap)
	if err != nil {
		return fmt.Errorf("chunking %s: %w", path, err)
	}
	if len(chunks) == 0 {
		ix.logger.Warn("no chunks produced", "path", path)
		return nil
	}

	existing, err := ix.store.ExistingChunks(ctx, source)
	if err != nil {
		return err
	}

	var pending []docModel.Chunk
	for _, c := range chunks {
		if existing[c.Index] {
			summary.ChunksSkipped++
			continue
		}
		pending = append(pending, c)
	}
	metrics.AddChunksSkipped(len(chunks) - len(pending))

	if len(pending) == 0 {
		ix.logger.Info("already indexed", "path", path, "chunks", len(chunks))
		return nil
	}
	ix.logger.Info("resuming", "path", path, "pending", len(pending), "total", len(chunks))

	for start := 0; start < len(pending); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		if err := ix.indexBatch(ctx, pending[start:end], summary); err != nil {
			return err
		}
		ix.logger.Debug("stored batch", "path", path, "done", end, "pending", len(pending))
	}

	ix.logger.Info("indexed document", "path", path, "chunks", len(chunks))
	return nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []docModel.Chunk, summary *docModel.IndexSummary) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(batch))
	}

	inserted := 0
	for i, c := range batch {
		ok, err := ix.store.InsertIfAbsent(ctx, docModel.Record{
			Source:    c.Source,
			ChunkID:   c.Index,
			Page:      c.Page,
			Text:      c.Text,
			Embedding: vectors[i],
		})
		if err != nil {
			return err
		}
		if ok {
			summary.ChunksInserted++
			inserted++
		} else {
			summary.ChunksSkipped++
		}
	}
	metrics.AddChunksIndexed(inserted)
	return nil
}
