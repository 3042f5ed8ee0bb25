// Command indexer runs the write path synchronously: scan a directory of
// PDFs, embed whatever is missing from the store, and print a summary.
// Reruns skip chunks that are already indexed, so an interrupted run can
// simply be started again.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mkonduri/docqa/internal/config"
	"github.com/mkonduri/docqa/internal/rag/embedding"
	"github.com/mkonduri/docqa/internal/rag/embedding/geminiEmbedding"
	"github.com/mkonduri/docqa/internal/rag/embedding/openaiEmbedding"
	"github.com/mkonduri/docqa/internal/rag/indexer"
	"github.com/mkonduri/docqa/internal/rag/vectorDB/sqliteDB"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("indexer")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Bad configuration", "error", err)
		os.Exit(1)
	}

	pdfsDir := flag.String("pdfs-dir", cfg.PDFsDir, "directory to scan for PDF files")
	dbPath := flag.String("db", cfg.DBPath, "path to the vector store database")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), config.IndexJobTimeout)
	defer cancel()

	store, err := sqliteDB.Open(*dbPath, config.CacheSimilarityCutoff)
	if err != nil {
		logger.Error("Failed to open vector store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize embedding provider", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	summary, err := indexer.New(store, embedder).Run(ctx, *pdfsDir)
	if err != nil {
		logger.Error("Indexing failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Indexed %s: %d files processed, %d failed, %d chunks inserted, %d skipped\n",
		*pdfsDir, summary.FilesProcessed, summary.FilesFailed, summary.ChunksInserted, summary.ChunksSkipped)
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	if cfg.Provider == "gemini" {
		return geminiEmbedding.NewClient(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	}
	return openaiEmbedding.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimension), nil
}
