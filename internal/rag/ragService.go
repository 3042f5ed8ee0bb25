package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkonduri/docqa/internal/config"
	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/domain/jobModel"
	"github.com/mkonduri/docqa/internal/metrics"
	"github.com/mkonduri/docqa/internal/rag/embedding"
	"github.com/mkonduri/docqa/internal/rag/llm"
	"github.com/mkonduri/docqa/internal/rag/vectorDB"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

// ErrEmptyQuery rejects blank questions before any network call is made.
var ErrEmptyQuery = errors.New("query must not be empty")

// DirIndexer runs the write path over a PDF directory.
type DirIndexer interface {
	Run(ctx context.Context, pdfsDir string) (docModel.IndexSummary, error)
}

// Service is all the worker needs; it doesn't know about the store, the
// embedder or the LLM behind it.
type Service interface {
	ProcessQuery(ctx context.Context, job jobModel.Job) jobModel.Job
	ProcessIndex(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	store       vectorDB.Store
	llmProvider llm.Provider
	embedder    embedding.Embedder
	indexer     DirIndexer
	logger      *logger_i.Logger
}

// NewService wires the answer and indexing pipelines behind one service.
func NewService(store vectorDB.Store, llmProvider llm.Provider, em embedding.Embedder, ix DirIndexer) Service {
	return &service{
		store:       store,
		llmProvider: llmProvider,
		embedder:    em,
		indexer:     ix,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessQuery(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "jobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()

	question := strings.TrimSpace(jobt.JobPayload.Question)
	if question == "" {
		return s.jobError(jobt, ErrEmptyQuery, 400, "Query is required", false)
	}

	topK := jobt.JobPayload.TopK
	if topK < 1 {
		topK = config.DefaultTopK
	}

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt, question)
	if err != nil {
		return s.jobError(jobt, err, 500, "Embedding failure", true)
	}

	// Cache check
	cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &jobt, queryVector)
	if found {
		jobt.JobPayload.Answer = cachedAnswer.Text
		jobt.JobPayload.Sources = cachedAnswer.Sources
		return returnOutput(jobt)
	}

	// Vector store search
	hits, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, queryVector, topK)
	if err != nil {
		return s.jobError(jobt, err, 500, "Vector store failure", true)
	}

	// LLM generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, question, hits)
	if err != nil {
		return s.jobError(jobt, err, 500, "Answer generation failure", true)
	}

	sources := toSources(hits)
	jobt.JobPayload.Answer = answer
	jobt.JobPayload.Sources = sources

	// Background cache save; a miss here only costs a future cache hit.
	go func() {
		cacheEntry := docModel.Answer{Text: answer, Sources: sources}
		if err := s.store.SaveToCache(context.Background(), uuid.New().String(), queryVector, cacheEntry); err != nil {
			s.logger.Error("failed to save answer to cache", "error", err)
		}
	}()

	return returnOutput(jobt)
}

func (s *service) ProcessIndex(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_indexing", time.Since(start)) }()

	processContext, cancel := context.WithTimeout(ctx, config.IndexJobTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.IndexProcessing
	summary, err := s.indexer.Run(processContext, jobt.JobPayload.PDFsDir)
	jobt.JobPayload.IndexSummary = &summary
	if err != nil {
		return s.jobError(jobt, err, 500, "Indexing failure", true)
	}
	return returnOutput(jobt)
}

func toSources(hits []docModel.SearchHit) []docModel.Source {
	sources := make([]docModel.Source, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, docModel.Source{
			SourceName: hit.Record.Source,
			ChunkIndex: hit.Record.ChunkID,
			Score:      hit.Score,
			Page:       hit.Record.Page,
			Images:     hit.Record.Images,
		})
	}
	return sources
}

func formatContextBlocks(hits []docModel.SearchHit) []string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		header := fmt.Sprintf("[Source: %s | chunk %d | page %d | score %.3f]",
			hit.Record.Source, hit.Record.ChunkID, hit.Record.Page, hit.Score)
		blocks = append(blocks, header+"\n"+hit.Record.Text+"\n"+strings.Repeat("-", 80))
	}
	return blocks
}
