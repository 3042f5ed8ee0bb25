package rag

import (
	"context"
	"time"

	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/domain/jobModel"
	"github.com/mkonduri/docqa/internal/metrics"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

func returnOutput(job jobModel.Job) jobModel.Job {
	job.CurrentStep = jobModel.Complete
	return job
}

func logStep(job *jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) {
	job.CurrentStep = status
	log.Debug("pipeline step", "current_step", job.CurrentStep)
}

func (s *service) jobError(job jobModel.Job, err error, code int, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "jobId", job.Id, "error", err)

	job.Error = jobModel.JobError{
		Code:    code,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, question string) ([]float32, error) {
	logStep(job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, vector []float32) (docModel.Answer, bool) {
	logStep(job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	answer, found, err := s.store.GetCachedAnswer(ctx, vector)
	if err != nil {
		log.Warn("cache lookup failed, continuing without it", "error", err)
		return docModel.Answer{}, false
	}
	return answer, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, vector []float32, topK int) ([]docModel.SearchHit, error) {
	logStep(job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.store.Query(ctx, vector, topK)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, question string, hits []docModel.SearchHit) (string, error) {
	logStep(job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, question, formatContextBlocks(hits))
}
