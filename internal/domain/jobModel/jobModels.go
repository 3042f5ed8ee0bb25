package jobModel

import (
	"context"
	"time"

	"github.com/mkonduri/docqa/internal/domain/docModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"

	QueryInit        InternalStatus = "Init"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	CacheCall        InternalStatus = "CacheCall"
	VectorDBCall     InternalStatus = "VectorDB"
	LLMCall          InternalStatus = "LLM"

	IndexInit       InternalStatus = "IndexInit"
	IndexProcessing InternalStatus = "IndexProcessing"

	Complete InternalStatus = "Complete"
	Error    InternalStatus = "Error"

	JobTypeQuery JobType = "Query"
	JobTypeIndex JobType = "Index"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question string            `json:"question,omitempty"`
	TopK     int               `json:"top_k,omitempty"`
	Answer   string            `json:"answer,omitempty"`
	Sources  []docModel.Source `json:"sources,omitempty"`

	PDFsDir      string                 `json:"pdfs_dir,omitempty"`
	IndexSummary *docModel.IndexSummary `json:"index_summary,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
