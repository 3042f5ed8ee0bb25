package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type AnswerResponse struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []SourceRef `json:"sources"`
}

type SourceRef struct {
	Source string     `json:"source"`
	Chunk  int        `json:"chunk"`
	Page   int        `json:"page"`
	Score  float64    `json:"score"`
	Images []ImageRef `json:"images,omitempty"`
}

type ImageRef struct {
	Thumb string `json:"thumb,omitempty"`
	Full  string `json:"full,omitempty"`
}

type IndexResult struct {
	FilesProcessed int `json:"files_processed"`
	FilesFailed    int `json:"files_failed"`
	ChunksInserted int `json:"chunks_inserted"`
	ChunksSkipped  int `json:"chunks_skipped"`
}

type Result struct {
	Status         string          `json:"status"`
	AnswerResponse *AnswerResponse `json:"answer,omitempty"`
	IndexResult    *IndexResult    `json:"index_result,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type QueryRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

type IndexRequest struct {
	PDFsDir string `json:"pdfs_dir,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
