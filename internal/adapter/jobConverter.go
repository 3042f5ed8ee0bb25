package adapter

import (
	"fmt"
	"time"

	"github.com/mkonduri/docqa/internal/api"
	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:         string(job.Status),
		AnswerResponse: ToAnswerResponse(job.JobPayload),
		IndexResult:    ToIndexResult(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToAnswerResponse(payload jobModel.JobPayload) *api.AnswerResponse {
	if payload.Answer == "" && len(payload.Sources) == 0 {
		return nil
	}

	return &api.AnswerResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  toSourceRefs(payload.Sources),
	}
}

func ToIndexResult(payload jobModel.JobPayload) *api.IndexResult {
	if payload.IndexSummary == nil {
		return nil
	}
	return &api.IndexResult{
		FilesProcessed: payload.IndexSummary.FilesProcessed,
		FilesFailed:    payload.IndexSummary.FilesFailed,
		ChunksInserted: payload.IndexSummary.ChunksInserted,
		ChunksSkipped:  payload.IndexSummary.ChunksSkipped,
	}
}

func toSourceRefs(sources []docModel.Source) []api.SourceRef {
	refs := make([]api.SourceRef, 0, len(sources))
	for _, s := range sources {
		refs = append(refs, api.SourceRef{
			Source: s.SourceName,
			Chunk:  s.ChunkIndex,
			Page:   s.Page,
			Score:  s.Score,
			Images: toImageRefs(s.Images),
		})
	}
	return refs
}

func toImageRefs(images []docModel.ImageRef) []api.ImageRef {
	if len(images) == 0 {
		return nil
	}
	refs := make([]api.ImageRef, 0, len(images))
	for _, img := range images {
		refs = append(refs, api.ImageRef{Thumb: img.Thumb, Full: img.Full})
	}
	return refs
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
