package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mkonduri/docqa/internal/config"
	jobmodel "github.com/mkonduri/docqa/internal/domain/jobModel"
	"github.com/mkonduri/docqa/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	timeout := config.QueryJobTimeout
	if job.JobType == jobmodel.JobTypeIndex {
		timeout = config.IndexJobTimeout
	}
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, timeout)
	defer cancel()
	log := logger.With("traceId", job.TraceId)
	log.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeIndex {
		job.CurrentStep = jobmodel.IndexProcessing
		job = _ragService.ProcessIndex(ctx, job)
	} else {
		job.CurrentStep = jobmodel.EmbeddingAPICall
		job = _ragService.ProcessQuery(ctx, job)
	}

	job.EndTime = time.Now()
	if job.Status == jobmodel.JobStatusError {
		saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

// retireIfAboveFloor retires the calling worker unless that would shrink
// the pool below the minimum. Decrement-then-check keeps concurrent idle
// timeouts from racing past the floor.
func retireIfAboveFloor() bool {
	if remaining := atomic.AddInt64(&currentWorkerCount, -1); remaining >= minWorkerCount {
		workerWaitGroup.Done()
		logger.Info("Removed worker ", "reason", "Idle worker timeout", "workerCount", remaining)
		metrics.DecrementActiveWorkerCount()
		return true
	}
	atomic.AddInt64(&currentWorkerCount, 1)
	return false
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
