package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mkonduri/docqa/internal/adapter"
	"github.com/mkonduri/docqa/internal/adapter/utils"
	"github.com/mkonduri/docqa/internal/api"
	"github.com/mkonduri/docqa/internal/config"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

var logRH *logger_i.Logger

// jobHandler will eventually move to its own package; this struct keeps
// the handoff between the two decoupled until then.
type newJobData struct {
	id         string
	question   string
	topK       int
	traceId    string
	isIndexJob bool
	pdfsDir    string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// QueryHandler accepts a question, queues a background answer job, and
// returns a job ID to track status.
func QueryHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Query handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateQueryRequest(requestData) {

			logRH.Warn("Bad Query Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		newJob := newJobData{
			id:       utils.GetNewUUID(),
			question: requestData.Query,
			topK:     requestData.TopK,
			traceId:  request.Context().Value(config.TRACE_ID_KEY).(string),
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler retrieves the current status of a job by its ID.
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// IndexHandler queues a background job that scans a directory of PDFs and
// indexes whatever is not in the store yet. Reruns are cheap: chunks
// already present are skipped.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		var requestData api.IndexRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Index handler reader :", err)
			}
		}(r.Body)
		// empty body is fine, the configured directory is the default
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
			logRH.Warn("Bad Index Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		pdfsDir := strings.TrimSpace(requestData.PDFsDir)
		if pdfsDir == "" {
			pdfsDir = defaultPDFsDir
		}

		newJob := newJobData{
			id:         utils.GetNewUUID(),
			traceId:    r.Context().Value(config.TRACE_ID_KEY).(string),
			isIndexJob: true,
			pdfsDir:    pdfsDir,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

var defaultPDFsDir string

// SetDefaultPDFsDir fixes the directory used when an index request does
// not name one.
func SetDefaultPDFsDir(dir string) {
	defaultPDFsDir = dir
}

func ValidateQueryRequest(queryReq api.QueryRequest) bool {
	if handlerInstance == nil {
		return false
	}
	if strings.TrimSpace(queryReq.Query) == "" {
		return false
	}
	return queryReq.TopK >= 0
}
