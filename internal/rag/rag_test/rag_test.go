package rag_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mkonduri/docqa/internal/config"
	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/domain/jobModel"
	"github.com/mkonduri/docqa/internal/rag"
)

func TestProcessQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		question       string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedCode   int
	}{
		{
			name:     "Success_Full_Flow",
			question: "what is attention?",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, blocks []string) (string, error) {
					if len(blocks) == 0 {
						return "", errors.New("expected context blocks")
					}
					return "final answer", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedAnswer: "final answer",
		},
		{
			name:     "Success_Cache_Hit",
			question: "what is attention?",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, vec []float32) (docModel.Answer, bool, error) {
					return docModel.Answer{
						Text:    "cached answer",
						Sources: []docModel.Source{{SourceName: "paper1.pdf", ChunkIndex: 0, Page: 1, Score: 0.9}},
					}, true, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, blocks []string) (string, error) {
					t.Error("LLM must not be called on a cache hit")
					return "", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedAnswer: "cached answer",
		},
		{
			name:     "Cache_Failure_Treated_As_Miss",
			question: "what is attention?",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, vec []float32) (docModel.Answer, bool, error) {
					return docModel.Answer{}, false, errors.New("cache table locked")
				}
				l.OnGenerate = func(ctx context.Context, q string, blocks []string) (string, error) {
					return "fresh answer", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedAnswer: "fresh answer",
		},
		{
			name:     "Failure_Embedding",
			question: "what is attention?",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, q string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
		},
		{
			name:     "Failure_Vector_Search",
			question: "what is attention?",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnQuery = func(ctx context.Context, vec []float32, topK int) ([]docModel.SearchHit, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
		},
		{
			name:     "Failure_LLM_Generation",
			question: "what is attention?",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, blocks []string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
		},
		{
			name:           "Empty_Query_Rejected",
			question:       "   \n ",
			setupMocks:     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := rag.NewService(mVec, mLLM, mEmbed, &MockIndexer{})

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id: "test-job",
				JobPayload: jobModel.JobPayload{
					Question: tt.question,
				},
			}

			result := s.ProcessQuery(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}
			if tt.expectedCode != 0 && result.Error.Code != tt.expectedCode {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, tt.expectedCode)
			}
			if tt.name == "Empty_Query_Rejected" && mEmbed.EmbedCalls != 0 {
				t.Errorf("Embedder was called %d times for an empty query, want 0", mEmbed.EmbedCalls)
			}
			if tt.name == "Success_Cache_Hit" && len(result.JobPayload.Sources) == 0 {
				t.Error("Cache hit must carry the stored source citations")
			}
		})
	}
}

func TestProcessQuery_SourcesAttached(t *testing.T) {
	mVec := &MockVectorDB{
		OnQuery: func(ctx context.Context, vec []float32, topK int) ([]docModel.SearchHit, error) {
			return []docModel.SearchHit{
				{Record: docModel.Record{Source: "paper1.pdf", ChunkID: 2, Page: 3, Text: "a"}, Score: 0.91},
				{Record: docModel.Record{Source: "paper2.pdf", ChunkID: 0, Page: 1, Text: "b"}, Score: 0.84},
			}, nil
		},
	}
	s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{}, &MockIndexer{})

	job := jobModel.Job{Id: "src-job", JobPayload: jobModel.JobPayload{Question: "q", TopK: 2}}
	result := s.ProcessQuery(context.Background(), job)

	if len(result.JobPayload.Sources) != 2 {
		t.Fatalf("Got %d sources, want 2", len(result.JobPayload.Sources))
	}
	first := result.JobPayload.Sources[0]
	if first.SourceName != "paper1.pdf" || first.ChunkIndex != 2 || first.Page != 3 {
		t.Errorf("First source mismatch: %+v", first)
	}
	if result.JobPayload.Sources[0].Score < result.JobPayload.Sources[1].Score {
		t.Error("Sources must keep retrieval order")
	}
}

func TestProcessIndex_Scenarios(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ix := &MockIndexer{
			OnRun: func(ctx context.Context, pdfsDir string) (docModel.IndexSummary, error) {
				if pdfsDir != "data/pdfs" {
					t.Errorf("Run got dir %q, want data/pdfs", pdfsDir)
				}
				return docModel.IndexSummary{FilesProcessed: 2, ChunksInserted: 10}, nil
			},
		}
		s := rag.NewService(&MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, ix)

		job := jobModel.Job{Id: "idx-job", JobPayload: jobModel.JobPayload{PDFsDir: "data/pdfs"}}
		result := s.ProcessIndex(context.Background(), job)

		if result.CurrentStep != jobModel.Complete {
			t.Errorf("Step got %v, want Complete", result.CurrentStep)
		}
		if result.JobPayload.IndexSummary == nil || result.JobPayload.IndexSummary.ChunksInserted != 10 {
			t.Errorf("Summary not attached: %+v", result.JobPayload.IndexSummary)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		ix := &MockIndexer{
			OnRun: func(ctx context.Context, pdfsDir string) (docModel.IndexSummary, error) {
				return docModel.IndexSummary{FilesProcessed: 1}, errors.New("embedding batch failed")
			},
		}
		s := rag.NewService(&MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, ix)

		result := s.ProcessIndex(context.Background(), jobModel.Job{Id: "idx-fail"})

		if result.Status != jobModel.JobStatusError {
			t.Errorf("Status got %v, want Error", result.Status)
		}
		if result.JobPayload.IndexSummary == nil {
			t.Error("Partial summary must still be attached on failure")
		}
		if !result.Error.Retry {
			t.Error("Indexing failures are retryable, reruns resume")
		}
	})
}
