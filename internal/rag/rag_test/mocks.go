package rag_test

import (
	"context"

	"github.com/mkonduri/docqa/internal/domain/docModel"
)

type MockEmbedder struct {
	EmbedCalls     int
	OnGetEmbedding func(ctx context.Context, query string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	m.EmbedCalls++
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{1, 0, 0}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type MockVectorDB struct {
	OnGetCachedAnswer func(ctx context.Context, vector []float32) (docModel.Answer, bool, error)
	OnQuery           func(ctx context.Context, vector []float32, topK int) ([]docModel.SearchHit, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer docModel.Answer) error
}

func (m *MockVectorDB) InsertIfAbsent(ctx context.Context, record docModel.Record) (bool, error) {
	return true, nil
}

func (m *MockVectorDB) ExistingChunks(ctx context.Context, source string) (map[int]bool, error) {
	return map[int]bool{}, nil
}

func (m *MockVectorDB) Query(ctx context.Context, vector []float32, topK int) ([]docModel.SearchHit, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, vector, topK)
	}
	return []docModel.SearchHit{
		{Record: docModel.Record{Source: "paper1.pdf", ChunkID: 0, Page: 1, Text: "relevant text"}, Score: 0.9},
	}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, vector []float32) (docModel.Answer, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, vector)
	}
	return docModel.Answer{}, false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, vector []float32, answer docModel.Answer) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, vector, answer)
	}
	return nil
}

func (m *MockVectorDB) Close() error { return nil }

type MockLLM struct {
	OnGenerate func(ctx context.Context, question string, contextBlocks []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, question string, contextBlocks []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, contextBlocks)
	}
	return "generated answer", nil
}

type MockIndexer struct {
	OnRun func(ctx context.Context, pdfsDir string) (docModel.IndexSummary, error)
}

func (m *MockIndexer) Run(ctx context.Context, pdfsDir string) (docModel.IndexSummary, error) {
	if m.OnRun != nil {
		return m.OnRun(ctx, pdfsDir)
	}
	return docModel.IndexSummary{}, nil
}
