package embedding

import (
	"context"
	"fmt"
)

// Embedder turns text into fixed-dimension vectors. BatchEmbedding is
// all-or-nothing: either one vector per input in input order, or an error.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// APIError is a transport, auth or provider failure from the embedding API.
type APIError struct {
	Provider string
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s embedding call failed: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
