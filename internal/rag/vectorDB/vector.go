package vectorDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkonduri/docqa/internal/domain/docModel"
)

// ErrDimensionMismatch is returned when a vector does not match the
// dimension the store was first populated with, e.g. after switching
// embedding models against an existing database. Never silently corrupts.
var ErrDimensionMismatch = errors.New("embedding dimension does not match store")

// StoreError wraps a database failure. Fatal to the current operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is the persistence boundary for embedding records. Insertion is
// idempotent keyed on (source name, chunk index); that key is the whole
// resumability contract.
type Store interface {
	// InsertIfAbsent persists the record unless its key already exists.
	// Reports whether a row was written.
	InsertIfAbsent(ctx context.Context, record docModel.Record) (bool, error)

	// ExistingChunks returns the set of chunk indices already stored for a
	// source, so the indexer can skip embedding them.
	ExistingChunks(ctx context.Context, source string) (map[int]bool, error)

	// Query ranks all stored records against the vector by cosine
	// similarity, descending, ties stable in insertion order. Returns at
	// most topK hits; topK must be >= 1.
	Query(ctx context.Context, vector []float32, topK int) ([]docModel.SearchHit, error)

	// GetCachedAnswer looks up a previously generated answer whose query
	// embedding is within the cache similarity cutoff. Source citations are
	// stored with the answer, so a hit carries the full response.
	GetCachedAnswer(ctx context.Context, vector []float32) (docModel.Answer, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer docModel.Answer) error

	Close() error
}
