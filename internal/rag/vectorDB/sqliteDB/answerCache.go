package sqliteDB

import (
	"context"
	"encoding/json"

	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/rag/vectorDB"
)

// GetCachedAnswer scans the answer cache for the closest stored query
// embedding. A hit requires similarity at or above the cache cutoff and
// returns the answer together with its stored source citations.
func (s *DB) GetCachedAnswer(ctx context.Context, vector []float32) (docModel.Answer, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT embedding_json, answer, sources_json FROM answer_cache")
	if err != nil {
		return docModel.Answer{}, false, &vectorDB.StoreError{Op: "cache lookup", Err: err}
	}
	defer rows.Close()

	bestScore := -1.0
	bestAnswer := ""
	bestSources := "[]"
	for rows.Next() {
		var embJSON, answer, sourcesJSON string
		if err := rows.Scan(&embJSON, &answer, &sourcesJSON); err != nil {
			return docModel.Answer{}, false, &vectorDB.StoreError{Op: "cache lookup", Err: err}
		}

		var cached []float32
		if err := json.Unmarshal([]byte(embJSON), &cached); err != nil {
			return docModel.Answer{}, false, &vectorDB.StoreError{Op: "cache lookup", Err: err}
		}
		// Entries from an older embedding model are dead weight, not hits.
		if len(cached) != len(vector) {
			continue
		}

		if score := cosineSimilarity(vector, cached); score > bestScore {
			bestScore = score
			bestAnswer = answer
			bestSources = sourcesJSON
		}
	}
	if err := rows.Err(); err != nil {
		return docModel.Answer{}, false, &vectorDB.StoreError{Op: "cache lookup", Err: err}
	}

	if bestScore < s.cacheCutoff {
		return docModel.Answer{}, false, nil
	}

	var sources []docModel.Source
	if err := json.Unmarshal([]byte(bestSources), &sources); err != nil {
		return docModel.Answer{}, false, &vectorDB.StoreError{Op: "cache lookup", Err: err}
	}
	s.logger.Debug("semantic cache hit", "score", bestScore)
	return docModel.Answer{Text: bestAnswer, Sources: sources}, true, nil
}

func (s *DB) SaveToCache(ctx context.Context, id string, vector []float32, answer docModel.Answer) error {
	embJSON, err := json.Marshal(vector)
	if err != nil {
		return &vectorDB.StoreError{Op: "cache save", Err: err}
	}
	sourcesJSON, err := json.Marshal(answer.Sources)
	if err != nil {
		return &vectorDB.StoreError{Op: "cache save", Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO answer_cache (id, embedding_json, answer, sources_json)
		VALUES (?, ?, ?, ?)
	`, id, string(embJSON), answer.Text, string(sourcesJSON))
	if err != nil {
		return &vectorDB.StoreError{Op: "cache save", Err: err}
	}
	return nil
}
