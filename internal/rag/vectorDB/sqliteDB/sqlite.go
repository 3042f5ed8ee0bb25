package sqliteDB

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mkonduri/docqa/internal/domain/docModel"
	"github.com/mkonduri/docqa/internal/rag/vectorDB"
	"github.com/mkonduri/docqa/internal/rag/vectorDB/sqliteDB/migrations"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

// DB is the SQLite-backed vector store. Embeddings are stored as JSON float
// arrays in an ordinary relational table and similarity search is a full
// linear scan, which is plenty for a personal document collection.
type DB struct {
	db     *sql.DB
	path   string
	logger *logger_i.Logger

	cacheCutoff float64

	// Embedding dimension is fixed for the lifetime of the store; the
	// first stored vector establishes it.
	mu  sync.Mutex
	dim int
}

type rowMeta struct {
	Images []docModel.ImageRef `json:"images,omitempty"`
}

// Open opens (creating if absent) the store at dbPath and applies pending
// schema migrations. cacheCutoff is the minimum similarity for a semantic
// cache hit.
func Open(dbPath string, cacheCutoff float64) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, &vectorDB.StoreError{Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &vectorDB.StoreError{Op: "open", Err: err}
	}

	s := &DB{
		db:          db,
		path:        dbPath,
		logger:      logger_i.NewLogger("SQLiteStore"),
		cacheCutoff: cacheCutoff,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, &vectorDB.StoreError{Op: "migrate", Err: err}
	}

	if err := s.loadDimension(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *DB) Path() string {
	return s.path
}

func (s *DB) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *DB) loadDimension() error {
	var embJSON string
	err := s.db.QueryRow("SELECT embedding_json FROM documents ORDER BY id LIMIT 1").Scan(&embJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return &vectorDB.StoreError{Op: "load dimension", Err: err}
	}

	var vec []float32
	if err := json.Unmarshal([]byte(embJSON), &vec); err != nil {
		return &vectorDB.StoreError{Op: "load dimension", Err: err}
	}

	s.mu.Lock()
	s.dim = len(vec)
	s.mu.Unlock()
	return nil
}

func (s *DB) checkDimension(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return vectorDB.ErrDimensionMismatch
	}
	if s.dim != 0 && s.dim != n {
		return fmt.Errorf("store holds %d-dim vectors, got %d: %w", s.dim, n, vectorDB.ErrDimensionMismatch)
	}
	return nil
}

func (s *DB) setDimension(n int) {
	s.mu.Lock()
	if s.dim == 0 {
		s.dim = n
	}
	s.mu.Unlock()
}

func (s *DB) InsertIfAbsent(ctx context.Context, record docModel.Record) (bool, error) {
	if err := s.checkDimension(len(record.Embedding)); err != nil {
		return false, err
	}

	embJSON, err := json.Marshal(record.Embedding)
	if err != nil {
		return false, &vectorDB.StoreError{Op: "insert", Err: err}
	}
	metaJSON, err := json.Marshal(rowMeta{Images: record.Images})
	if err != nil {
		return false, &vectorDB.StoreError{Op: "insert", Err: err}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO documents (doc_id, chunk_id, page, text, meta_json, embedding_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.Source, record.ChunkID, record.Page, record.Text, string(metaJSON), string(embJSON))
	if err != nil {
		return false, &vectorDB.StoreError{Op: "insert", Err: err}
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, &vectorDB.StoreError{Op: "insert", Err: err}
	}
	if inserted == 1 {
		s.setDimension(len(record.Embedding))
	}
	return inserted == 1, nil
}

func (s *DB) ExistingChunks(ctx context.Context, source string) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT chunk_id FROM documents WHERE doc_id = ?", source)
	if err != nil {
		return nil, &vectorDB.StoreError{Op: "existing chunks", Err: err}
	}
	defer rows.Close()

	existing := make(map[int]bool)
	for rows.Next() {
		var chunkID int
		if err := rows.Scan(&chunkID); err != nil {
			return nil, &vectorDB.StoreError{Op: "existing chunks", Err: err}
		}
		existing[chunkID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &vectorDB.StoreError{Op: "existing chunks", Err: err}
	}
	return existing, nil
}

func (s *DB) Query(ctx context.Context, vector []float32, topK int) ([]docModel.SearchHit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}
	if err := s.checkDimension(len(vector)); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, chunk_id, page, text, meta_json, embedding_json
		FROM documents ORDER BY id
	`)
	if err != nil {
		return nil, &vectorDB.StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	var hits []docModel.SearchHit
	for rows.Next() {
		var rec docModel.Record
		var metaJSON, embJSON string
		if err := rows.Scan(&rec.Source, &rec.ChunkID, &rec.Page, &rec.Text, &metaJSON, &embJSON); err != nil {
			return nil, &vectorDB.StoreError{Op: "query", Err: err}
		}

		var meta rowMeta
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, &vectorDB.StoreError{Op: "query", Err: err}
		}
		rec.Images = meta.Images

		if err := json.Unmarshal([]byte(embJSON), &rec.Embedding); err != nil {
			return nil, &vectorDB.StoreError{Op: "query", Err: err}
		}

		hits = append(hits, docModel.SearchHit{
			Record: rec,
			Score:  cosineSimilarity(vector, rec.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &vectorDB.StoreError{Op: "query", Err: err}
	}

	// Stable sort keeps ties in insertion order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-12)
}
