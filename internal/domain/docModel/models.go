package docModel

// Chunk is the atomic unit of embedding and retrieval: a bounded span of
// text from one page of one source document. Index is a global ordinal
// within the source, continuing across pages.
type Chunk struct {
	Source string `json:"source_name"`
	Index  int    `json:"chunk_index"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// ImageRef is an optional thumbnail/full-size pair attached to a chunk's
// page by an external collaborator. It is stored and passed through as-is.
type ImageRef struct {
	Thumb string `json:"thumb"`
	Full  string `json:"full"`
}

// Record is the persisted unit, one per chunk.
type Record struct {
	Source    string     `json:"source_name"`
	ChunkID   int        `json:"chunk_index"`
	Page      int        `json:"page"`
	Text      string     `json:"text"`
	Embedding []float32  `json:"-"`
	Images    []ImageRef `json:"images,omitempty"`
}

// SearchHit pairs a record with its cosine similarity against a query.
type SearchHit struct {
	Record Record
	Score  float64
}

// Source describes one cited record in an answer, ranked by retrieval order.
type Source struct {
	SourceName string     `json:"source_name"`
	ChunkIndex int        `json:"chunk_index"`
	Score      float64    `json:"score"`
	Page       int        `json:"page"`
	Images     []ImageRef `json:"images"`
}

// Answer is the assembled response for one query.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// IndexSummary reports one indexing run.
type IndexSummary struct {
	FilesProcessed int `json:"files_processed"`
	FilesFailed    int `json:"files_failed"`
	ChunksInserted int `json:"chunks_inserted"`
	ChunksSkipped  int `json:"chunks_skipped"`
}
