package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	TRACE_ID_KEY = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// A cached answer is only reused when the query embedding is at least
	// this similar to the cached one.
	CacheSimilarityCutoff = 0.97

	// Chunking: sizes are characters, overlap strictly smaller than size.
	ChunkSize    = 2000
	ChunkOverlap = 200

	// Chunks per embedding API call.
	EmbedBatchSize = 64

	DefaultTopK = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	// A single page that refuses to parse must not hang the whole run.
	PageExtractTimeout = 10 * time.Second

	QueryJobTimeout = 60 * time.Second
	IndexJobTimeout = 30 * time.Minute

	RedisJobStoreDB  = 0
	RedisJobStoreTTL = 24 * time.Hour

	SystemPrompt = "You are a helpful AI assistant specialized in science, math, and technology. " +
		"Use ONLY the provided context to answer the user's question. If the answer is not in the context, " +
		"say that you don't know. Always cite sources at the end using their source_name and chunk index."
)

// Config carries everything read from the environment. It is built once in
// main and handed to constructors, so components stay testable with fakes.
type Config struct {
	Provider string // "openai" or "gemini"

	OpenAIAPIKey  string
	OpenAIBaseURL string

	GeminiAPIKey string

	EmbeddingModel     string
	EmbeddingDimension int
	ChatModel          string

	DBPath  string
	PDFsDir string

	RedisAddr string
	AuthToken string

	ListenAddr string
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider:           envOr("MODEL_PROVIDER", "openai"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		EmbeddingModel:     "",
		EmbeddingDimension: 1536,
		ChatModel:          "",
		DBPath:             envOr("RAG_DB_PATH", "db/rag.sqlite"),
		PDFsDir:            envOr("PDFS_DIR", "data/pdfs"),
		RedisAddr:          envOr("REDIS_ADDR", "127.0.0.1:6379"),
		AuthToken:          os.Getenv("AUTH_TOKEN"),
		ListenAddr:         envOr("LISTEN_ADDR", ServerListenAddr),
	}

	switch cfg.Provider {
	case "openai":
		cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", "text-embedding-3-small")
		cfg.ChatModel = envOr("CHAT_MODEL", "gpt-4o-mini")
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set. Set it in your environment or .env file")
		}
	case "gemini":
		cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", "gemini-embedding-001")
		cfg.ChatModel = envOr("CHAT_MODEL", "gemini-2.5-flash-lite-preview-09-2025")
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is not set. Set it in your environment or .env file")
		}
	default:
		return nil, errors.New("MODEL_PROVIDER must be openai or gemini")
	}

	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		dim, err := strconv.Atoi(v)
		if err != nil || dim <= 0 {
			return nil, errors.New("EMBEDDING_DIMENSION must be a positive integer")
		}
		cfg.EmbeddingDimension = dim
	}

	return cfg, nil
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
