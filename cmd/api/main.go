package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkonduri/docqa/internal/config"
	"github.com/mkonduri/docqa/internal/data/store"
	jobmodel "github.com/mkonduri/docqa/internal/domain/jobModel"
	"github.com/mkonduri/docqa/internal/handlers"
	"github.com/mkonduri/docqa/internal/job"
	"github.com/mkonduri/docqa/internal/middleware"
	"github.com/mkonduri/docqa/internal/rag"
	"github.com/mkonduri/docqa/internal/rag/embedding"
	"github.com/mkonduri/docqa/internal/rag/embedding/geminiEmbedding"
	"github.com/mkonduri/docqa/internal/rag/embedding/openaiEmbedding"
	"github.com/mkonduri/docqa/internal/rag/indexer"
	"github.com/mkonduri/docqa/internal/rag/llm"
	"github.com/mkonduri/docqa/internal/rag/llm/gemini"
	"github.com/mkonduri/docqa/internal/rag/llm/openaiLLM"
	"github.com/mkonduri/docqa/internal/rag/vectorDB/sqliteDB"
	"github.com/mkonduri/docqa/internal/server"
	"github.com/mkonduri/docqa/internal/worker"
	"github.com/mkonduri/docqa/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Bad configuration", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStoreOrFallback(serviceContext, cfg, logger),
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	vectorStore, err := sqliteDB.Open(cfg.DBPath, config.CacheSimilarityCutoff)
	if err != nil {
		logger.Error("Failed to open vector store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer vectorStore.Close()

	embeddingService, llmProvider, err := buildProviders(serviceContext, cfg)
	if err != nil {
		logger.Error("Failed to initialize model providers", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	dirIndexer := indexer.New(vectorStore, embeddingService)
	ragService := rag.NewService(vectorStore, llmProvider, embeddingService, dirIndexer)

	handlers.InitJobHandler(service)
	handlers.SetDefaultPDFsDir(cfg.PDFsDir)
	middleware.Init(cfg.AuthToken)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// jobStoreOrFallback prefers Redis so job state survives restarts, and
// degrades to the in-memory map when Redis is offline.
func jobStoreOrFallback(ctx context.Context, cfg *config.Config, logger *logger_i.Logger) jobmodel.JobStore {
	if redisStore := store.GetRedisJobStore(ctx, cfg.RedisAddr); redisStore != nil {
		return redisStore
	}
	logger.Warn("Redis job store is offline, using in-memory store")
	return store.InitInMemoryJobStore()
}

func buildProviders(ctx context.Context, cfg *config.Config) (embedding.Embedder, llm.Provider, error) {
	if cfg.Provider == "gemini" {
		embedder, err := geminiEmbedding.NewClient(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
		if err != nil {
			return nil, nil, err
		}
		provider, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.ChatModel, config.SystemPrompt)
		if err != nil {
			return nil, nil, err
		}
		return embedder, provider, nil
	}

	embedder := openaiEmbedding.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	provider := openaiLLM.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel, config.SystemPrompt)
	return embedder, provider, nil
}
