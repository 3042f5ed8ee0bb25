package redisStore

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkonduri/docqa/pkg/logger_i"
)

var (
	instance *Store
	mu       sync.Mutex
	logger   *logger_i.Logger
)

type Store struct {
	client *redis.Client
}

// GetRedisStore connects to Redis once and reuses the client. Returns nil
// when Redis is unreachable so the caller can fall back to an in-memory
// store.
func GetRedisStore(ctx context.Context, addr string, db int) *Store {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}
	if logger == nil {
		logger = logger_i.NewLogger("Redis Store")
	}

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "addr", addr, "error", err)
		return nil
	}

	logger.Info("Redis store initialized", "addr", addr)
	instance = &Store{client: client}
	go closeOnDone(ctx, instance)
	return instance
}

func closeOnDone(ctx context.Context, store *Store) {
	<-ctx.Done()
	logger.Info("Closing Redis store")
	if err := store.client.Close(); err != nil {
		logger.Error("Error closing redis client", "error", err)
	}
}

// NewTestStore wraps an injected client; used from _test files only.
func NewTestStore(client *redis.Client) *Store {
	return &Store{client: client}
}
