// cmd/chatbot-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"support-chatbot/internal/admin"
	"support-chatbot/internal/chat"
	"support-chatbot/internal/common/config"
	"support-chatbot/internal/common/database"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/observability"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/llm"
	"support-chatbot/internal/search"
	"support-chatbot/internal/server"
	"support-chatbot/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"service":     cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	zapLog.Info("Starting support chatbot...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()
	if err := obs.WithTracing(ctx, cfg.App, cfg.Observability); err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := store.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema creation failed", zap.Error(err))
	}

	checks := map[string]server.Pinger{"postgres": pg}

	// --- Pattern cache backend ---
	var patternStore intent.PatternStore = intent.NewMemoryPatternStore()
	if cfg.Chat.PatternCacheBackend == config.CacheBackendRedis {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		patternStore = intent.NewRedisPatternStore(rdb.Client, "")
		checks["redis"] = rdb
	}

	// --- Optional product search index ---
	var matcher store.ProductMatcher
	var indexer admin.ProductIndexer
	if cfg.Search.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		index := search.NewProductIndex(es.Client, cfg.Search.Index, log)
		matcher = index
		indexer = index
		checks["elasticsearch"] = es
	}

	conversations := store.NewConversationStore(pg.DB)
	catalog := store.NewCatalogStore(pg.DB, matcher, log)
	patterns := intent.NewPatternCache(catalog, patternStore, config.GetDuration(cfg.Chat.PatternCacheTTL), log)
	adminSvc := admin.NewService(store.NewAdminStore(pg.DB), patterns, catalog, indexer, log)

	if res, err := adminSvc.Seed(ctx); err != nil {
		zapLog.Fatal("initial seed failed", zap.Error(err))
	} else {
		zapLog.Info(res.Message, zap.Bool("seeded", res.Seeded))
	}

	gateway := llm.NewGateway(llm.LoadConfig(cfg.LLM), catalog, log)
	chatHandler := chat.NewHandler(chat.LoadConfig(cfg.Chat), chat.Dependencies{
		Turns:     conversations,
		Catalog:   catalog,
		Model:     gateway,
		Patterns:  patterns,
		Telemetry: obs,
	}, log)

	srv := server.New(cfg, server.Dependencies{
		Chat:    chatHandler,
		History: conversations,
		Catalog: catalog,
		Admin:   adminSvc,
		Checks:  checks,
	}, log)

	if err := srv.Run(ctx); err != nil {
		zapLog.Error("HTTP server stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Support chatbot stopped")
}
