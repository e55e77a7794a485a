// cmd/tools/db-admin/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"support-chatbot/internal/admin"
	"support-chatbot/internal/common/config"
	"support-chatbot/internal/common/database"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/search"
	"support-chatbot/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cmd := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	configPath := cmd.String("config", "", "Path to a config file (default: configs/config.yaml lookup)")
	timeout := cmd.Duration("timeout", 30*time.Second, "Overall operation timeout")
	verbose := cmd.Bool("v", false, "Log at debug level")
	serverAddr := cmd.String("server", "", "Chatbot server base URL (default: derived from server.address)")

	switch os.Args[1] {
	case "clear", "seed", "reset", "status", "sync-index":
		cmd.Parse(os.Args[2:])
	default:
		help()
		os.Exit(1)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.NewStructured(level, "console")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if viaServer(cfg, os.Args[1]) {
		base := *serverAddr
		if base == "" {
			base = serverURL(cfg.Server.Address)
		}
		raw, err := newRemoteAdmin(base, cfg.Admin.Token, *timeout).run(ctx, os.Args[1])
		if err != nil {
			fmt.Printf("Error running %s via %s: %v\n", os.Args[1], base, err)
			os.Exit(1)
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			fmt.Println(string(raw))
			return
		}
		fmt.Println(out.String())
		return
	}

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		fmt.Printf("Error connecting: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	result, err := run(ctx, svc, os.Args[1])
	if err != nil {
		fmt.Printf("Error running %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

// viaServer reports whether command must go through the running server. With the memory
// pattern backend the server's cache lives in its own process and only it can invalidate it.
func viaServer(cfg *config.Config, command string) bool {
	if command == "sync-index" {
		return false
	}
	return cfg.Chat.PatternCacheBackend != config.CacheBackendRedis
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// buildService wires the admin service like the server does, including the Redis pattern store and the search index.
// Catalog commands only take this path with the redis backend.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*admin.Service, func(), error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { pg.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := pg.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx, pg.DB); err != nil {
		cleanup()
		return nil, nil, err
	}

	var patternStore intent.PatternStore = intent.NewMemoryPatternStore()
	if cfg.Chat.PatternCacheBackend == config.CacheBackendRedis {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		patternStore = intent.NewRedisPatternStore(rdb.Client, "")
	}

	var matcher store.ProductMatcher
	var indexer admin.ProductIndexer
	if cfg.Search.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		index := search.NewProductIndex(es.Client, cfg.Search.Index, log)
		matcher = index
		indexer = index
	}

	catalog := store.NewCatalogStore(pg.DB, matcher, log)
	patterns := intent.NewPatternCache(catalog, patternStore, config.GetDuration(cfg.Chat.PatternCacheTTL), log)
	return admin.NewService(store.NewAdminStore(pg.DB), patterns, catalog, indexer, log), cleanup, nil
}

func run(ctx context.Context, svc *admin.Service, command string) (interface{}, error) {
	switch command {
	case "clear":
		return svc.Clear(ctx)
	case "seed":
		return svc.Seed(ctx)
	case "reset":
		return svc.Reset(ctx)
	case "status":
		return svc.Status(ctx)
	case "sync-index":
		if err := svc.SyncIndex(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"message": "Product index synced"}, nil
	}
	return nil, fmt.Errorf("unknown command %q", command)
}

func help() {
	fmt.Println(`Usage: db-admin <command> [flags]

Commands:
  clear        Delete all messages, orders, products and warranties
  seed         Insert the demo catalog unless orders already exist
  reset        Clear and reseed in one transaction
  status       Print table counts and pattern cache state
  sync-index   Rebuild the Elasticsearch product index from the catalog

With chat.pattern_cache_backend=memory, clear/seed/reset/status are sent to the
running server's /database endpoints so its pattern cache is invalidated. With
redis they run directly against the database and the shared cache key.

Flags:
  -config string     Path to a config file
  -server string     Chatbot server base URL (default from server.address)
  -timeout duration  Overall operation timeout (default 30s)
  -v                 Log at debug level`)
}
