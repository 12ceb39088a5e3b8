package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/david/opportunity-scout/internal/api"
	"github.com/david/opportunity-scout/internal/db"
	"github.com/david/opportunity-scout/internal/discovery"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		logrus.Fatalf("Migration failed: %v", err)
	}

	registry, err := discovery.LoadRegistry(os.Getenv("SOURCES_FILE"))
	if err != nil {
		logrus.Fatalf("Failed to load source registry: %v", err)
	}

	store := db.NewStore(pool)
	engine, err := discovery.NewEngine(registry, nil, newDedupCache(ctx), store)
	if err != nil {
		logrus.Fatalf("Failed to build discovery engine: %v", err)
	}

	srv := api.NewServer(pool, engine)
	logrus.Infof("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		logrus.Fatal(err)
	}
}

// newDedupCache prefers Redis when REDIS_URL is set so restarts don't re-emit
// everything surfaced within the TTL window; otherwise dedup is in-process.
func newDedupCache(ctx context.Context) discovery.Cache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return discovery.NewMemoryCache(discovery.DefaultCacheTTL)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logrus.Warnf("Invalid REDIS_URL, falling back to in-memory dedup: %v", err)
		return discovery.NewMemoryCache(discovery.DefaultCacheTTL)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Warnf("Redis unreachable, falling back to in-memory dedup: %v", err)
		return discovery.NewMemoryCache(discovery.DefaultCacheTTL)
	}
	return discovery.NewRedisCache(rdb, discovery.DefaultCacheTTL)
}
