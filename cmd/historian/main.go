// cmd/historian/main.go drains room events from the Redis queue into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/park/internal/cache"
	"github.com/jason-s-yu/park/internal/config"
	"github.com/jason-s-yu/park/internal/database"
	"github.com/jason-s-yu/park/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.Redis.Addr == "" {
		logger.Fatal("REDIS_ADDR is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.ConnectDB(ctx, cfg.Postgres.ConnString())
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	hs := historian.New(rdb, database.NewEventSink(pool), historian.Options{
		Queue:      cfg.Redis.Queue,
		BatchSize:  cfg.Historian.BatchSize,
		FlushDelay: cfg.Historian.FlushDelay,
		Logger:     logger,
	})
	if err := hs.Run(ctx); err != nil {
		logger.Fatalf("historian: %v", err)
	}
	logger.Info("historian shutdown complete")
}
