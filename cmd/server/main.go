// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/park/internal/auth"
	"github.com/jason-s-yu/park/internal/cache"
	"github.com/jason-s-yu/park/internal/config"
	"github.com/jason-s-yu/park/internal/database"
	"github.com/jason-s-yu/park/internal/expiry"
	"github.com/jason-s-yu/park/internal/handlers"
	"github.com/jason-s-yu/park/internal/session"
	"github.com/jason-s-yu/park/internal/store"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, history, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer st.Close()

	sessions, err := openSessions(cfg)
	if err != nil {
		logger.Fatalf("sessions: %v", err)
	}

	if cfg.SetupAuthority == nil {
		logger.Warn("PARK_SETUP_AUTHORITY not set; registry initialization is disabled")
	}

	hub := handlers.NewRoomHub()
	notifiers := session.Notifiers{hub}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		notifiers = append(notifiers, cache.NewEventQueue(rdb, cfg.Redis.Queue))
		logger.Infof("publishing room events to redis list %s", cfg.Redis.Queue)
	}

	svc := session.NewService(st, session.Options{
		ProgramID:      cfg.ProgramID,
		SetupAuthority: cfg.SetupAuthority,
		Notifier:       notifiers,
		Logger:         logger,
	})

	go expiry.NewSweeper(svc, cfg.SweepInterval, logger).Run(ctx)

	api := handlers.NewAPIServer(svc, sessions, hub, logger, cfg.DevLedger)
	if history != nil {
		api.History = history
	}
	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: api.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":       cfg.Address(),
		"storage":    cfg.Storage,
		"program_id": cfg.ProgramID,
		"dev_ledger": cfg.DevLedger,
	}).Info("park server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}

// openStore returns the configured store. With postgres it also returns the event
// archive filled by the historian.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, *database.EventSink, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; state is lost on restart")
		return store.NewMemoryStore(), nil, nil
	}
	pool, err := database.ConnectDB(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Infof("connected to database at %s:%s/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)
	return database.NewPostgresStore(pool), database.NewEventSink(pool), nil
}

func openSessions(cfg *config.Config) (*auth.Sessions, error) {
	if cfg.JWTPrivateKeyPath == "" || cfg.JWTPublicKeyPath == "" {
		return auth.NewSessions(cfg.TokenExpiry)
	}
	return auth.NewSessionsFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.TokenExpiry)
}
