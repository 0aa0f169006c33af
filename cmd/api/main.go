package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/areaselect/internal/adapters/http"
	"github.com/samirrijal/areaselect/internal/adapters/memory"
	natsadapter "github.com/samirrijal/areaselect/internal/adapters/nats"
	"github.com/samirrijal/areaselect/internal/adapters/postgres"
	"github.com/samirrijal/areaselect/internal/adapters/valkey"
	"github.com/samirrijal/areaselect/internal/core/ports"
	"github.com/samirrijal/areaselect/internal/core/usecases"
	"github.com/samirrijal/areaselect/internal/pkg/config"
	"github.com/samirrijal/areaselect/internal/pkg/logging"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
	"github.com/samirrijal/areaselect/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("areaselect-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Session store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	defer closeStore()

	// NATS: analysis hand-off and session relay. Without it analyses are
	// accepted but not queued.
	var (
		events   ports.EventPublisher
		natsConn *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
			natsConn = pub.Conn()
		}
	}

	sessions := usecases.NewSessionService(store, events)

	deps := &http.Dependencies{
		Sessions: sessions,
		Store:    store,
		NATS:     natsConn,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "areaselect API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Location, X-Request-Id",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "session_store", cfg.Session.Store)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// openStore builds the configured session store and starts its expiry
// housekeeping. The returned func releases the backend.
func openStore(ctx context.Context, cfg *config.Config) (ports.SessionRepository, func(), error) {
	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second

	switch cfg.Session.Store {
	case config.StoreValkey:
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			return nil, nil, err
		}
		return valkey.NewSessionRepo(cache, cfg.Session.TTLSeconds), cache.Close, nil

	case config.StorePostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSessionRepo(db, ttl)
		go purgeExpired(ctx, db, repo)
		return repo, db.Close, nil
	}

	repo := memory.NewSessionRepo(ttl)
	go repo.RunSweeper(ctx, time.Minute)
	return repo, func() {}, nil
}

func purgeExpired(ctx context.Context, db *postgres.DB, repo *postgres.SessionRepo) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("purge expired sessions failed", "error", err)
			} else if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}
