package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/adapter/gateway"
	httpadapter "github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/adapter/http"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/adapter/memory"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/adapter/postgres"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/adapter/usecase"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/db"
)

// main loads configuration, prepares storage and the model gateway,
// then serves the planning API until a termination signal arrives.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		sessions port.SessionRepository
		store    port.AdvertiserStore
	)
	if cfg.Storage == "memory" {
		logger.Info("using in-memory session storage")
		sessions = memory.NewSessionRepository()
	} else {
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
			} else {
				logger.Info("migrations applied successfully")
			}
		}

		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.Psql.Seed {
			if err = db.Seed(ctx, pool); err != nil {
				logger.Error("seed error", slog.Any("error", err))
			} else {
				logger.Info("demo advertisers seeded")
			}
		}

		sessions = postgres.NewSessionRepository(pool)
		store = postgres.NewAdvertiserStore(pool)
	}

	var backends []gateway.Backend
	if cfg.LLM.OpenAIKey != "" {
		b, err := gateway.NewOpenAIBackend(cfg.LLM)
		if err != nil {
			logger.Error("openai backend error", slog.Any("error", err))
			os.Exit(1)
		}
		backends = append(backends, b)
	} else {
		logger.Warn("no OpenAI key configured, remote backend disabled")
	}
	if b, err := gateway.NewOllamaBackend(cfg.LLM); err != nil {
		logger.Error("ollama backend error", slog.Any("error", err))
	} else {
		backends = append(backends, b)
	}

	routes, err := cfg.LLM.LoadRoutes()
	if err != nil {
		logger.Error("llm routing error", slog.Any("error", err))
		os.Exit(1)
	}

	tracker := gateway.NewTracker(logger, 256)
	defer tracker.Close()
	gw := gateway.New(routes, backends, tracker, logger)

	planner := usecase.NewPlanner(sessions, store, gw, cfg.Forecast, cfg.HistoryLimit, logger)

	handler := httpadapter.NewHandler(planner, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
