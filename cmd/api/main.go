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

	"github.com/Talin12/DataSage/internal/api"
	"github.com/Talin12/DataSage/internal/config"
	"github.com/Talin12/DataSage/internal/diag"
	"github.com/Talin12/DataSage/internal/llm"
	"github.com/Talin12/DataSage/internal/query"
	"github.com/Talin12/DataSage/internal/render"
	"github.com/Talin12/DataSage/internal/store"
	minioclient "github.com/Talin12/DataSage/internal/store/minio"
	"github.com/Talin12/DataSage/internal/store/postgres"
	vk "github.com/Talin12/DataSage/internal/store/valkey"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps := &api.RouterDeps{}
	sinks := []render.Sink{diag.NewLogSink(logger)}
	var engineOpts []query.Option

	// MinIO (optional, enables render snapshots)
	mc, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Warn("minio connection failed, snapshots disabled", slog.String("error", err.Error()))
	} else if err := mc.EnsureBucket(ctx); err != nil {
		logger.Warn("minio bucket unavailable, snapshots disabled", slog.String("error", err.Error()))
	} else {
		deps.MinIO = mc
		logger.Info("connected to minio", slog.String("bucket", mc.Bucket()))
	}

	// Valkey (optional, enables the envelope cache and the diagnostics stream)
	vkClient, err := vk.NewClient(ctx, cfg.Valkey)
	if err != nil {
		logger.Warn("valkey connection failed, cache and diagnostics stream disabled", slog.String("error", err.Error()))
	} else {
		defer vkClient.Close()
		stream := diag.NewStreamSink(vkClient, cfg.Valkey.DiagnosticsStream, cfg.Valkey.DiagnosticsMaxLen, logger)
		sinks = append(sinks, stream)
		deps.Diagnostics = stream
		if cfg.Valkey.CacheTTL > 0 {
			engineOpts = append(engineOpts, query.WithCache(query.NewValkeyCache(vkClient, cfg.Valkey.CacheTTL, logger)))
		}
		logger.Info("connected to valkey")
	}

	deps.Pipeline = render.New(render.WithSink(diag.Multi(sinks...)))

	// Planner (auto-selects: OpenAI-compatible endpoint > Bedrock > disabled)
	completer, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		logger.Warn("llm init failed, ask disabled", slog.String("error", err.Error()))
	} else if completer == nil {
		logger.Warn("no llm configured, ask disabled")
	} else {
		deps.Engine = query.NewEngine(s, query.NewLLMPlanner(completer), logger, cfg.Query, engineOpts...)
		logger.Info("query engine enabled", slog.String("provider", fmt.Sprintf("%T", completer)), slog.String("model", completer.Model()))
	}

	router := api.NewRouter(logger, s, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
