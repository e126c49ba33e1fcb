package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/app"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/config"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/handlers"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/mcp"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/middleware"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/observability"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("default_model", cfg.LLM.DefaultModel),
		zap.String("reasoning_model", cfg.LLM.ReasoningModel),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("schema_file", cfg.Paths.SchemaFile),
		zap.String("index_path", cfg.Paths.IndexPath),
		zap.String("database", fmt.Sprintf("%s://%s:%d/%s", cfg.Database.Type, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)))

	pipeline, err := app.New(ctx, cfg, app.Options{}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("Failed to close resources", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()

	handlers.NewHealthHandler(pipeline.Health, cfg.Version, cfg.Env, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(pipeline.Query, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", observability.Handler())

	mcpServer := mcp.NewServer(mcp.ServerName, cfg.Version, logger)
	mcpServer.RegisterPipelineTools(pipeline.Query, pipeline.Health, cfg.Version)
	mcpServer.RegisterRoutes(mux)

	server := &http.Server{
		Addr: net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler: middleware.Chain(mux,
			observability.MetricsMiddleware,
			middleware.RequestID,
			middleware.RequestLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting ekaya-nl2sql",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err, ok := <-errCh; ok && err != nil {
		return err
	}
	return nil
}
