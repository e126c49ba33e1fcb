// Package app assembles the question-to-SQL pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/audit"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/catalog"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/config"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/datasource"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/entities"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/insights"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retrieval"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retry"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/sqlgen"
)

// App holds the long-lived collaborators built at startup.
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Query   services.QueryService
	Health  *services.HealthService

	store    *retrieval.SQLiteStore
	executor *datasource.Executor
	logger   *zap.Logger
}

// Options tune startup for callers other than the server.
type Options struct {
	// SkipDatabase leaves the executor unset; execution then fails with
	// ErrResourceUnavailable.
	SkipDatabase bool
	// DatabaseRetry controls reconnect attempts at startup. Nil uses
	// retry.DefaultConfig.
	DatabaseRetry *retry.Config
}

// New builds the pipeline. Missing optional resources (schema file, example
// index, database) degrade the pipeline and are reported by the health
// service; only model client construction failures are fatal.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger.Named("app")}

	a.Catalog = catalog.Load(cfg.Paths.SchemaFile, logger)

	invoker, err := newInvoker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewEmbedder(ctx, cfg.EmbedderConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	var searcher retrieval.SimilaritySearcher
	var indexPinger services.Pinger
	store, indexErr := retrieval.OpenStore(ctx, cfg.Paths.IndexPath, logger)
	if indexErr != nil {
		a.logger.Warn("Example index unavailable; generation will fail until it is built",
			zap.String("path", cfg.Paths.IndexPath),
			zap.String("error", logging.SanitizeError(indexErr)))
	} else {
		a.store = store
		searcher = store
		indexPinger = store
		a.checkEmbeddingModel(ctx, store, embedder.GetModel())
	}

	var executor services.QueryExecutor
	var dbPinger services.Pinger
	if !opts.SkipDatabase {
		exec, err := a.openDatabase(ctx, opts.DatabaseRetry)
		if err != nil {
			a.logger.Warn("Database unavailable; execution endpoints disabled",
				zap.String("error", logging.SanitizeError(err)))
		} else {
			a.executor = exec
			executor = exec
			dbPinger = exec
		}
	}

	a.Query = services.NewQueryService(services.QueryServiceDeps{
		Catalog:   a.Catalog,
		Extractor: entities.NewExtractor(invoker, cfg.LLM.ExtractionModel, logger),
		Retriever: retrieval.NewRetriever(embedder, searcher, cfg.Retrieval.FetchK, logger),
		Router:    sqlgen.NewRouter(cfg.LLM.DefaultModel, cfg.LLM.ReasoningModel),
		Generator: sqlgen.NewGenerator(invoker, logger),
		Insights:  insights.NewGenerator(invoker, cfg.LLM.InsightModel, logger),
		Executor:  executor,
		Auditor:   audit.NewSecurityAuditor(logger),
		TopK:      cfg.Retrieval.TopK,
	}, logger)

	a.Health = services.NewHealthService(a.Catalog, indexPinger, indexErr, dbPinger)

	return a, nil
}

// newInvoker creates the provider client, wrapped with retry and circuit
// breaking when enabled, and with invocation metrics.
func newInvoker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Invoker, error) {
	invoker, err := llm.NewInvoker(ctx, cfg.InvokerConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create %s invoker: %w", cfg.LLM.Provider, err)
	}
	if cfg.LLM.RetryEnabled() {
		breaker := llm.NewCircuitBreaker(cfg.LLM.BreakerConfig())
		invoker = llm.NewResilientInvoker(invoker, cfg.LLM.RetryPolicy(), breaker, logger)
	}
	return services.NewMeteredInvoker(invoker), nil
}

func (a *App) openDatabase(ctx context.Context, policy *retry.Config) (*datasource.Executor, error) {
	if policy == nil {
		policy = retry.DefaultConfig()
	}
	dsCfg := a.Config.Database.DatasourceConfig()
	return retry.DoIfRetryableWithResult(ctx, policy, func() (*datasource.Executor, error) {
		return datasource.Open(ctx, dsCfg, a.logger)
	})
}

// checkEmbeddingModel warns when the index was built with a different
// embedding model than the one configured for queries.
func (a *App) checkEmbeddingModel(ctx context.Context, store *retrieval.SQLiteStore, model string) {
	indexed, err := store.EmbeddingModel(ctx)
	if err != nil {
		a.logger.Warn("Could not read index embedding model", zap.Error(err))
		return
	}
	if indexed != "" && indexed != model {
		a.logger.Warn("Example index was built with a different embedding model",
			zap.String("index_model", indexed),
			zap.String("configured_model", model))
	}
}

// Close releases the example index and database connections.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.executor != nil {
		errs = append(errs, a.executor.Close())
	}
	return errors.Join(errs...)
}
