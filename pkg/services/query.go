package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/audit"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/catalog"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/insights"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/intent"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/observability"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/prompts"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retrieval"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/sqlgen"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/sqlguard"
)

// DefaultTopK is the number of examples injected into a generation prompt.
const DefaultTopK = 3

// QueryService orchestrates question-to-SQL generation, execution and
// insight generation.
type QueryService interface {
	// GenerateSQL runs the full pipeline for one question.
	GenerateSQL(ctx context.Context, question string) (*models.GenerationResult, error)

	// ExecuteSQL runs a SELECT statement against the configured database.
	ExecuteSQL(ctx context.Context, sqlQuery string) (*models.QueryResult, error)

	// GenerateInsights executes sqlQuery and narrates its result for question.
	GenerateInsights(ctx context.Context, sqlQuery, question string) ([]models.Insight, error)
}

// EntityExtractor produces an entity skeleton for a normalized question.
type EntityExtractor interface {
	Extract(ctx context.Context, normalized string, intent models.Intent, schemaSummary string) (*models.EntitySkeleton, error)
}

// ExampleRetriever returns worked examples relevant to a question.
type ExampleRetriever interface {
	Retrieve(ctx context.Context, question string, tables []string, k int) ([]models.Example, error)
}

// SQLGenerator turns an assembled prompt into normalized SQL.
type SQLGenerator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// InsightGenerator narrates a result set.
type InsightGenerator interface {
	Summarize(ctx context.Context, question string, columns []string, rows [][]any) (string, insights.Template, error)
}

// QueryExecutor runs a statement and returns its rows.
type QueryExecutor interface {
	Query(ctx context.Context, sqlQuery string) (*models.QueryResult, error)
}

// QueryServiceDeps holds the collaborators of the query service. Executor
// may be nil, in which case execution fails with ErrResourceUnavailable.
type QueryServiceDeps struct {
	Catalog   *catalog.Catalog
	Extractor EntityExtractor
	Retriever ExampleRetriever
	Router    sqlgen.Router
	Generator SQLGenerator
	Insights  InsightGenerator
	Executor  QueryExecutor
	Auditor   *audit.SecurityAuditor
	TopK      int
}

type queryService struct {
	catalog   *catalog.Catalog
	extractor EntityExtractor
	retriever ExampleRetriever
	router    sqlgen.Router
	generator SQLGenerator
	insights  InsightGenerator
	executor  QueryExecutor
	auditor   *audit.SecurityAuditor
	topK      int
	logger    *zap.Logger
}

var _ QueryService = (*queryService)(nil)

// NewQueryService creates a new query service with dependencies.
func NewQueryService(deps QueryServiceDeps, logger *zap.Logger) QueryService {
	topK := deps.TopK
	if topK < 1 {
		topK = DefaultTopK
	}
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.New("")
	}
	return &queryService{
		catalog:   cat,
		extractor: deps.Extractor,
		retriever: deps.Retriever,
		router:    deps.Router,
		generator: deps.Generator,
		insights:  deps.Insights,
		executor:  deps.Executor,
		auditor:   deps.Auditor,
		topK:      topK,
		logger:    logger.Named("query"),
	}
}

// GenerateSQL classifies the question, extracts entities against the full
// schema text, rejects skeletons without tables, then retrieves examples and
// generates SQL with the routed model.
func (s *queryService) GenerateSQL(ctx context.Context, question string) (*models.GenerationResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}

	start := time.Now()
	normalized := intent.Normalize(question)
	classified := intent.Classify(normalized)
	observability.ObserveStage(observability.StageClassify, time.Since(start))
	observability.IncrementIntent(classified.String())

	stageStart := time.Now()
	skeleton, err := s.extractor.Extract(ctx, normalized, classified, s.catalog.Text())
	observability.ObserveStage(observability.StageExtract, time.Since(stageStart))
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}
	if !skeleton.HasTables() {
		return nil, apperrors.NoTablesError(question)
	}
	if unknown := s.catalog.UnknownTables(skeleton.Tables); len(unknown) > 0 && !s.catalog.Unavailable() {
		s.logger.Warn("Extracted tables not in schema",
			zap.Any("unknown", unknown))
	}

	subset := s.catalog.Subset(skeleton.Tables)

	stageStart = time.Now()
	examples, err := s.retriever.Retrieve(ctx, question, skeleton.Tables, s.topK)
	observability.ObserveStage(observability.StageRetrieve, time.Since(stageStart))
	if err != nil {
		return nil, fmt.Errorf("retrieve examples: %w", err)
	}
	observability.ObserveRetrievedExamples(len(examples))

	model := s.router.Route(len(skeleton.Tables))
	prompt := prompts.BuildGenerationPrompt(prompts.GenerationInput{
		Model:        model,
		Entities:     *skeleton,
		SchemaSubset: subset,
		Examples:     retrieval.RenderExamples(examples),
		Question:     question,
	})

	stageStart = time.Now()
	sql, err := s.generator.Generate(ctx, prompt, model)
	observability.ObserveStage(observability.StageGenerate, time.Since(stageStart))
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}
	observability.IncrementGeneratedSQL(model)

	s.logger.Info("Generated SQL for question",
		zap.String("intent", classified.String()),
		zap.Strings("tables", skeleton.Tables),
		zap.Int("examples", len(examples)),
		zap.String("model", model),
		zap.String("sql", logging.SanitizeQuery(sql)),
		zap.Duration("elapsed", time.Since(start)))

	return &models.GenerationResult{
		Question:   question,
		Normalized: normalized,
		Intent:     classified,
		Entities:   skeleton,
		Model:      model,
		Prompt:     prompt,
		SQL:        sql,
	}, nil
}

// ExecuteSQL cleans the statement for execution and runs it if it passes the
// SELECT-prefix check.
func (s *queryService) ExecuteSQL(ctx context.Context, sqlQuery string) (*models.QueryResult, error) {
	cleaned, err := s.prepare(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, cleaned)
}

// GenerateInsights re-executes sqlQuery and narrates its rows. Bullet lines of
// the narrative become separate entries.
func (s *queryService) GenerateInsights(ctx context.Context, sqlQuery, question string) ([]models.Insight, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}
	cleaned, err := s.prepare(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}

	result, err := s.execute(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, template, err := s.insights.Summarize(ctx, question, result.Columns, result.Rows)
	observability.ObserveStage(observability.StageInsight, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}
	observability.IncrementInsightTemplate(template.String())

	parsed := insights.ParseInsights(raw)
	s.logger.Info("Generated insights",
		zap.String("template", template.String()),
		zap.Int("rows", result.RowCount()),
		zap.Int("insights", len(parsed)))

	return parsed, nil
}

func (s *queryService) prepare(ctx context.Context, sqlQuery string) (string, error) {
	if strings.TrimSpace(sqlQuery) == "" {
		return "", apperrors.ErrEmptySQL
	}
	cleaned := sqlguard.CleanForExecution(sqlQuery)
	if !sqlguard.IsSelect(cleaned) {
		s.auditor.LogRejectedStatement(ctx, cleaned, apperrors.ErrOnlySelectAllowed.Error())
		return "", apperrors.ErrOnlySelectAllowed
	}
	return cleaned, nil
}

func (s *queryService) execute(ctx context.Context, sqlQuery string) (*models.QueryResult, error) {
	if s.executor == nil {
		return nil, fmt.Errorf("query executor: %w", apperrors.ErrResourceUnavailable)
	}

	start := time.Now()
	result, err := s.executor.Query(ctx, sqlQuery)
	elapsed := time.Since(start)
	observability.ObserveStage(observability.StageExecute, elapsed)
	if err != nil {
		s.logger.Error("Query execution failed",
			zap.String("sql", logging.SanitizeQuery(sqlQuery)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	s.auditor.LogQueryExecution(ctx, sqlQuery, result.RowCount(), elapsed)
	return result, nil
}
