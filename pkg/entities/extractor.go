// Package entities turns a question into a structured entity skeleton with
// one model call.
package entities

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/prompts"
)

// DefaultModel is the extraction model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Extractor produces entity skeletons.
type Extractor struct {
	invoker llm.Invoker
	model   string
	logger  *zap.Logger
}

// NewExtractor creates an extractor calling model through invoker.
func NewExtractor(invoker llm.Invoker, model string, logger *zap.Logger) *Extractor {
	if model == "" {
		model = DefaultModel
	}
	return &Extractor{
		invoker: invoker,
		model:   model,
		logger:  logger.Named("entities"),
	}
}

// Extract asks the model for the skeleton of normalized. Invocation errors are
// returned unchanged; an undecodable response is a *apperrors.MalformedOutputError.
func (e *Extractor) Extract(ctx context.Context, normalized string, intent models.Intent, schemaSummary string) (*models.EntitySkeleton, error) {
	start := time.Now()

	raw, err := e.invoker.Invoke(ctx, llm.PromptSpec{
		Model:       e.model,
		System:      prompts.ExtractionSystemMessage,
		Prompt:      prompts.BuildExtractionPrompt(normalized, intent, schemaSummary),
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	skeleton, err := DecodeSkeleton(llm.CleanJSONResponse(raw))
	if err != nil {
		e.logger.Warn("Could not decode extraction response",
			zap.String("model", e.model),
			zap.Int("response_len", len(raw)),
			zap.Error(err))
		return nil, &apperrors.MalformedOutputError{Raw: raw, Cause: err}
	}

	e.logger.Debug("Extracted entities",
		zap.Strings("tables", skeleton.Tables),
		zap.Strings("columns", skeleton.Columns),
		zap.Int("filters", len(skeleton.Filters)),
		zap.Duration("elapsed", time.Since(start)))

	return skeleton, nil
}
