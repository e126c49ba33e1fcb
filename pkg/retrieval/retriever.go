// Package retrieval finds validated question/SQL examples similar to a new
// question and sharing at least one of its tables.
package retrieval

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// DefaultFetchK is how many nearest candidates the similarity stage returns
// before table filtering.
const DefaultFetchK = 20

// Retriever runs the two retrieval stages. Questions are embedded on every
// call.
type Retriever struct {
	embedder llm.Embedder
	searcher SimilaritySearcher
	fetchK   int
	logger   *zap.Logger
}

// NewRetriever creates a retriever. A nil searcher makes every retrieval fail,
// which is how a missing index surfaces at serve time.
func NewRetriever(embedder llm.Embedder, searcher SimilaritySearcher, fetchK int, logger *zap.Logger) *Retriever {
	if fetchK <= 0 {
		fetchK = DefaultFetchK
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		fetchK:   fetchK,
		logger:   logger.Named("retrieval"),
	}
}

// Retrieve returns up to k examples sharing a table with tables, most similar
// first. Failures are *apperrors.RetrievalError.
func (r *Retriever) Retrieve(ctx context.Context, question string, tables []string, k int) ([]models.Example, error) {
	if r.searcher == nil {
		return nil, &apperrors.RetrievalError{Cause: apperrors.ErrResourceUnavailable}
	}
	start := time.Now()

	vector, err := r.embedder.CreateEmbedding(ctx, question)
	if err != nil {
		return nil, &apperrors.RetrievalError{Cause: err}
	}

	n := r.fetchK
	if n < k {
		n = k
	}
	candidates, err := r.searcher.Search(ctx, vector, n)
	if err != nil {
		return nil, &apperrors.RetrievalError{Cause: err}
	}

	examples := SelectByTables(candidates, tables, k)
	r.logger.Debug("Retrieved examples",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(examples)),
		zap.Strings("tables", tables),
		zap.Duration("elapsed", time.Since(start)))

	return examples, nil
}

// RenderExamples joins example texts with blank lines.
func RenderExamples(examples []models.Example) string {
	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text()
	}
	return strings.Join(texts, "\n\n")
}
