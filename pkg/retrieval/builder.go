package retrieval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// DefaultBatchSize is how many documents go into one embedding request.
const DefaultBatchSize = 16

// LoadDocuments reads every validated example file matching pattern, in file
// name order. Each file holds one YAML mapping with id, question, sql and
// tables.
func LoadDocuments(pattern string) ([]models.Example, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad documents pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)

	docs := make([]models.Example, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var ex models.Example
		if err := yaml.Unmarshal(data, &ex); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if ex.ID == "" {
			return nil, fmt.Errorf("%s: missing id", path)
		}
		if ex.Question == "" || ex.SQL == "" {
			return nil, fmt.Errorf("%s: question and sql are required", path)
		}
		docs = append(docs, ex)
	}
	return docs, nil
}

// Builder embeds examples and writes them to an index.
type Builder struct {
	embedder  llm.Embedder
	pool      *llm.WorkerPool
	batchSize int
	logger    *zap.Logger
}

// NewBuilder creates a builder. batchSize <= 0 uses DefaultBatchSize.
func NewBuilder(embedder llm.Embedder, pool *llm.WorkerPool, batchSize int, logger *zap.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Builder{
		embedder:  embedder,
		pool:      pool,
		batchSize: batchSize,
		logger:    logger.Named("retrieval.builder"),
	}
}

// Build embeds the "Q: ...\nSQL: ..." text of every document and replaces the
// content of store with them. Any failed batch fails the build before
// anything is written.
func (b *Builder) Build(ctx context.Context, store *SQLiteStore, docs []models.Example) error {
	if len(docs) == 0 {
		return fmt.Errorf("no example documents to index")
	}

	var items []llm.WorkItem[[][]float32]
	for start := 0; start < len(docs); start += b.batchSize {
		end := start + b.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, ex := range batch {
			texts[i] = ex.Text()
		}

		items = append(items, llm.WorkItem[[][]float32]{
			ID: fmt.Sprintf("batch-%d", start/b.batchSize),
			Execute: func(ctx context.Context) ([][]float32, error) {
				vectors, err := b.embedder.CreateEmbeddings(ctx, texts)
				if err != nil {
					return nil, err
				}
				if len(vectors) != len(texts) {
					return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
				}
				return vectors, nil
			},
		})
	}

	results := llm.Process(ctx, b.pool, items, func(completed, total int) {
		b.logger.Info("Embedded batch", zap.Int("completed", completed), zap.Int("total", total))
	})

	vectors := make([][]float32, 0, len(docs))
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("embed %s: %w", r.ID, r.Err)
		}
		vectors = append(vectors, r.Result...)
	}

	if err := store.Replace(ctx, docs, vectors, b.embedder.GetModel()); err != nil {
		return err
	}

	b.logger.Info("Built example index",
		zap.String("path", store.Path()),
		zap.Int("examples", len(docs)),
		zap.String("embedding_model", b.embedder.GetModel()))
	return nil
}

// BuildFile builds a fresh index from docs into a temporary file next to path
// and renames it over path once complete. A failed build leaves any existing
// index at path untouched. It returns the number of indexed examples.
func (b *Builder) BuildFile(ctx context.Context, path string, docs []models.Example) (int, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temporary index: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("create temporary index: %w", err)
	}

	count, err := b.buildInto(ctx, tmpPath, docs)
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("install index %s: %w", path, err)
	}
	return count, nil
}

func (b *Builder) buildInto(ctx context.Context, path string, docs []models.Example) (int, error) {
	store, err := CreateStore(ctx, path, b.logger)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if err := b.Build(ctx, store, docs); err != nil {
		return 0, err
	}
	count, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := store.Close(); err != nil {
		return 0, fmt.Errorf("close index: %w", err)
	}
	return count, nil
}
