package retrieval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ex002.yaml"), "id: ex002\nquestion: providers in CA\nsql: SELECT * FROM providers\ntables: [providers]\n")
	writeFile(t, filepath.Join(dir, "ex001.yaml"), "id: ex001\nquestion: count claims\nsql: |\n  SELECT COUNT(*)\n  FROM claims\ntables:\n  - claims\n")
	writeFile(t, filepath.Join(dir, "notes.yaml"), "not: matched\n")

	docs, err := LoadDocuments(filepath.Join(dir, "ex*.yaml"))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "ex001", docs[0].ID)
	assert.Equal(t, "SELECT COUNT(*)\nFROM claims\n", docs[0].SQL)
	assert.Equal(t, []string{"claims"}, docs[0].Tables)
	assert.Equal(t, "ex002", docs[1].ID)
}

func TestLoadDocuments_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ex001.yaml"), "question: no id\nsql: SELECT 1\n")

	_, err := LoadDocuments(filepath.Join(dir, "ex*.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

// keywordEmbedder maps texts mentioning claims and providers onto two axes.
func keywordEmbedder() *llm.MockEmbedder {
	return &llm.MockEmbedder{
		Model: "test-embedding",
		CreateEmbeddingFunc: func(ctx context.Context, input string) ([]float32, error) {
			var v [2]float32
			if strings.Contains(input, "claims") {
				v[0] = 1
			}
			if strings.Contains(input, "providers") {
				v[1] = 1
			}
			return v[:], nil
		},
	}
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "examples.db")
	store, err := CreateStore(ctx, path, zap.NewNop())
	require.NoError(t, err)

	docs := []models.Example{
		{ID: "ex1", Question: "count claims", SQL: "SELECT COUNT(*) FROM claims", Tables: []string{"claims"}},
		{ID: "ex2", Question: "list providers", SQL: "SELECT * FROM providers", Tables: []string{"providers"}},
		{ID: "ex3", Question: "claims per providers", SQL: "SELECT 1", Tables: []string{"claims", "providers"}},
	}

	embedder := keywordEmbedder()
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())
	require.NoError(t, NewBuilder(embedder, pool, 2, zap.NewNop()).Build(ctx, store, docs))
	require.NoError(t, store.Close())

	assert.Equal(t, 2, embedder.CreateEmbeddingsCalls)

	ro, err := OpenStore(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer ro.Close()

	model, err := ro.EmbeddingModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-embedding", model)

	retriever := NewRetriever(keywordEmbedder(), ro, 0, zap.NewNop())
	got, err := retriever.Retrieve(ctx, "how many providers", []string{"providers"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ex2", "ex3"}, ids(got))
}

func TestBuilder_BuildFailsOnEmbeddingError(t *testing.T) {
	ctx := context.Background()
	store, err := CreateStore(ctx, filepath.Join(t.TempDir(), "examples.db"), zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	embedder := &llm.MockEmbedder{CreateEmbeddingFunc: func(ctx context.Context, input string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	pool := llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), zap.NewNop())

	err = NewBuilder(embedder, pool, 0, zap.NewNop()).Build(ctx, store, []models.Example{{ID: "ex1", Question: "q", SQL: "SELECT 1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuilder_BuildRequiresDocuments(t *testing.T) {
	pool := llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), zap.NewNop())
	err := NewBuilder(keywordEmbedder(), pool, 0, zap.NewNop()).Build(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestBuilder_BuildFileReplacesPreviousIndex(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "examples.db")
	pool := llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), zap.NewNop())

	ex1 := models.Example{ID: "ex1", Question: "count claims", SQL: "SELECT COUNT(*) FROM claims", Tables: []string{"claims"}}
	ex2 := models.Example{ID: "ex2", Question: "claims per providers", SQL: "SELECT 2", Tables: []string{"claims", "providers"}}

	n, err := NewBuilder(keywordEmbedder(), pool, 0, zap.NewNop()).BuildFile(ctx, path, []models.Example{ex1, ex2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rebuilt := keywordEmbedder()
	rebuilt.Model = "other-embedding"
	n, err = NewBuilder(rebuilt, pool, 0, zap.NewNop()).BuildFile(ctx, path, []models.Example{ex2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ro, err := OpenStore(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer ro.Close()

	count, err := ro.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	model, err := ro.EmbeddingModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "other-embedding", model)

	got, err := ro.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ex2", got[0].Example.ID)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestBuilder_BuildFileFailureKeepsExistingIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "examples.db")
	pool := llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), zap.NewNop())
	failing := &llm.MockEmbedder{CreateEmbeddingFunc: func(ctx context.Context, input string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	docs := []models.Example{{ID: "ex1", Question: "count claims", SQL: "SELECT 1", Tables: []string{"claims"}}}

	_, err := NewBuilder(failing, pool, 0, zap.NewNop()).BuildFile(ctx, path, docs)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed first build must not leave an index behind")

	_, err = OpenStore(ctx, path, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrResourceUnavailable)

	_, err = NewBuilder(keywordEmbedder(), pool, 0, zap.NewNop()).BuildFile(ctx, path, docs)
	require.NoError(t, err)

	_, err = NewBuilder(failing, pool, 0, zap.NewNop()).BuildFile(ctx, path, nil)
	require.Error(t, err)

	ro, err := OpenStore(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer ro.Close()
	count, err := ro.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
