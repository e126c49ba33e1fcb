package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

const metaEmbeddingModel = "embedding_model"

// SQLiteStore holds embedded examples in a SQLite file and ranks them by
// cosine similarity over a full scan.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	readOnly bool
	logger   *zap.Logger
}

var _ SimilaritySearcher = (*SQLiteStore)(nil)

// OpenStore opens an existing index read-only. A missing file is reported as
// apperrors.ErrResourceUnavailable.
func OpenStore(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("example index %s: %w: %v", path, apperrors.ErrResourceUnavailable, err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("open example index: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open example index: %w", err)
	}

	return &SQLiteStore{db: db, path: path, readOnly: true, logger: logger.Named("retrieval.store")}, nil
}

// CreateStore opens or creates an index for writing and migrates its schema.
// Only the offline builder writes to the index.
func CreateStore(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open example index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open example index: %w", err)
	}

	logger = logger.Named("retrieval.store")
	if err := RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the index file is still readable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the file backing the store.
func (s *SQLiteStore) Path() string {
	return s.path
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Replace swaps the whole index content for docs in one transaction. Examples
// not in docs are removed and the embedding model is recorded.
func (s *SQLiteStore) Replace(ctx context.Context, docs []models.Example, vectors [][]float32, model string) error {
	if s.readOnly {
		return fmt.Errorf("example index %s is read-only", s.path)
	}
	if len(docs) != len(vectors) {
		return fmt.Errorf("got %d examples but %d embeddings", len(docs), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM examples`); err != nil {
		return fmt.Errorf("clear examples: %w", err)
	}
	for i, ex := range docs {
		if err := upsertExample(ctx, tx, ex, vectors[i]); err != nil {
			return err
		}
	}
	if err := setMeta(ctx, tx, metaEmbeddingModel, model); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index rebuild: %w", err)
	}
	return nil
}

func upsertExample(ctx context.Context, db execer, ex models.Example, vector []float32) error {
	tables := ex.Tables
	if tables == nil {
		tables = []string{}
	}
	tablesJSON, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("marshal tables: %w", err)
	}
	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO examples (id, question, sql, tables_json, content, embedding_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			sql = excluded.sql,
			tables_json = excluded.tables_json,
			content = excluded.content,
			embedding_json = excluded.embedding_json`,
		ex.ID, ex.Question, ex.SQL, string(tablesJSON), ex.Text(), string(vectorJSON))
	if err != nil {
		return fmt.Errorf("upsert example %s: %w", ex.ID, err)
	}
	return nil
}

func setMeta(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// EmbeddingModel returns the model recorded at build time, or "".
func (s *SQLiteStore) EmbeddingModel(ctx context.Context) (string, error) {
	var model string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = ?`, metaEmbeddingModel).Scan(&model)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read embedding model: %w", err)
	}
	return model, nil
}

// Count returns the number of stored examples.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM examples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count examples: %w", err)
	}
	return n, nil
}

// Search implements SimilaritySearcher.
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, n int) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, question, sql, tables_json, embedding_json FROM examples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan examples: %w", err)
	}
	defer rows.Close()

	var (
		examples []models.Example
		vectors  [][]float32
	)
	for rows.Next() {
		var (
			ex                     models.Example
			tablesJSON, vectorJSON string
			vec                    []float32
		)
		if err := rows.Scan(&ex.ID, &ex.Question, &ex.SQL, &tablesJSON, &vectorJSON); err != nil {
			return nil, fmt.Errorf("read example: %w", err)
		}
		if err := json.Unmarshal([]byte(tablesJSON), &ex.Tables); err != nil {
			return nil, fmt.Errorf("decode tables of example %s: %w", ex.ID, err)
		}
		if err := json.Unmarshal([]byte(vectorJSON), &vec); err != nil {
			return nil, fmt.Errorf("decode embedding of example %s: %w", ex.ID, err)
		}
		examples = append(examples, ex)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan examples: %w", err)
	}

	candidates := rankTopN(vector, examples, vectors, n)
	s.logger.Debug("Similarity search",
		zap.Int("scanned", len(examples)),
		zap.Int("returned", len(candidates)))
	return candidates, nil
}
