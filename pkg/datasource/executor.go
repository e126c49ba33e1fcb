// Package datasource runs generated statements against the configured database.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver for database/sql
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// Executor runs a statement and returns its columns and rows.
type Executor struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (*Executor, error) {
	driver, err := cfg.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %s", cfg.Type, logging.SanitizeError(err))
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Named("datasource").Warn("Datasource connection failed",
			zap.String("type", cfg.Type),
			zap.String("dsn", logging.SanitizeConnectionString(dsn)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("connect to %s at %s:%d: %s", cfg.Type, cfg.Host, cfg.Port, logging.SanitizeError(err))
	}

	return NewExecutor(db, logger), nil
}

// NewExecutor wraps an open database handle.
func NewExecutor(db *sql.DB, logger *zap.Logger) *Executor {
	return &Executor{
		db:     db,
		logger: logger.Named("datasource"),
	}
}

// Query runs sqlQuery and collects every row. Columns are reported even when
// the result is empty.
func (e *Executor) Query(ctx context.Context, sqlQuery string) (*models.QueryResult, error) {
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		resultRows = append(resultRows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	e.logger.Debug("Executed query",
		zap.String("sql", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", len(resultRows)),
		zap.Duration("elapsed", time.Since(start)))

	return &models.QueryResult{
		Columns: columns,
		Rows:    resultRows,
	}, nil
}

// Ping verifies the database is reachable.
func (e *Executor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	return e.db.Close()
}

// normalizeValue turns driver byte slices (numeric, text in some drivers)
// into strings so results serialize as readable JSON.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
