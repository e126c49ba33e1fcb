// Package testhelpers provides utilities for testing ekaya-nl2sql components.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the image used for executor integration tests.
const PostgresImage = "postgres:16-alpine"

// Credentials of the test container.
const (
	TestUser     = "nl2sql"
	TestPassword = "test_password"
	TestDatabase = "health_data_test"
)

// seedSQL creates a small claims table the integration tests query.
const seedSQL = `
CREATE TABLE IF NOT EXISTS claims (
	claim_id      INTEGER PRIMARY KEY,
	provider_name TEXT,
	state         TEXT,
	total_charge  NUMERIC(12,2),
	service_date  DATE
);
TRUNCATE claims;
INSERT INTO claims VALUES
	(1, 'Acme Health', 'CA', 1250.50, '2023-01-15'),
	(2, 'Bayside Clinic', 'NY', 980.00, '2023-02-03'),
	(3, 'Acme Health', 'CA', 300.25, '2023-03-21'),
	(4, 'Cedar Medical', NULL, 45.00, '2023-04-09');
`

// TestDB holds a shared test database container and connection.
type TestDB struct {
	Container testcontainers.Container
	DB        *sql.DB
	ConnStr   string
	Host      string
	Port      int
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
// The claims table is seeded on first use.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       TestDatabase,
			"POSTGRES_USER":     TestUser,
			"POSTGRES_PASSWORD": TestPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		TestUser, TestPassword, host, port.Port(), TestDatabase)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("database not reachable: %w", err)
	}

	if _, err := db.ExecContext(ctx, seedSQL); err != nil {
		return nil, fmt.Errorf("failed to seed claims: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
		Host:      host,
		Port:      port.Int(),
	}, nil
}
