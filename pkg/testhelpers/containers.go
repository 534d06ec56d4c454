package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/database"
)

// PostgresTestImage is the database image used for integration tests.
const PostgresTestImage = "postgres:16-alpine"

// TestDB holds a shared test database container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
// Engine migrations are applied so the report cache schema exists.
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
		Image:        PostgresTestImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "fabpulse_test",
			"POSTGRES_USER":     "fabpulse",
			"POSTGRES_PASSWORD": "test_password",
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

	connStr := fmt.Sprintf("postgres://fabpulse:test_password@%s:%s/fabpulse_test?sslmode=disable",
		host, port.Port())

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if err := applyMigrations(connStr); err != nil {
		return nil, err
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
	}, nil
}

// applyMigrations runs the engine migrations through database/sql, which
// golang-migrate requires.
func applyMigrations(connStr string) error {
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	migrationsPath, err := findMigrationsDir()
	if err != nil {
		return err
	}

	if err := database.RunMigrations(sqlDB, migrationsPath, zap.NewNop()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// findMigrationsDir walks up from the test's working directory until it
// finds the module's migrations directory.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found above %s", dir)
		}
		dir = parent
	}
}

// processRow is one seeded measurement in a mock process table.
type processRow struct {
	lot        string
	at         time.Time
	prediction string
	humidity   float64
	pressure   float64
	lithium    float64
}

// SeedWarehouseTable creates a process table with a few lots of data for
// warehouse aggregation tests. The table mirrors the shape of a real
// simulation results table: lot identifier, timestamp, defect prediction
// and a handful of numeric process parameters.
func SeedWarehouseTable(t *testing.T, pool *pgxpool.Pool, table string) {
	t.Helper()

	now := time.Now().UTC()
	seedProcessTable(t, pool, table, []processRow{
		{"1001", now.Add(-2 * time.Hour), "0", 41.2, 2.1, 12.5},
		{"1001", now.Add(-1 * time.Hour), "1", 44.8, 2.4, 12.7},
		{"1002", now.Add(-3 * time.Hour), "0", 40.1, 2.0, 12.4},
		{"1002", now.Add(-30 * time.Minute), "0", 39.9, 2.0, 12.6},
		{"2001", now.Add(-400 * 24 * time.Hour), "1", 47.3, 2.8, 13.1},
	})
}

// SeedStaleWarehouseTable creates a process table whose only data is a
// failing lot older than a year. Nothing falls inside any date window, which
// exercises the aggregator's fallback path for the default period.
func SeedStaleWarehouseTable(t *testing.T, pool *pgxpool.Pool, table string) {
	t.Helper()

	now := time.Now().UTC()
	seedProcessTable(t, pool, table, []processRow{
		{"3001", now.Add(-400 * 24 * time.Hour), "0", 42.5, 2.2, 12.3},
		{"3001", now.Add(-399 * 24 * time.Hour), "1", 46.1, 2.6, 12.9},
	})
}

func seedProcessTable(t *testing.T, pool *pgxpool.Pool, table string, rows []processRow) {
	t.Helper()
	ctx := context.Background()

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		lot_id TEXT,
		"timestamp" TIMESTAMPTZ,
		prediction TEXT,
		humidity DOUBLE PRECISION,
		tank_pressure DOUBLE PRECISION,
		lithium_input DOUBLE PRECISION
	)`, table)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		t.Fatalf("failed to create warehouse table: %v", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(`TRUNCATE %q`, table)); err != nil {
		t.Fatalf("failed to truncate warehouse table: %v", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %q
		(lot_id, "timestamp", prediction, humidity, tank_pressure, lithium_input)
		VALUES ($1, $2, $3, $4, $5, $6)`, table)

	for _, r := range rows {
		if _, err := pool.Exec(ctx, insert,
			r.lot, r.at, r.prediction, r.humidity, r.pressure, r.lithium); err != nil {
			t.Fatalf("failed to seed warehouse row: %v", err)
		}
	}
}
