package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "visitor_pass", cfg.Database)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, int32(25), cfg.MaxConns)
	assert.Equal(t, int32(5), cfg.MinConns)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "gatekeeper",
		Password: "s3cret",
		Database: "visitor_pass",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=gatekeeper password=s3cret dbname=visitor_pass sslmode=require",
		cfg.DSN(),
	)
}

func TestNewPostgres_UnreachableHost(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Host = "unreachable.invalid"
	cfg.MaxRetries = 1
	cfg.RetryInterval = 10 * time.Millisecond
	cfg.ConnectTimeout = 500 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewPostgres(ctx, cfg)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestNewPostgres_StopsWhenContextCancelled(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Host = "unreachable.invalid"
	cfg.MaxRetries = 5
	cfg.RetryInterval = time.Minute
	cfg.ConnectTimeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	db, err := NewPostgres(ctx, cfg)
	require.Error(t, err)
	assert.Nil(t, db)
	// the retry loop must bail out instead of sitting through RetryInterval
	assert.Less(t, time.Since(start), 10*time.Second)
}

// openIntegrationDB connects using TEST_POSTGRES_* overrides; skipped unless
// INTEGRATION_TEST=true.
func openIntegrationDB(t *testing.T) *PostgresDB {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("set INTEGRATION_TEST=true to run against a live database")
	}

	cfg := DefaultPostgresConfig()
	if host := os.Getenv("TEST_POSTGRES_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("TEST_POSTGRES_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		require.NoError(t, err, "TEST_POSTGRES_PORT must be numeric")
		cfg.Port = p
	}
	if user := os.Getenv("TEST_POSTGRES_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("TEST_POSTGRES_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if dbname := os.Getenv("TEST_POSTGRES_DATABASE"); dbname != "" {
		cfg.Database = dbname
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := NewPostgres(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestPostgresDB_Roundtrip_Integration(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.HealthCheck(ctx))
	assert.True(t, db.IsConnected(ctx))
	require.NotNil(t, db.Pool())
	require.NotNil(t, db.Stats())

	require.NoError(t, db.Exec(ctx, "CREATE TEMP TABLE gate_codes (id SERIAL PRIMARY KEY, code TEXT)"))
	require.NoError(t, db.Exec(ctx, "INSERT INTO gate_codes (code) VALUES ($1)", "AB12CD34"))

	var code string
	require.NoError(t, db.QueryRow(ctx, "SELECT code FROM gate_codes WHERE code = $1", "AB12CD34").Scan(&code))
	assert.Equal(t, "AB12CD34", code)
}

func TestPostgresDB_Transaction_Integration(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(ctx, "CREATE TEMP TABLE gate_events (id SERIAL PRIMARY KEY, status TEXT)"))

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.Exec(ctx, "INSERT INTO gate_events (status) VALUES ($1)", "CHECKED_IN")
	if err != nil {
		_ = tx.Rollback(ctx)
		t.Fatalf("insert in tx: %v", err)
	}
	require.NoError(t, tx.Commit(ctx))

	var status string
	require.NoError(t, db.QueryRow(ctx, "SELECT status FROM gate_events WHERE status = $1", "CHECKED_IN").Scan(&status))
	assert.Equal(t, "CHECKED_IN", status)

	// a rolled back write must not be visible
	tx, err = db.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO gate_events (status) VALUES ($1)", "CHECKED_OUT")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	var count int
	require.NoError(t, db.QueryRow(ctx, "SELECT count(*) FROM gate_events WHERE status = $1", "CHECKED_OUT").Scan(&count))
	assert.Zero(t, count)
}
