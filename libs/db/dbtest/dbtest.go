// Package dbtest opens a PostgreSQL pool for tests tagged integration.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sas-esd/esdmail/libs/db"
)

// DatabaseURLEnv names the DSN integration tests run against.
const DatabaseURLEnv = "ESD_TEST_DATABASE_URL"

// Open returns a single-connection pool, so TEMP tables created by a test
// shadow same-named host tables for every later statement. The test is
// skipped when DatabaseURLEnv is unset.
func Open(t *testing.T) *db.Pool {
	t.Helper()
	url := os.Getenv(DatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.OpenWithOptions(ctx, url, db.Options{MaxConns: 1, MinConns: 1})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// Exec runs setup statements and fails the test on the first error.
func Exec(t *testing.T, pool *db.Pool, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := pool.Exec(context.Background(), stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}
