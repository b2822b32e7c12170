package repository

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/filegate/filegate/internal/db"
)

// newTestDB opens a throwaway sqlite database with the schema applied. A
// single connection keeps sqlite's writer serialization out of the picture;
// the concurrency tests exercise the SQL, not the driver's lock handling.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })
	return database
}
