package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = conn.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	return conn
}

func TestMigrateCreatesSchema(t *testing.T) {
	conn := openMemoryDB(t)
	require.NoError(t, Migrate(conn, nil))

	for _, table := range []string{"schema_migrations", "jobs", "tags", "job_tags", "saved_searches", "search_runs"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}

	var applied int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 5, applied)
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := openMemoryDB(t)
	require.NoError(t, Migrate(conn, nil))

	var before int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&before))

	require.NoError(t, Migrate(conn, nil))

	var after int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&after))
	assert.Equal(t, before, after)
}

func TestSchemaEnforcesExternalIDUniqueness(t *testing.T) {
	conn := openMemoryDB(t)
	require.NoError(t, Migrate(conn, nil))

	_, err := conn.Exec(`INSERT INTO jobs (title, company, external_id) VALUES ('a', 'b', '123456')`)
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO jobs (title, company, external_id) VALUES ('c', 'd', '123456')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	// NULL external ids never collide.
	for i := 0; i < 2; i++ {
		_, err = conn.Exec(`INSERT INTO jobs (title, company) VALUES ('a', 'b')`)
		require.NoError(t, err)
	}
}

func TestSchemaRejectsUnknownStatus(t *testing.T) {
	conn := openMemoryDB(t)
	require.NoError(t, Migrate(conn, nil))

	_, err := conn.Exec(`INSERT INTO jobs (title, company, status) VALUES ('a', 'b', 'daydreaming')`)
	assert.Error(t, err)
}
