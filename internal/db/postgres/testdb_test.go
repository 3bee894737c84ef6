package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/db/migrations"
)

// setupTestDB connects to TEST_DATABASE_URL and runs migrations. Tests are
// skipped when the variable is unset.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, migrations.Up(context.Background(), db), "Failed to run migrations")

	t.Cleanup(func() {
		cleanupTables(t, db)
		_ = db.Close()
	})
	cleanupTables(t, db)
	return db
}

// cleanupTables removes all rows, children first
func cleanupTables(t *testing.T, db *sql.DB) {
	for _, table := range []string{
		"publication_likes", "comments", "media_items", "publications",
		"blocked_users", "friendships", "interests", "user_profiles",
	} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
}
