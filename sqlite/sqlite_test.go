package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/skywatch/sqlite"
	"github.com/stretchr/testify/require"
)

// MustOpenDB opens an in-memory database or fails the test.
func MustOpenDB(tb testing.TB) *sqlite.DB {
	tb.Helper()

	db := sqlite.NewDB(":memory:")
	if err := db.Open(); err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)

		var count int
		err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM documents").Scan(&count)
		require.NoError(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/test.db")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		var journalMode string
		err = db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}
