package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/tenderhub/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, Up(ctx, conn))
	require.NoError(t, Up(ctx, conn))

	v, err := Version(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	for _, table := range []string{"users", "markup_parameters", "markup_tactics", "tenders", "tender_markup_percentages", "boq_items", "recalculation_runs"} {
		var n int
		require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n))
		require.Equal(t, 1, n, table)
	}
}
