package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteQuery_SelectAndWithAllowed(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Replace(sampleSnapshot()))

	for _, q := range []string{
		"SELECT COUNT(*) AS cnt FROM list_rows",
		"WITH c AS (SELECT COUNT(*) AS cnt FROM list_rows) SELECT cnt FROM c",
		"  -- leading comment\nSELECT category FROM list_rows LIMIT 1",
	} {
		rows, err := store.ExecuteQuery(context.Background(), q)
		require.NoError(t, err, q)
		require.Len(t, rows, 1, q)
	}
}

func TestExecuteQuery_EmptyResultIsNotNil(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.ExecuteQuery(context.Background(), "SELECT * FROM list_rows")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestExecuteQuery_WritesRejected(t *testing.T) {
	store := newTestStore(t)

	rejected := []struct {
		sql  string
		want string
	}{
		{"INSERT INTO list_rows (row_idx) VALUES (1)", "only SELECT/WITH"},
		{"DELETE FROM list_rows", "only SELECT/WITH"},
		{"DROP TABLE list_rows", "only SELECT/WITH"},
		{"SELECT * FROM list_rows; DROP TABLE list_rows", "semicolons"},
		{"SELECT COPY(list_rows, '/tmp/dump.csv') FROM list_rows", "COPY"},
		{"SELECT ATTACH FROM list_rows", "ATTACH"},
		{"SELECT PRAGMA FROM list_rows", "PRAGMA"},
		{"WITH x AS (SELECT 1) /* hidden */ SELECT SET FROM x", "SET"},
	}
	for _, tt := range rejected {
		_, err := store.ExecuteQuery(context.Background(), tt.sql)
		require.ErrorIs(t, err, ErrQueryRejected, tt.sql)
		require.Contains(t, err.Error(), tt.want, tt.sql)
	}
}

func TestStripSQLComments(t *testing.T) {
	got := stripSQLComments("SELECT 1 /* DROP */ -- DELETE\nFROM t")
	require.NotContains(t, got, "DROP")
	require.NotContains(t, got, "DELETE")
	require.Contains(t, got, "FROM t")
}

func TestGetSchemaDescription_NamesTables(t *testing.T) {
	desc := newTestStore(t).GetSchemaDescription()
	for _, table := range snapshotTables {
		require.Contains(t, desc, table)
	}
}
