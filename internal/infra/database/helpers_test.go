package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), StoreConfig{
		Driver: DialectSQLite,
		DSN:    filepath.Join(t.TempDir(), "people.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestMetrics() *metrics.Prometheus {
	return metrics.NewPrometheusMetrics(prometheus.NewRegistry(), "test")
}

func newTestContext(t *testing.T, store *Store) *Context {
	t.Helper()
	uow, err := NewContext(context.Background(), store, logger.NewNop(), newTestMetrics())
	require.NoError(t, err)
	t.Cleanup(func() { _ = uow.Dispose() })
	return uow
}

func countRows(t *testing.T, store *Store) int {
	t.Helper()
	var n int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM person").Scan(&n))
	return n
}

func storedNames(t *testing.T, store *Store) []string {
	t.Helper()
	rows, err := store.DB().Query("SELECT name FROM person ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
