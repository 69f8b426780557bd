// Package dbtest abre una base SQLite en memoria con el esquema completo para tests de repositorios.
package dbtest

import (
	"context"
	"testing"

	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	"github.com/stretchr/testify/require"
)

func Open(t *testing.T) db.Store {
	t.Helper()

	ctx := context.Background()
	conn, driver, err := db.Connect(ctx, "sqlite://:memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.InitSchema(ctx, conn, driver))
	return db.NewStore(conn, driver)
}

// CountRows devuelve el número de filas de una tabla.
func CountRows(t *testing.T, store db.Store, table string) int {
	t.Helper()
	total, err := db.Count(context.Background(), store.DB, "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	return total
}
