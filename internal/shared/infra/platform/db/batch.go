package db

import (
	"context"
	"fmt"
	"strings"
)

// maxParams queda por debajo del límite de parámetros de SQLite y Postgres.
const maxParams = 30000

// InsertBatch escribe varias filas con INSERT multi-VALUES, troceando si hace falta.
// Dentro de una transacción todas las filas quedan o ninguna.
func InsertBatch(ctx context.Context, q Querier, driver Driver, table string, columns []string, rows [][]interface{}) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	perChunk := maxParams / len(columns)
	if perChunk < 1 {
		perChunk = 1
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	inserted := 0
	for start := 0; start < len(rows); start += perChunk {
		end := start + perChunk
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		values := make([]string, 0, len(chunk))
		args := make([]interface{}, 0, len(chunk)*len(columns))
		for _, r := range chunk {
			if len(r) != len(columns) {
				return inserted, fmt.Errorf("batch insert into %s: row has %d values, want %d", table, len(r), len(columns))
			}
			values = append(values, rowPlaceholder)
			args = append(args, r...)
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), strings.Join(values, ", "))
		if _, err := q.ExecContext(ctx, driver.Rebind(query), args...); err != nil {
			return inserted, fmt.Errorf("batch insert into %s: %w", table, err)
		}
		inserted += len(chunk)
	}
	return inserted, nil
}
