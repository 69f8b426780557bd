package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registra driver pgx
	_ "modernc.org/sqlite"             // registra driver sqlite puro Go
)

// Store agrupa la conexión y el dialecto; lo embeben los repositorios SQL.
type Store struct {
	DB     *sql.DB
	Driver Driver
}

func NewStore(db *sql.DB, driver Driver) Store {
	return Store{DB: db, Driver: driver}
}

// Q reescribe los placeholders '?' al formato del driver.
func (s Store) Q(query string) string {
	return s.Driver.Rebind(query)
}

// Connect abre la conexión con la base de datos y hace ping.
func Connect(ctx context.Context, databaseURL, serviceKey string) (*sql.DB, Driver, error) {
	driver, dsn := ParseDSN(databaseURL, serviceKey)
	conn, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, driver, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// Un solo escritor; con :memory: además cada conexión sería una base distinta.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, driver, fmt.Errorf("ping db: %w", err)
	}
	return conn, driver, nil
}

// Querier lo cumplen *sql.DB y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// WithTx ejecuta fn dentro de una transacción; rollback si fn devuelve error.
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Count ejecuta un SELECT COUNT(*) ya reescrito y devuelve el total.
func Count(ctx context.Context, q Querier, query string, args ...interface{}) (int, error) {
	var total int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return total, nil
}
