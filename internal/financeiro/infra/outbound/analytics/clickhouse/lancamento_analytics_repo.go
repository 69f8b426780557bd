package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	"github.com/shopspring/decimal"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// LancamentoAnalyticsRepo guarda una copia de cada lançamento en ClickHouse para las tendencias mensuales.
type LancamentoAnalyticsRepo struct {
	db *sql.DB
}

func newOptions(addr, dbName string) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	}
}

func NewLancamentoAnalyticsRepo(addr string, dbName string) (*LancamentoAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(newOptions(addr, dbName))

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &LancamentoAnalyticsRepo{db: conn}, nil
}

func (r *LancamentoAnalyticsRepo) Close() error {
	return r.db.Close()
}

// LogBatch inserta el lote en una sola transacción; si una fila falla no se inserta ninguna.
func (r *LancamentoAnalyticsRepo) LogBatch(ctx context.Context, ls []*finDomain.Lancamento) error {
	if len(ls) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO lancamentos_log (id, tipo, categoria, valor, data_lancamento, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	eventTime := time.Now()
	for _, l := range ls {
		if _, err := stmt.ExecContext(
			ctx,
			l.ID,
			string(l.Tipo),
			l.Categoria,
			l.Valor,
			l.DataLancamento,
			eventTime,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for lancamento %s: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

// MonthlyTrend agrega receitas y despesas por mes. FINAL colapsa los duplicados
// que deja un evento reentregado.
func (r *LancamentoAnalyticsRepo) MonthlyTrend(ctx context.Context, inicio, fim time.Time) ([]finDomain.TendenciaMensal, error) {
	query := `
		SELECT
			toStartOfMonth(data_lancamento) AS mes,
			sumIf(valor, tipo = 'receita') AS receitas,
			sumIf(valor, tipo = 'despesa') AS despesas
		FROM lancamentos_log FINAL
		WHERE data_lancamento BETWEEN ? AND ?
		GROUP BY mes
		ORDER BY mes
	`
	rows, err := r.db.QueryContext(ctx, query, finDomain.Dia(inicio), finDomain.Dia(fim))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []finDomain.TendenciaMensal
	for rows.Next() {
		var (
			mes                time.Time
			receitas, despesas decimal.Decimal
		)
		if err := rows.Scan(&mes, &receitas, &despesas); err != nil {
			return nil, err
		}
		trends = append(trends, toTendencia(mes, receitas, despesas))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return finDomain.CompletarMeses(inicio, fim, trends), nil
}

func toTendencia(mes time.Time, receitas, despesas decimal.Decimal) finDomain.TendenciaMensal {
	return finDomain.TendenciaMensal{
		Mes:      mes.UTC().Format(finDomain.MesLayout),
		Receitas: receitas,
		Despesas: despesas,
		Saldo:    receitas.Sub(despesas),
	}
}

// InitSchema crea la tabla si no existe. ReplacingMergeTree deduplica por id
// quedándose con el event_time más reciente.
func (r *LancamentoAnalyticsRepo) InitSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS lancamentos_log (
			id              UUID,
			tipo            LowCardinality(String),
			categoria       String,
			valor           Decimal(14, 2),
			data_lancamento Date,
			event_time      DateTime64(3)
		) ENGINE = ReplacingMergeTree(event_time)
		PARTITION BY toYYYYMM(data_lancamento)
		ORDER BY (tipo, data_lancamento, id);
	`
	_, err := r.db.Exec(query)
	return err
}

var _ finDomain.LancamentoAnalytics = (*LancamentoAnalyticsRepo)(nil)
