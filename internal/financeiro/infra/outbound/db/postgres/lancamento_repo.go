package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LancamentoRepo implementa LancamentoRepository sobre database/sql.
type LancamentoRepo struct {
	db.Store
}

var _ finDomain.LancamentoRepository = (*LancamentoRepo)(nil)

func NewLancamentoRepo(conn *sql.DB, driver db.Driver) *LancamentoRepo {
	return &LancamentoRepo{Store: db.NewStore(conn, driver)}
}

const lancamentoColumns = `id, tipo, categoria, descricao, valor, data_lancamento, pessoa_id, created_at`

func (r *LancamentoRepo) Create(ctx context.Context, l *finDomain.Lancamento, evt sharedDomain.OutboxEvent) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.Q(
			`INSERT INTO lancamentos_financeiros (`+lancamentoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			l.ID, string(l.Tipo), l.Categoria, l.Descricao, l.Valor, l.DataLancamento, db.NullUUID(l.PessoaID), l.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert lancamento: %w", err)
		}
		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
}

func (r *LancamentoRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*finDomain.Lancamento, int, error) {
	where, args := db.BuildWhere(r.Driver, criteria)

	total, err := db.Count(ctx, r.DB, r.Q(`SELECT COUNT(*) FROM lancamentos_financeiros `+where), args...)
	if err != nil {
		return nil, 0, err
	}

	sort := p.SortFor(finDomain.SortableFields...)
	query := fmt.Sprintf(`SELECT %s FROM lancamentos_financeiros %s %s LIMIT ? OFFSET ?`,
		lancamentoColumns, where, db.OrderBy(sort.Field, sort.Desc))

	rows, err := r.DB.QueryContext(ctx, r.Q(query), append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lancamentos: %w", err)
	}
	defer rows.Close()

	var out []*finDomain.Lancamento
	for rows.Next() {
		var (
			l        finDomain.Lancamento
			tipo     string
			pessoaID uuid.NullUUID
		)
		if err := rows.Scan(&l.ID, &tipo, &l.Categoria, &l.Descricao, &l.Valor, &l.DataLancamento, &pessoaID, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		l.Tipo = finDomain.Tipo(tipo)
		l.PessoaID = db.UUIDPtr(pessoaID)
		out = append(out, &l)
	}
	return out, total, rows.Err()
}

func (r *LancamentoRepo) Valores(ctx context.Context, tipo finDomain.Tipo, inicio, fim *time.Time) ([]decimal.Decimal, error) {
	where, args := db.BuildWhere(r.Driver, sharedDomain.And(
		sharedDomain.EqCriteria{Field: "tipo", Value: string(tipo)},
		sharedDomain.DateRangeCriteria{Field: "data_lancamento", Start: inicio, End: fim},
	))

	rows, err := r.DB.QueryContext(ctx, r.Q(`SELECT valor FROM lancamentos_financeiros `+where), args...)
	if err != nil {
		return nil, fmt.Errorf("select valores %s: %w", tipo, err)
	}
	defer rows.Close()

	var valores []decimal.Decimal
	for rows.Next() {
		var v decimal.Decimal
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		valores = append(valores, v)
	}
	return valores, rows.Err()
}
