package postgres

import (
	"context"
	"testing"
	"time"

	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db/dbtest"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newLancamento(t *testing.T, repo *LancamentoRepo, tipo finDomain.Tipo, categoria, valor string, data time.Time) *finDomain.Lancamento {
	t.Helper()
	l, err := finDomain.NewLancamento(tipo, categoria, categoria+" do mês", decimal.RequireFromString(valor), data, nil)
	require.NoError(t, err)
	evt := sharedDomain.NewOutboxEvent(finDomain.AggregateType, l.ID.String(), finDomain.LancamentoCriado, l)
	require.NoError(t, repo.Create(context.Background(), l, evt))
	return l
}

func TestLancamentoRepo_CreateAndList(t *testing.T) {
	store := dbtest.Open(t)
	repo := NewLancamentoRepo(store.DB, store.Driver)
	ctx := context.Background()

	newLancamento(t, repo, finDomain.TipoReceita, "Dízimo", "150.50", day(2025, 3, 2))
	newLancamento(t, repo, finDomain.TipoReceita, "Oferta", "40", day(2025, 3, 9))
	newLancamento(t, repo, finDomain.TipoDespesa, "Aluguel", "1200", day(2025, 4, 1))

	assert.Equal(t, 3, dbtest.CountRows(t, store, "outbox"))

	p := sharedQuery.PaginationParams{Page: 1, Limit: 10, SortBy: "valor", SortOrder: "asc"}
	all, total, err := repo.List(ctx, nil, p)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.True(t, all[0].Valor.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, finDomain.TipoReceita, all[0].Tipo)

	inicio, fim := day(2025, 3, 1), day(2025, 3, 31)
	criteria := sharedDomain.And(
		sharedDomain.EqCriteria{Field: "tipo", Value: "receita"},
		sharedDomain.DateRangeCriteria{Field: "data_lancamento", Start: &inicio, End: &fim},
		sharedDomain.SearchCriteria{Fields: finDomain.SearchFields, Term: "dízimo"},
	)
	filtered, total, err := repo.List(ctx, criteria, p)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Dízimo", filtered[0].Categoria)
	assert.True(t, filtered[0].Valor.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, day(2025, 3, 2), filtered[0].DataLancamento.UTC())
}

func TestLancamentoRepo_Valores(t *testing.T) {
	store := dbtest.Open(t)
	repo := NewLancamentoRepo(store.DB, store.Driver)
	ctx := context.Background()

	newLancamento(t, repo, finDomain.TipoReceita, "Dízimo", "100.10", day(2025, 3, 1))
	newLancamento(t, repo, finDomain.TipoReceita, "Oferta", "0.20", day(2025, 3, 31))
	newLancamento(t, repo, finDomain.TipoReceita, "Oferta", "999", day(2025, 4, 1))
	newLancamento(t, repo, finDomain.TipoDespesa, "Luz", "80", day(2025, 3, 15))

	inicio, fim := day(2025, 3, 1), day(2025, 3, 31)
	receitas, err := repo.Valores(ctx, finDomain.TipoReceita, &inicio, &fim)
	require.NoError(t, err)
	require.Len(t, receitas, 2, "both bounds are inclusive")
	assert.True(t, decimal.Sum(receitas[0], receitas[1:]...).Equal(decimal.RequireFromString("100.30")))

	despesas, err := repo.Valores(ctx, finDomain.TipoDespesa, nil, nil)
	require.NoError(t, err)
	require.Len(t, despesas, 1)

	none, err := repo.Valores(ctx, finDomain.TipoDespesa, &fim, &fim)
	require.NoError(t, err)
	assert.Empty(t, none)
}
