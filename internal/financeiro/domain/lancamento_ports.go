package domain

import (
	"context"
	"time"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/shopspring/decimal"
)

const Tabela = "lancamentos_financeiros"

func invalid(err error) error {
	return sharedDomain.InvalidInput(err)
}

var SortableFields = []string{"created_at", "data_lancamento", "valor", "categoria"}

var SearchFields = []string{"descricao", "categoria"}

type LancamentoRepository interface {
	Create(ctx context.Context, l *Lancamento, evt sharedDomain.OutboxEvent) error
	List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*Lancamento, int, error)
	// Valores devuelve los valores de un tipo dentro del periodo; la suma se hace fuera de la base de datos.
	Valores(ctx context.Context, tipo Tipo, inicio, fim *time.Time) ([]decimal.Decimal, error)
}

// LancamentoAnalytics es el almacén analítico (ClickHouse) de los lançamentos.
type LancamentoAnalytics interface {
	LogBatch(ctx context.Context, ls []*Lancamento) error
	MonthlyTrend(ctx context.Context, inicio, fim time.Time) ([]TendenciaMensal, error)
}

// Auditor registra mutaciones; nunca hace fallar la operación.
type Auditor interface {
	Record(ctx context.Context, tabela, acao, registroID string, dados interface{}, ip string)
}
