package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// InMemoryLancamentoRepo simula LancamentoRepository. Err, si no es nil, lo devuelven todas las operaciones.
type InMemoryLancamentoRepo struct {
	Lancamentos []*finDomain.Lancamento
	Outbox      []sharedDomain.OutboxEvent
	Err         error
	mu          sync.Mutex
}

var _ finDomain.LancamentoRepository = (*InMemoryLancamentoRepo)(nil)

func NewInMemoryLancamentoRepo() *InMemoryLancamentoRepo {
	return &InMemoryLancamentoRepo{}
}

func lancamentoRecord(l *finDomain.Lancamento) map[string]interface{} {
	return map[string]interface{}{
		"tipo":            string(l.Tipo),
		"categoria":       l.Categoria,
		"descricao":       l.Descricao,
		"data_lancamento": l.DataLancamento,
	}
}

func (r *InMemoryLancamentoRepo) Create(ctx context.Context, l *finDomain.Lancamento, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	copied := *l
	r.Lancamentos = append(r.Lancamentos, &copied)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryLancamentoRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*finDomain.Lancamento, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}

	var filtered []*finDomain.Lancamento
	for _, l := range r.Lancamentos {
		if matches(lancamentoRecord(l), criteria) {
			filtered = append(filtered, l)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if p.Ascending() {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return paginate(filtered, p), len(filtered), nil
}

func (r *InMemoryLancamentoRepo) Valores(ctx context.Context, tipo finDomain.Tipo, inicio, fim *time.Time) ([]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	criteria := sharedDomain.And(
		sharedDomain.EqCriteria{Field: "tipo", Value: string(tipo)},
		sharedDomain.DateRangeCriteria{Field: "data_lancamento", Start: inicio, End: fim},
	)
	var out []decimal.Decimal
	for _, l := range r.Lancamentos {
		if matches(lancamentoRecord(l), criteria) {
			out = append(out, l.Valor)
		}
	}
	return out, nil
}

type MockLancamentoAnalytics struct {
	mock.Mock
}

func (m *MockLancamentoAnalytics) LogBatch(ctx context.Context, ls []*finDomain.Lancamento) error {
	args := m.Called(ctx, ls)
	return args.Error(0)
}

func (m *MockLancamentoAnalytics) MonthlyTrend(ctx context.Context, inicio, fim time.Time) ([]finDomain.TendenciaMensal, error) {
	args := m.Called(ctx, inicio, fim)
	trends, _ := args.Get(0).([]finDomain.TendenciaMensal)
	return trends, args.Error(1)
}

var _ finDomain.LancamentoAnalytics = (*MockLancamentoAnalytics)(nil)

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, tabela, acao, registroID string, dados interface{}, ip string) {
	m.Called(ctx, tabela, acao, registroID, dados, ip)
}

var _ finDomain.Auditor = (*MockAuditor)(nil)
