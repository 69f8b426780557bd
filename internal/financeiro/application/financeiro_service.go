package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TODO: pasar la IP del cliente (gin c.ClientIP()) cuando el proxy propague X-Forwarded-For.
const auditIP = "127.0.0.1"

const (
	DefaultMeses = 12
	MaxMeses     = 60
)

// ErrAnalyticsUnavailable se devuelve cuando no hay ClickHouse configurado.
var ErrAnalyticsUnavailable = errors.New("analytics store not configured")

type CreateLancamentoInput struct {
	Tipo           finDomain.Tipo
	Categoria      string
	Descricao      string
	Valor          decimal.Decimal
	DataLancamento time.Time
	PessoaID       *uuid.UUID
}

// FiltroLancamentos son los filtros opcionales del listado.
type FiltroLancamentos struct {
	Tipo       finDomain.Tipo
	DataInicio *time.Time
	DataFim    *time.Time
}

func (f FiltroLancamentos) criteria(search string) sharedDomain.Criteria {
	parts := []sharedDomain.Criteria{
		sharedDomain.DateRangeCriteria{Field: "data_lancamento", Start: dia(f.DataInicio), End: dia(f.DataFim)},
		sharedDomain.SearchCriteria{Fields: finDomain.SearchFields, Term: search},
	}
	if f.Tipo != "" {
		parts = append(parts, sharedDomain.EqCriteria{Field: "tipo", Value: string(f.Tipo)})
	}
	return sharedDomain.And(parts...)
}

// FinanceiroService define los casos de uso de lançamentos y relatórios.
type FinanceiroService struct {
	repo      finDomain.LancamentoRepository
	analytics finDomain.LancamentoAnalytics
	audit     finDomain.Auditor
	log       *zap.Logger
	now       func() time.Time
}

// NewFinanceiroService acepta analytics nil; entonces la tendencia no está disponible.
func NewFinanceiroService(repo finDomain.LancamentoRepository, analytics finDomain.LancamentoAnalytics, audit finDomain.Auditor, log *zap.Logger) *FinanceiroService {
	return &FinanceiroService{
		repo:      repo,
		analytics: analytics,
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

func (s *FinanceiroService) HasAnalytics() bool {
	return s.analytics != nil
}

func (s *FinanceiroService) CreateLancamento(ctx context.Context, in CreateLancamentoInput) (*finDomain.Lancamento, error) {
	l, err := finDomain.NewLancamento(in.Tipo, in.Categoria, in.Descricao, in.Valor, in.DataLancamento, in.PessoaID)
	if err != nil {
		return nil, err
	}

	payload := finDomain.LancamentoCriadoPayload{
		ID:             l.ID,
		Tipo:           string(l.Tipo),
		Categoria:      l.Categoria,
		Valor:          l.Valor,
		DataLancamento: l.DataLancamento,
	}
	evt := sharedDomain.NewOutboxEvent(finDomain.AggregateType, l.ID.String(), finDomain.LancamentoCriado, payload)
	if err := s.repo.Create(ctx, l, evt); err != nil {
		s.log.Error("Failed to create lancamento", zap.Error(err))
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, finDomain.Tabela, auditDomain.AcaoInsert, l.ID.String(), l, auditIP)
	}
	return l, nil
}

func (s *FinanceiroService) ListLancamentos(ctx context.Context, f FiltroLancamentos, p sharedQuery.PaginationParams) (sharedQuery.Page[*finDomain.Lancamento], error) {
	ls, total, err := s.repo.List(ctx, f.criteria(p.Search), p)
	if err != nil {
		return sharedQuery.Page[*finDomain.Lancamento]{}, err
	}
	return sharedQuery.NewPage(ls, p, total), nil
}

// Relatorio lanza las dos consultas (receitas y despesas) en paralelo y suma en memoria.
func (s *FinanceiroService) Relatorio(ctx context.Context, inicio, fim *time.Time) (finDomain.Relatorio, error) {
	inicio, fim = dia(inicio), dia(fim)
	if inicio != nil && fim != nil && fim.Before(*inicio) {
		return finDomain.Relatorio{}, sharedDomain.InvalidInput(errors.New("data_fim must not be before data_inicio"))
	}

	var receitas, despesas []decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		receitas, err = s.repo.Valores(gctx, finDomain.TipoReceita, inicio, fim)
		return err
	})
	g.Go(func() error {
		var err error
		despesas, err = s.repo.Valores(gctx, finDomain.TipoDespesa, inicio, fim)
		return err
	})
	if err := g.Wait(); err != nil {
		return finDomain.Relatorio{}, fmt.Errorf("relatorio: %w", err)
	}

	return finDomain.NewRelatorio(inicio, fim, receitas, despesas), nil
}

// Tendencia devuelve los últimos meses (incluido el actual) desde el almacén analítico.
func (s *FinanceiroService) Tendencia(ctx context.Context, meses int) ([]finDomain.TendenciaMensal, error) {
	if s.analytics == nil {
		return nil, ErrAnalyticsUnavailable
	}
	if meses < 1 {
		meses = DefaultMeses
	}
	if meses > MaxMeses {
		meses = MaxMeses
	}

	fim := finDomain.Dia(s.now())
	inicio := time.Date(fim.Year(), fim.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(meses - 1), 0)
	return s.analytics.MonthlyTrend(ctx, inicio, fim)
}

// RegistrarAnalytics copia lançamentos al almacén analítico; sin analytics no hace nada.
func (s *FinanceiroService) RegistrarAnalytics(ctx context.Context, ls ...*finDomain.Lancamento) error {
	if s.analytics == nil {
		return nil
	}
	return s.analytics.LogBatch(ctx, ls)
}

func dia(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := finDomain.Dia(*t)
	return &d
}
