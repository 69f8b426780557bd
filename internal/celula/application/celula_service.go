package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedCache "github.com/davicafu/igrejalab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	notificacaoTipo  = "reuniao"
	notificacaoTitle = "Nova reunião agendada"
)

// CelulaInput se usa en create (todos los campos) y update (solo los no nil).
type CelulaInput struct {
	Nome          *string
	Descricao     *string
	LiderID       *uuid.UUID
	SupervisorID  *uuid.UUID
	CoordenadorID *uuid.UUID
	DiaSemana     *string
	Horario       *string
	Endereco      *string
	Ativa         *bool
}

type AgendarReuniaoInput struct {
	CelulaID    uuid.UUID
	DataReuniao time.Time
	Tema        string
	Local       string
	Observacoes string
}

// AgendamentoResult es la reunión creada más el resultado del aviso a los miembros.
type AgendamentoResult struct {
	celulaDomain.Reuniao
	MembrosNotificados int    `json:"membros_notificados"`
	ErroNotificacao    string `json:"erro_notificacao,omitempty"`
}

type PresencaInput struct {
	CelulaID         uuid.UUID
	DataReuniao      time.Time
	Tema             string
	Visitantes       int
	Observacoes      string
	MembrosPresentes []uuid.UUID
}

type PresencaResult struct {
	celulaDomain.Relatorio
	Presencas []celulaDomain.Presenca `json:"presencas"`
}

// CelulaService define los casos de uso del módulo células.
type CelulaService struct {
	repo     celulaDomain.CelulaRepository
	notifier celulaDomain.MemberNotifier
	cache    sharedCache.Cache
	log      *zap.Logger
}

func NewCelulaService(repo celulaDomain.CelulaRepository, notifier celulaDomain.MemberNotifier, cache sharedCache.Cache, log *zap.Logger) *CelulaService {
	return &CelulaService{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		log:      log,
	}
}

func (s *CelulaService) CreateCelula(ctx context.Context, in CelulaInput) (*celulaDomain.Celula, error) {
	celula, err := celulaDomain.NewCelula(deref(in.Nome), deref(in.Descricao))
	if err != nil {
		return nil, err
	}
	apply(celula, in)
	if err := celula.Validate(); err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, celula.ID.String(), celulaDomain.CelulaCreated, celula)
	if err := s.repo.Create(ctx, celula, evt); err != nil {
		s.log.Error("Failed to create celula", zap.Error(err))
		return nil, err
	}
	return celula, nil
}

// GetCelula devuelve el detalle completo; cache-aside.
func (s *CelulaService) GetCelula(ctx context.Context, id uuid.UUID) (*celulaDomain.CelulaDetalhe, error) {
	key := celulaDomain.CacheKeyByID(id)
	if s.cache != nil {
		var d celulaDomain.CelulaDetalhe
		if hit, _ := s.cache.Get(ctx, key, &d); hit {
			return &d, nil
		}
	}

	var detalhe *celulaDomain.CelulaDetalhe
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		detalhe, errRetry = s.repo.GetDetalhe(ctx, id)
		if errors.Is(errRetry, sharedDomain.ErrNotFound) {
			return nil
		}
		return errRetry
	})
	if err != nil {
		s.log.Error("Failed to fetch celula", zap.String("celula_id", id.String()), zap.Error(err))
		return nil, err
	}
	if detalhe == nil {
		return nil, celulaDomain.ErrCelulaNotFound
	}

	sharedCache.SetWithTimeout(ctx, s.cache, key, detalhe, s.log)
	return detalhe, nil
}

func (s *CelulaService) UpdateCelula(ctx context.Context, id uuid.UUID, in CelulaInput) (*celulaDomain.Celula, error) {
	celula, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(celula, in)
	if err := celula.Validate(); err != nil {
		return nil, err
	}
	celula.UpdatedAt = time.Now().UTC()

	evt := sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, celula.ID.String(), celulaDomain.CelulaUpdated, celula)
	if err := s.repo.Update(ctx, celula, evt); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return celula, nil
}

func (s *CelulaService) DeleteCelula(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, id.String(), celulaDomain.CelulaDeleted,
		celulaDomain.CelulaDeletedPayload{ID: id})

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// ListCelulas lista con contadores, búsqueda en nome/descricao y paginación.
func (s *CelulaService) ListCelulas(ctx context.Context, p sharedQuery.PaginationParams) (sharedQuery.Page[*celulaDomain.CelulaResumo], error) {
	criteria := sharedDomain.And(sharedDomain.SearchCriteria{Fields: celulaDomain.SearchFields, Term: p.Search})

	celulas, total, err := s.repo.List(ctx, criteria, p)
	if err != nil {
		return sharedQuery.Page[*celulaDomain.CelulaResumo]{}, err
	}
	return sharedQuery.NewPage(celulas, p, total), nil
}

func (s *CelulaService) AddMembro(ctx context.Context, celulaID, pessoaID uuid.UUID) (*celulaDomain.Membro, error) {
	if _, err := s.repo.GetByID(ctx, celulaID); err != nil {
		return nil, err
	}

	membro := celulaDomain.NewMembro(celulaID, pessoaID)
	evt := sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, celulaID.String(), celulaDomain.MembroAdicionado, membro)
	if err := s.repo.AddMembro(ctx, membro, evt); err != nil {
		return nil, err
	}

	s.invalidate(ctx, celulaID)
	return membro, nil
}

// DeactivateMembro desactiva las pertenencias de una pessoa borrada e invalida el detalle de sus células.
func (s *CelulaService) DeactivateMembro(ctx context.Context, pessoaID uuid.UUID) ([]uuid.UUID, error) {
	celulas, err := s.repo.DeactivateMembro(ctx, pessoaID)
	if err != nil {
		return nil, err
	}
	for _, id := range celulas {
		s.invalidate(ctx, id)
	}
	return celulas, nil
}

// AgendarReuniao guarda la reunión y después avisa a los miembros activos.
// Si el aviso falla la reunión se mantiene y el fallo va en la respuesta.
func (s *CelulaService) AgendarReuniao(ctx context.Context, in AgendarReuniaoInput) (*AgendamentoResult, error) {
	if _, err := s.repo.GetByID(ctx, in.CelulaID); err != nil {
		return nil, err
	}

	reuniao, err := celulaDomain.NewReuniao(in.CelulaID, in.DataReuniao, in.Tema, in.Local, in.Observacoes)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, in.CelulaID.String(), celulaDomain.ReuniaoAgendada, reuniao)
	if err := s.repo.CreateReuniao(ctx, reuniao, evt); err != nil {
		return nil, err
	}

	result := &AgendamentoResult{Reuniao: *reuniao}
	if s.notifier == nil {
		return result, nil
	}

	n, err := s.notifier.NotifyMembers(ctx, in.CelulaID, notificacaoTitle, mensagemReuniao(reuniao), notificacaoTipo, reuniao.ID.String())
	if err != nil {
		s.log.Warn("Failed to notify celula members",
			zap.String("celula_id", in.CelulaID.String()),
			zap.String("reuniao_id", reuniao.ID.String()),
			zap.Error(err),
		)
		result.ErroNotificacao = err.Error()
		return result, nil
	}
	result.MembrosNotificados = n
	return result, nil
}

// RegistrarPresenca crea un relatorio y una presença por miembro presente, todo en una transacción.
func (s *CelulaService) RegistrarPresenca(ctx context.Context, in PresencaInput) (*PresencaResult, error) {
	if _, err := s.repo.GetByID(ctx, in.CelulaID); err != nil {
		return nil, err
	}

	relatorio, presencas, err := celulaDomain.NewRelatorioPresenca(in.CelulaID, in.DataReuniao, in.Tema, in.Visitantes, in.Observacoes, in.MembrosPresentes)
	if err != nil {
		return nil, err
	}

	presentes := make([]uuid.UUID, 0, len(presencas))
	for _, p := range presencas {
		presentes = append(presentes, p.PessoaID)
	}
	evt := sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, in.CelulaID.String(), celulaDomain.PresencaRegistrada,
		celulaDomain.PresencaRegistradaPayload{
			RelatorioID: relatorio.ID,
			CelulaID:    in.CelulaID,
			DataReuniao: relatorio.DataReuniao,
			Presentes:   presentes,
			Visitantes:  relatorio.Visitantes,
		})

	if err := s.repo.RegistrarPresenca(ctx, relatorio, presencas, evt); err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.CelulaID)
	return &PresencaResult{Relatorio: *relatorio, Presencas: presencas}, nil
}

func (s *CelulaService) invalidate(ctx context.Context, id uuid.UUID) {
	sharedCache.Invalidate(ctx, s.cache, s.log, celulaDomain.CacheKeyByID(id))
}

func mensagemReuniao(r *celulaDomain.Reuniao) string {
	msg := fmt.Sprintf("Reunião em %s", r.DataReuniao.Format("02/01/2006 15:04"))
	if r.Tema != "" {
		msg += " - " + r.Tema
	}
	if r.Local != "" {
		msg += " (" + r.Local + ")"
	}
	return msg
}

func apply(c *celulaDomain.Celula, in CelulaInput) {
	if in.Nome != nil {
		c.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.Descricao != nil {
		c.Descricao = *in.Descricao
	}
	if in.LiderID != nil {
		c.LiderID = in.LiderID
	}
	if in.SupervisorID != nil {
		c.SupervisorID = in.SupervisorID
	}
	if in.CoordenadorID != nil {
		c.CoordenadorID = in.CoordenadorID
	}
	if in.DiaSemana != nil {
		c.DiaSemana = *in.DiaSemana
	}
	if in.Horario != nil {
		c.Horario = *in.Horario
	}
	if in.Endereco != nil {
		c.Endereco = *in.Endereco
	}
	if in.Ativa != nil {
		c.Ativa = *in.Ativa
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
