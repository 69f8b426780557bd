package application

import (
	"context"
	"errors"
	"strings"
	"time"

	eventoDomain "github.com/davicafu/igrejalab/internal/evento/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedCache "github.com/davicafu/igrejalab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventoInput se usa en create y update; en update solo se aplican los campos no nil.
type EventoInput struct {
	Titulo     *string
	Descricao  *string
	DataInicio *time.Time
	DataFim    *time.Time
	Local      *string
	Capacidade *int
}

// EventoService define los casos de uso del módulo eventos.
type EventoService struct {
	repo  eventoDomain.EventoRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewEventoService(repo eventoDomain.EventoRepository, cache sharedCache.Cache, log *zap.Logger) *EventoService {
	return &EventoService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *EventoService) CreateEvento(ctx context.Context, in EventoInput) (*eventoDomain.Evento, error) {
	var inicio time.Time
	if in.DataInicio != nil {
		inicio = *in.DataInicio
	}
	evento, err := eventoDomain.NewEvento(deref(in.Titulo), deref(in.Descricao), inicio, in.DataFim, deref(in.Local), in.Capacidade)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(eventoDomain.AggregateType, evento.ID.String(), eventoDomain.EventoCreated, evento)
	if err := s.repo.Create(ctx, evento, evt); err != nil {
		s.log.Error("Failed to create evento", zap.Error(err))
		return nil, err
	}
	return evento, nil
}

// GetEvento devuelve el evento con total_inscritos; cache-aside.
func (s *EventoService) GetEvento(ctx context.Context, id uuid.UUID) (*eventoDomain.EventoResumo, error) {
	key := eventoDomain.CacheKeyByID(id)
	if s.cache != nil {
		var e eventoDomain.EventoResumo
		if hit, _ := s.cache.Get(ctx, key, &e); hit {
			return &e, nil
		}
	}

	var evento *eventoDomain.EventoResumo
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		evento, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, sharedDomain.ErrNotFound) {
			return nil
		}
		return errRetry
	})
	if err != nil {
		s.log.Error("Failed to fetch evento", zap.String("evento_id", id.String()), zap.Error(err))
		return nil, err
	}
	if evento == nil {
		return nil, eventoDomain.ErrEventoNotFound
	}

	sharedCache.SetWithTimeout(ctx, s.cache, key, evento, s.log)
	return evento, nil
}

// UpdateEvento no deja bajar la capacidade por debajo de los inscritos actuales (lo comprueba el repo).
func (s *EventoService) UpdateEvento(ctx context.Context, id uuid.UUID, in EventoInput) (*eventoDomain.Evento, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	evento := current.Evento

	if in.Titulo != nil {
		evento.Titulo = strings.TrimSpace(*in.Titulo)
	}
	if in.Descricao != nil {
		evento.Descricao = *in.Descricao
	}
	if in.DataInicio != nil {
		evento.DataInicio = *in.DataInicio
	}
	if in.DataFim != nil {
		evento.DataFim = in.DataFim
	}
	if in.Local != nil {
		evento.Local = strings.TrimSpace(*in.Local)
	}
	if in.Capacidade != nil {
		evento.Capacidade = in.Capacidade
	}
	if err := evento.Validate(); err != nil {
		return nil, err
	}
	evento.UpdatedAt = time.Now().UTC()

	evt := sharedDomain.NewOutboxEvent(eventoDomain.AggregateType, evento.ID.String(), eventoDomain.EventoUpdated, &evento)
	if err := s.repo.Update(ctx, &evento, evt); err != nil {
		return nil, err
	}

	sharedCache.Invalidate(ctx, s.cache, s.log, eventoDomain.CacheKeyByID(id))
	return &evento, nil
}

func (s *EventoService) DeleteEvento(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.NewOutboxEvent(eventoDomain.AggregateType, id.String(), eventoDomain.EventoDeleted,
		eventoDomain.EventoDeletedPayload{ID: id})

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.Invalidate(ctx, s.cache, s.log, eventoDomain.CacheKeyByID(id))
	return nil
}

// ListEventos aplica búsqueda (titulo, local) y paginación.
func (s *EventoService) ListEventos(ctx context.Context, p sharedQuery.PaginationParams) (sharedQuery.Page[*eventoDomain.EventoResumo], error) {
	criteria := sharedDomain.And(sharedDomain.SearchCriteria{Fields: eventoDomain.SearchFields, Term: p.Search})

	eventos, total, err := s.repo.List(ctx, criteria, p)
	if err != nil {
		return sharedQuery.Page[*eventoDomain.EventoResumo]{}, err
	}
	return sharedQuery.NewPage(eventos, p, total), nil
}

// Inscrever registra a la pessoa; ErrEventoLotado o ErrJaInscrito si no es posible.
func (s *EventoService) Inscrever(ctx context.Context, eventoID, pessoaID uuid.UUID) (*eventoDomain.Inscricao, error) {
	inscricao, err := eventoDomain.NewInscricao(eventoID, pessoaID)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(eventoDomain.AggregateType, eventoID.String(), eventoDomain.InscricaoCriada, inscricao)
	if err := s.repo.Inscrever(ctx, inscricao, evt); err != nil {
		return nil, err
	}

	sharedCache.Invalidate(ctx, s.cache, s.log, eventoDomain.CacheKeyByID(eventoID))
	return inscricao, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
