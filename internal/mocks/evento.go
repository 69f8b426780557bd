package mocks

import (
	"context"
	"sort"
	"sync"

	eventoDomain "github.com/davicafu/igrejalab/internal/evento/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

// InMemoryEventoRepo simula EventoRepository. Si Pessoas no es nil, Inscrever exige que la pessoa exista.
type InMemoryEventoRepo struct {
	Eventos     map[uuid.UUID]*eventoDomain.Evento
	Inscricoes  []*eventoDomain.Inscricao
	Pessoas     map[uuid.UUID]bool
	Outbox      []sharedDomain.OutboxEvent
	GetByIDCall int
	mu          sync.Mutex
}

var _ eventoDomain.EventoRepository = (*InMemoryEventoRepo)(nil)

func NewInMemoryEventoRepo() *InMemoryEventoRepo {
	return &InMemoryEventoRepo{Eventos: make(map[uuid.UUID]*eventoDomain.Evento)}
}

func (r *InMemoryEventoRepo) inscritos(eventoID uuid.UUID) int {
	n := 0
	for _, i := range r.Inscricoes {
		if i.EventoID == eventoID {
			n++
		}
	}
	return n
}

func (r *InMemoryEventoRepo) resumo(e *eventoDomain.Evento) *eventoDomain.EventoResumo {
	return &eventoDomain.EventoResumo{Evento: *e, TotalInscritos: r.inscritos(e.ID)}
}

func (r *InMemoryEventoRepo) Create(ctx context.Context, e *eventoDomain.Evento, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.Eventos[e.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryEventoRepo) GetByID(ctx context.Context, id uuid.UUID) (*eventoDomain.EventoResumo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetByIDCall++
	e, ok := r.Eventos[id]
	if !ok {
		return nil, eventoDomain.ErrEventoNotFound
	}
	return r.resumo(e), nil
}

func (r *InMemoryEventoRepo) Update(ctx context.Context, e *eventoDomain.Evento, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.Eventos[e.ID]
	if !ok {
		return eventoDomain.ErrEventoNotFound
	}
	if e.Capacidade != nil && *e.Capacidade < r.resumo(current).TotalInscritos {
		return eventoDomain.ErrCapacidadeAbaixoInscritos
	}
	cp := *e
	r.Eventos[e.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryEventoRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Eventos[id]; !ok {
		return eventoDomain.ErrEventoNotFound
	}
	delete(r.Eventos, id)
	kept := r.Inscricoes[:0]
	for _, i := range r.Inscricoes {
		if i.EventoID != id {
			kept = append(kept, i)
		}
	}
	r.Inscricoes = kept
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryEventoRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*eventoDomain.EventoResumo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*eventoDomain.EventoResumo
	for _, e := range r.Eventos {
		record := map[string]interface{}{
			"titulo": e.Titulo,
			"local":  e.Local,
		}
		if matches(record, criteria) {
			out = append(out, r.resumo(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if p.Ascending() {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, p), len(out), nil
}

func (r *InMemoryEventoRepo) Inscrever(ctx context.Context, i *eventoDomain.Inscricao, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.Eventos[i.EventoID]
	if !ok {
		return eventoDomain.ErrEventoNotFound
	}
	if r.Pessoas != nil && !r.Pessoas[i.PessoaID] {
		return eventoDomain.ErrPessoaNotFound
	}
	for _, existing := range r.Inscricoes {
		if existing.EventoID == i.EventoID && existing.PessoaID == i.PessoaID {
			return eventoDomain.ErrJaInscrito
		}
	}
	if r.resumo(e).Lotado() {
		return eventoDomain.ErrEventoLotado
	}

	cp := *i
	r.Inscricoes = append(r.Inscricoes, &cp)
	r.Outbox = append(r.Outbox, evt)
	return nil
}
