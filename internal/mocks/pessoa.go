package mocks

import (
	"context"
	"sort"
	"sync"

	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

// InMemoryPessoaRepo simula PessoaRepository con outbox incluido.
type InMemoryPessoaRepo struct {
	Pessoas map[uuid.UUID]*pessoaDomain.Pessoa
	Outbox  []sharedDomain.OutboxEvent
	mu      sync.Mutex
}

var _ pessoaDomain.PessoaRepository = (*InMemoryPessoaRepo)(nil)

func NewInMemoryPessoaRepo() *InMemoryPessoaRepo {
	return &InMemoryPessoaRepo{Pessoas: make(map[uuid.UUID]*pessoaDomain.Pessoa)}
}

func (r *InMemoryPessoaRepo) Create(ctx context.Context, p *pessoaDomain.Pessoa, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Pessoas {
		if p.Email != "" && existing.Email == p.Email {
			return pessoaDomain.ErrEmailAlreadyExists
		}
	}
	cp := *p
	r.Pessoas[p.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryPessoaRepo) GetByID(ctx context.Context, id uuid.UUID) (*pessoaDomain.Pessoa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Pessoas[id]
	if !ok {
		return nil, pessoaDomain.ErrPessoaNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryPessoaRepo) Update(ctx context.Context, p *pessoaDomain.Pessoa, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Pessoas[p.ID]; !ok {
		return pessoaDomain.ErrPessoaNotFound
	}
	cp := *p
	r.Pessoas[p.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryPessoaRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Pessoas[id]; !ok {
		return pessoaDomain.ErrPessoaNotFound
	}
	delete(r.Pessoas, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// List ordena siempre por created_at; suficiente para los tests de servicio.
func (r *InMemoryPessoaRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*pessoaDomain.Pessoa, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*pessoaDomain.Pessoa
	for _, pessoa := range r.Pessoas {
		record := map[string]interface{}{
			"nome":   pessoa.Nome,
			"email":  pessoa.Email,
			"status": string(pessoa.Status),
		}
		if matches(record, criteria) {
			out = append(out, pessoa)
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
