package mocks

import (
	"context"
	"sort"
	"sync"

	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// InMemoryCelulaRepo simula CelulaRepository. No valida que las pessoas existan.
type InMemoryCelulaRepo struct {
	Celulas    map[uuid.UUID]*celulaDomain.Celula
	Membros    []*celulaDomain.Membro
	Reunioes   []*celulaDomain.Reuniao
	Relatorios []*celulaDomain.Relatorio
	Presencas  []celulaDomain.Presenca
	Outbox     []sharedDomain.OutboxEvent

	// DetalheCalls cuenta las lecturas de detalle que llegan al repositorio.
	DetalheCalls int
	mu           sync.Mutex
}

var _ celulaDomain.CelulaRepository = (*InMemoryCelulaRepo)(nil)

func NewInMemoryCelulaRepo() *InMemoryCelulaRepo {
	return &InMemoryCelulaRepo{Celulas: make(map[uuid.UUID]*celulaDomain.Celula)}
}

func (r *InMemoryCelulaRepo) Create(ctx context.Context, c *celulaDomain.Celula, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.Celulas[c.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCelulaRepo) GetByID(ctx context.Context, id uuid.UUID) (*celulaDomain.Celula, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Celulas[id]
	if !ok {
		return nil, celulaDomain.ErrCelulaNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCelulaRepo) GetDetalhe(ctx context.Context, id uuid.UUID) (*celulaDomain.CelulaDetalhe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DetalheCalls++

	c, ok := r.Celulas[id]
	if !ok {
		return nil, celulaDomain.ErrCelulaNotFound
	}
	d := &celulaDomain.CelulaDetalhe{Celula: *c, Membros: []celulaDomain.Membro{}, Relatorios: []celulaDomain.Relatorio{}}
	for _, m := range r.Membros {
		if m.CelulaID == id {
			d.Membros = append(d.Membros, *m)
		}
	}
	for _, rel := range r.Relatorios {
		if rel.CelulaID == id {
			d.Relatorios = append(d.Relatorios, *rel)
		}
	}
	return d, nil
}

func (r *InMemoryCelulaRepo) Update(ctx context.Context, c *celulaDomain.Celula, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Celulas[c.ID]; !ok {
		return celulaDomain.ErrCelulaNotFound
	}
	cp := *c
	r.Celulas[c.ID] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCelulaRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Celulas[id]; !ok {
		return celulaDomain.ErrCelulaNotFound
	}
	delete(r.Celulas, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCelulaRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*celulaDomain.CelulaResumo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*celulaDomain.CelulaResumo
	for _, c := range r.Celulas {
		record := map[string]interface{}{"nome": c.Nome, "descricao": c.Descricao}
		if !matches(record, criteria) {
			continue
		}
		resumo := &celulaDomain.CelulaResumo{Celula: *c}
		for _, m := range r.Membros {
			if m.CelulaID == c.ID && m.Ativo {
				resumo.TotalMembros++
			}
		}
		for _, rel := range r.Relatorios {
			if rel.CelulaID == c.ID {
				resumo.TotalRelatorios++
			}
		}
		out = append(out, resumo)
	}
	sort.Slice(out, func(i, j int) bool {
		if p.Ascending() {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, p), len(out), nil
}

func (r *InMemoryCelulaRepo) AddMembro(ctx context.Context, m *celulaDomain.Membro, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Membros {
		if existing.CelulaID == m.CelulaID && existing.PessoaID == m.PessoaID {
			if existing.Ativo {
				return celulaDomain.ErrMembroAlreadyExists
			}
			existing.Ativo = true
			m.ID = existing.ID
			r.Outbox = append(r.Outbox, evt)
			return nil
		}
	}
	cp := *m
	r.Membros = append(r.Membros, &cp)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCelulaRepo) DeactivateMembro(ctx context.Context, pessoaID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var celulas []uuid.UUID
	for _, m := range r.Membros {
		if m.PessoaID == pessoaID && m.Ativo {
			m.Ativo = false
			celulas = append(celulas, m.CelulaID)
		}
	}
	return celulas, nil
}

func (r *InMemoryCelulaRepo) CreateReuniao(ctx context.Context, reuniao *celulaDomain.Reuniao, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *reuniao
	r.Reunioes = append(r.Reunioes, &cp)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCelulaRepo) RegistrarPresenca(ctx context.Context, rel *celulaDomain.Relatorio, presencas []celulaDomain.Presenca, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rel
	r.Relatorios = append(r.Relatorios, &cp)
	r.Presencas = append(r.Presencas, presencas...)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// MockMemberNotifier simula el aviso a miembros.
type MockMemberNotifier struct {
	mock.Mock
}

func (m *MockMemberNotifier) NotifyMembers(ctx context.Context, celulaID uuid.UUID, titulo, mensagem, tipo, referenciaID string) (int, error) {
	args := m.Called(ctx, celulaID, titulo, mensagem, tipo, referenciaID)
	return args.Int(0), args.Error(1)
}

var _ celulaDomain.MemberNotifier = (*MockMemberNotifier)(nil)
