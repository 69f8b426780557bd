package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	ensinoDomain "github.com/davicafu/igrejalab/internal/ensino/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

type progressoKey struct {
	pessoa, ref uuid.UUID
}

// InMemoryEnsinoRepo simula EnsinoRepository con el mismo recálculo que la versión SQL.
type InMemoryEnsinoRepo struct {
	Cursos          map[uuid.UUID]*ensinoDomain.Curso
	Licoes          map[uuid.UUID]*ensinoDomain.Licao
	ProgressoLicoes map[progressoKey]*ensinoDomain.ProgressoLicao
	ProgressoCursos map[progressoKey]*ensinoDomain.ProgressoCurso
	Outbox          []sharedDomain.OutboxEvent
	mu              sync.Mutex
}

var _ ensinoDomain.EnsinoRepository = (*InMemoryEnsinoRepo)(nil)

func NewInMemoryEnsinoRepo() *InMemoryEnsinoRepo {
	return &InMemoryEnsinoRepo{
		Cursos:          make(map[uuid.UUID]*ensinoDomain.Curso),
		Licoes:          make(map[uuid.UUID]*ensinoDomain.Licao),
		ProgressoLicoes: make(map[progressoKey]*ensinoDomain.ProgressoLicao),
		ProgressoCursos: make(map[progressoKey]*ensinoDomain.ProgressoCurso),
	}
}

// Progresso devuelve la fila de progreso del curso, si existe.
func (r *InMemoryEnsinoRepo) Progresso(pessoaID, cursoID uuid.UUID) (*ensinoDomain.ProgressoCurso, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.ProgressoCursos[progressoKey{pessoaID, cursoID}]
	return p, ok
}

func (r *InMemoryEnsinoRepo) CreateCurso(ctx context.Context, c *ensinoDomain.Curso, licoes []ensinoDomain.Licao, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.Cursos[c.ID] = &cp
	for i := range licoes {
		l := licoes[i]
		r.Licoes[l.ID] = &l
	}
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryEnsinoRepo) ListCursos(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*ensinoDomain.CursoResumo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*ensinoDomain.CursoResumo
	for _, c := range r.Cursos {
		if !matches(map[string]interface{}{"titulo": c.Titulo, "descricao": c.Descricao}, criteria) {
			continue
		}
		out = append(out, &ensinoDomain.CursoResumo{Curso: *c, TotalLicoes: r.totalLicoes(c.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Titulo < out[j].Titulo })
	return paginate(out, p), len(out), nil
}

func (r *InMemoryEnsinoRepo) GetCurso(ctx context.Context, id uuid.UUID) (*ensinoDomain.CursoDetalhe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Cursos[id]
	if !ok {
		return nil, ensinoDomain.ErrCursoNotFound
	}
	d := &ensinoDomain.CursoDetalhe{Curso: *c, Licoes: []ensinoDomain.Licao{}}
	for _, l := range r.Licoes {
		if l.CursoID == id {
			d.Licoes = append(d.Licoes, *l)
		}
	}
	sort.Slice(d.Licoes, func(i, j int) bool { return d.Licoes[i].Ordem < d.Licoes[j].Ordem })
	return d, nil
}

func (r *InMemoryEnsinoRepo) GetLicao(ctx context.Context, id uuid.UUID) (*ensinoDomain.Licao, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Licoes[id]
	if !ok {
		return nil, ensinoDomain.ErrLicaoNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *InMemoryEnsinoRepo) Matricular(ctx context.Context, p *ensinoDomain.ProgressoCurso, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Cursos[p.CursoID]; !ok {
		return ensinoDomain.ErrCursoNotFound
	}
	key := progressoKey{p.PessoaID, p.CursoID}
	if _, ok := r.ProgressoCursos[key]; ok {
		return ensinoDomain.ErrJaMatriculado
	}
	p.TotalLicoes = r.totalLicoes(p.CursoID)
	cp := *p
	r.ProgressoCursos[key] = &cp
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryEnsinoRepo) MarcarLicao(ctx context.Context, p *ensinoDomain.ProgressoLicao, cursoID uuid.UUID, evt sharedDomain.OutboxEvent) (*ensinoDomain.ProgressoCurso, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressoKey{p.PessoaID, p.LicaoID}
	if existing, ok := r.ProgressoLicoes[key]; ok {
		p.ID = existing.ID
	}
	cp := *p
	r.ProgressoLicoes[key] = &cp
	r.Outbox = append(r.Outbox, evt)
	return r.recalcular(p.PessoaID, cursoID, p.UpdatedAt), nil
}

func (r *InMemoryEnsinoRepo) RecalcularProgresso(ctx context.Context, pessoaID, cursoID uuid.UUID) (*ensinoDomain.ProgressoCurso, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Cursos[cursoID]; !ok {
		return nil, ensinoDomain.ErrCursoNotFound
	}
	return r.recalcular(pessoaID, cursoID, time.Now().UTC()), nil
}

func (r *InMemoryEnsinoRepo) ListProgresso(ctx context.Context, pessoaID uuid.UUID, p sharedQuery.PaginationParams) ([]*ensinoDomain.ProgressoCurso, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ensinoDomain.ProgressoCurso
	for key, pc := range r.ProgressoCursos {
		if key.pessoa == pessoaID {
			cp := *pc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, p), len(out), nil
}

func (r *InMemoryEnsinoRepo) totalLicoes(cursoID uuid.UUID) int {
	n := 0
	for _, l := range r.Licoes {
		if l.CursoID == cursoID {
			n++
		}
	}
	return n
}

func (r *InMemoryEnsinoRepo) recalcular(pessoaID, cursoID uuid.UUID, now time.Time) *ensinoDomain.ProgressoCurso {
	concluidas := 0
	for key, pl := range r.ProgressoLicoes {
		if l, ok := r.Licoes[key.ref]; ok && key.pessoa == pessoaID && l.CursoID == cursoID && pl.Concluida {
			concluidas++
		}
	}
	p := ensinoDomain.CalcularProgresso(pessoaID, cursoID, concluidas, r.totalLicoes(cursoID), now)

	key := progressoKey{pessoaID, cursoID}
	if existing, ok := r.ProgressoCursos[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		if p.Concluido && existing.DataConclusao != nil {
			p.DataConclusao = existing.DataConclusao
		}
	}
	r.ProgressoCursos[key] = p
	cp := *p
	return &cp
}
