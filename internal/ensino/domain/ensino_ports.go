package domain

import (
	"context"
	"fmt"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

var (
	ErrCursoNotFound     = fmt.Errorf("curso %w", sharedDomain.ErrNotFound)
	ErrLicaoNotFound     = fmt.Errorf("licao %w", sharedDomain.ErrNotFound)
	ErrProgressoNotFound = fmt.Errorf("progresso %w", sharedDomain.ErrNotFound)
	ErrJaMatriculado     = fmt.Errorf("pessoa is already enrolled in this curso: %w", sharedDomain.ErrConflict)
)

func invalid(err error) error {
	return sharedDomain.InvalidInput(err)
}

var (
	CursoSortableFields     = []string{"created_at", "updated_at", "titulo"}
	CursoSearchFields       = []string{"titulo", "descricao"}
	ProgressoSortableFields = []string{"created_at", "updated_at", "progresso_percent"}
)

type EnsinoRepository interface {
	CreateCurso(ctx context.Context, c *Curso, licoes []Licao, evt sharedDomain.OutboxEvent) error
	ListCursos(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*CursoResumo, int, error)
	GetCurso(ctx context.Context, id uuid.UUID) (*CursoDetalhe, error)
	GetLicao(ctx context.Context, id uuid.UUID) (*Licao, error)

	// Matricular crea la fila de progreso al 0%; ErrJaMatriculado si ya existe.
	Matricular(ctx context.Context, p *ProgressoCurso, evt sharedDomain.OutboxEvent) error
	// MarcarLicao hace upsert del progreso de la lição y recalcula el curso en la misma transacción.
	// Si la fila ya existía, p.ID pasa a ser el de esa fila.
	MarcarLicao(ctx context.Context, p *ProgressoLicao, cursoID uuid.UUID, evt sharedDomain.OutboxEvent) (*ProgressoCurso, error)
	// RecalcularProgresso vuelve a derivar el progreso del curso; es idempotente.
	RecalcularProgresso(ctx context.Context, pessoaID, cursoID uuid.UUID) (*ProgressoCurso, error)
	ListProgresso(ctx context.Context, pessoaID uuid.UUID, p sharedQuery.PaginationParams) ([]*ProgressoCurso, int, error)
}

func CacheKeyCurso(id uuid.UUID) string {
	return fmt.Sprintf("curso:id:%s", id.String())
}
