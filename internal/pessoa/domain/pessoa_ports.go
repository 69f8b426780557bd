package domain

import (
	"context"
	"fmt"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

var (
	ErrPessoaNotFound     = fmt.Errorf("pessoa %w", sharedDomain.ErrNotFound)
	ErrEmailAlreadyExists = fmt.Errorf("email already registered: %w", sharedDomain.ErrConflict)
)

func invalid(err error) error {
	return sharedDomain.InvalidInput(err)
}

// SortableFields son las columnas aceptadas en sortBy.
var SortableFields = []string{"created_at", "updated_at", "nome", "email", "status"}

// SearchFields son las columnas de la búsqueda libre.
var SearchFields = []string{"nome", "email"}

type PessoaRepository interface {
	// Debe devolver ErrEmailAlreadyExists si el email ya existe.
	Create(ctx context.Context, p *Pessoa, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pessoa, error)
	Update(ctx context.Context, p *Pessoa, evt sharedDomain.OutboxEvent) error
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	// List devuelve la página pedida y el total de filas que cumplen los criterios.
	List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*Pessoa, int, error)
}

func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("pessoa:id:%s", id.String())
}
