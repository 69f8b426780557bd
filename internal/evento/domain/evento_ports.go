package domain

import (
	"context"
	"fmt"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

var (
	ErrEventoNotFound = fmt.Errorf("evento %w", sharedDomain.ErrNotFound)
	ErrPessoaNotFound = fmt.Errorf("pessoa %w", sharedDomain.ErrNotFound)
	ErrJaInscrito     = fmt.Errorf("pessoa already registered for evento: %w", sharedDomain.ErrConflict)
	ErrEventoLotado   = fmt.Errorf("evento is full: %w", sharedDomain.ErrConflict)

	ErrCapacidadeAbaixoInscritos = fmt.Errorf("capacidade is below the number of inscritos: %w", sharedDomain.ErrInvalidInput)
)

func invalid(err error) error {
	return sharedDomain.InvalidInput(err)
}

var SortableFields = []string{"created_at", "updated_at", "titulo", "data_inicio", "local"}

var SearchFields = []string{"titulo", "local"}

type EventoRepository interface {
	Create(ctx context.Context, e *Evento, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*EventoResumo, error)
	// Update rechaza con ErrCapacidadeAbaixoInscritos una capacidade menor que las inscrições,
	// contadas en la misma transacción.
	Update(ctx context.Context, e *Evento, evt sharedDomain.OutboxEvent) error
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*EventoResumo, int, error)
	// Inscrever comprueba capacidad y duplicados dentro de la misma transacción que el insert.
	Inscrever(ctx context.Context, i *Inscricao, evt sharedDomain.OutboxEvent) error
}

func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("evento:id:%s", id.String())
}
