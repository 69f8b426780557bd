package domain

import (
	"context"
	"fmt"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

var (
	ErrCelulaNotFound      = fmt.Errorf("celula %w", sharedDomain.ErrNotFound)
	ErrMembroAlreadyExists = fmt.Errorf("pessoa is already a member of this celula: %w", sharedDomain.ErrConflict)
	ErrPessoaNotFound      = fmt.Errorf("pessoa %w", sharedDomain.ErrNotFound)
)

func invalid(err error) error {
	return sharedDomain.InvalidInput(err)
}

var SortableFields = []string{"created_at", "updated_at", "nome", "dia_semana"}

var SearchFields = []string{"nome", "descricao"}

type CelulaRepository interface {
	Create(ctx context.Context, c *Celula, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Celula, error)
	// GetDetalhe trae líderes, miembros y relatorios.
	GetDetalhe(ctx context.Context, id uuid.UUID) (*CelulaDetalhe, error)
	Update(ctx context.Context, c *Celula, evt sharedDomain.OutboxEvent) error
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*CelulaResumo, int, error)

	// AddMembro devuelve ErrMembroAlreadyExists si la pessoa ya es miembro activo.
	AddMembro(ctx context.Context, m *Membro, evt sharedDomain.OutboxEvent) error
	// DeactivateMembro marca como inactivas todas las pertenencias de la pessoa
	// y devuelve los ids de las células afectadas.
	DeactivateMembro(ctx context.Context, pessoaID uuid.UUID) ([]uuid.UUID, error)
	CreateReuniao(ctx context.Context, r *Reuniao, evt sharedDomain.OutboxEvent) error
	// RegistrarPresenca guarda el relatorio y sus presenças en una sola transacción.
	RegistrarPresenca(ctx context.Context, r *Relatorio, presencas []Presenca, evt sharedDomain.OutboxEvent) error
}

// MemberNotifier avisa a los miembros activos de una célula.
type MemberNotifier interface {
	NotifyMembers(ctx context.Context, celulaID uuid.UUID, titulo, mensagem, tipo, referenciaID string) (int, error)
}

func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("celula:id:%s", id.String())
}
