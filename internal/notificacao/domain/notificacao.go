package domain

import (
	"context"
	"errors"
	"time"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/google/uuid"
)

// Notificacao es un aviso dirigido a una pessoa.
type Notificacao struct {
	ID           uuid.UUID `json:"id"`
	PessoaID     uuid.UUID `json:"pessoa_id"`
	Titulo       string    `json:"titulo"`
	Mensagem     string    `json:"mensagem"`
	Tipo         string    `json:"tipo"`
	ReferenciaID string    `json:"referencia_id,omitempty"`
	Lida         bool      `json:"lida"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewNotificacao(pessoaID uuid.UUID, titulo, mensagem, tipo, referenciaID string, now time.Time) (Notificacao, error) {
	if titulo == "" {
		return Notificacao{}, sharedDomain.InvalidInput(errors.New("titulo is required"))
	}
	return Notificacao{
		ID:           uuid.New(),
		PessoaID:     pessoaID,
		Titulo:       titulo,
		Mensagem:     mensagem,
		Tipo:         tipo,
		ReferenciaID: referenciaID,
		CreatedAt:    now,
	}, nil
}

type NotificacaoRepository interface {
	// ListActiveMemberIDs devuelve las pessoas con pertenencia activa en la célula.
	ListActiveMemberIDs(ctx context.Context, celulaID uuid.UUID) ([]uuid.UUID, error)
	// InsertBatch guarda todas las notificaciones con un único INSERT.
	InsertBatch(ctx context.Context, ns []Notificacao) (int, error)
}
