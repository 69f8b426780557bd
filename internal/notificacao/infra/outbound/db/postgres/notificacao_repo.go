package postgres

import (
	"context"
	"database/sql"
	"fmt"

	notificacaoDomain "github.com/davicafu/igrejalab/internal/notificacao/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	"github.com/google/uuid"
)

type NotificacaoRepo struct {
	db.Store
}

var _ notificacaoDomain.NotificacaoRepository = (*NotificacaoRepo)(nil)

func NewNotificacaoRepo(conn *sql.DB, driver db.Driver) *NotificacaoRepo {
	return &NotificacaoRepo{Store: db.NewStore(conn, driver)}
}

func (r *NotificacaoRepo) ListActiveMemberIDs(ctx context.Context, celulaID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.DB.QueryContext(ctx, r.Q(
		`SELECT pessoa_id FROM celula_membros WHERE celula_id = ? AND ativo = TRUE ORDER BY created_at`), celulaID)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var notificacaoColumns = []string{"id", "pessoa_id", "titulo", "mensagem", "tipo", "referencia_id", "lida", "created_at"}

func (r *NotificacaoRepo) InsertBatch(ctx context.Context, ns []notificacaoDomain.Notificacao) (int, error) {
	rows := make([][]interface{}, 0, len(ns))
	for _, n := range ns {
		rows = append(rows, []interface{}{n.ID, n.PessoaID, n.Titulo, n.Mensagem, n.Tipo, n.ReferenciaID, n.Lida, n.CreatedAt})
	}
	return db.InsertBatch(ctx, r.DB, r.Driver, "notificacoes", notificacaoColumns, rows)
}
