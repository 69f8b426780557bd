package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
)

// AuditRepo guarda la auditoría en la tabla audit_log.
type AuditRepo struct {
	db.Store
}

var _ auditDomain.AuditStore = (*AuditRepo)(nil)

func NewAuditRepo(conn *sql.DB, driver db.Driver) *AuditRepo {
	return &AuditRepo{Store: db.NewStore(conn, driver)}
}

func (r *AuditRepo) Log(ctx context.Context, e auditDomain.AuditEntry) error {
	_, err := r.DB.ExecContext(ctx, r.Q(
		`INSERT INTO audit_log (id, tabela, acao, registro_id, dados, ip_address, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Tabela, e.Acao, e.RegistroID, string(e.Dados), e.IPAddress, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit_log: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListByRegistro(ctx context.Context, tabela, registroID string) ([]auditDomain.AuditEntry, error) {
	rows, err := r.DB.QueryContext(ctx, r.Q(
		`SELECT id, tabela, acao, registro_id, dados, ip_address, created_at
		 FROM audit_log WHERE tabela = ? AND registro_id = ? ORDER BY created_at`), tabela, registroID)
	if err != nil {
		return nil, fmt.Errorf("list audit_log: %w", err)
	}
	defer rows.Close()

	var out []auditDomain.AuditEntry
	for rows.Next() {
		var (
			e     auditDomain.AuditEntry
			dados string
		)
		if err := rows.Scan(&e.ID, &e.Tabela, &e.Acao, &e.RegistroID, &dados, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Dados = json.RawMessage(dados)
		out = append(out, e)
	}
	return out, rows.Err()
}
