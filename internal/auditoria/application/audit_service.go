package application

import (
	"context"

	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	"go.uber.org/zap"
)

// AuditService escribe el registro de auditoría sin hacer fallar la petición que lo origina.
type AuditService struct {
	store auditDomain.AuditStore
	log   *zap.Logger
}

func NewAuditService(store auditDomain.AuditStore, log *zap.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// Record guarda la entrada; los errores solo se registran en el log.
func (s *AuditService) Record(ctx context.Context, tabela, acao, registroID string, dados interface{}, ip string) {
	entry, err := auditDomain.NewAuditEntry(tabela, acao, registroID, dados, ip)
	if err == nil {
		err = s.store.Log(ctx, entry)
	}
	if err != nil {
		s.log.Warn("Failed to write audit log",
			zap.String("tabela", tabela),
			zap.String("acao", acao),
			zap.String("registro_id", registroID),
			zap.Error(err),
		)
	}
}

func (s *AuditService) History(ctx context.Context, tabela, registroID string) ([]auditDomain.AuditEntry, error) {
	entries, err := s.store.ListByRegistro(ctx, tabela, registroID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []auditDomain.AuditEntry{}
	}
	return entries, nil
}
