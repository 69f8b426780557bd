package application

import (
	"context"
	"fmt"
	"time"

	notificacaoDomain "github.com/davicafu/igrejalab/internal/notificacao/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificacaoService struct {
	repo notificacaoDomain.NotificacaoRepository
	log  *zap.Logger
}

func NewNotificacaoService(repo notificacaoDomain.NotificacaoRepository, log *zap.Logger) *NotificacaoService {
	return &NotificacaoService{repo: repo, log: log}
}

// NotifyMembers crea una notificación por miembro activo de la célula y devuelve cuántas se guardaron.
func (s *NotificacaoService) NotifyMembers(ctx context.Context, celulaID uuid.UUID, titulo, mensagem, tipo, referenciaID string) (int, error) {
	membros, err := s.repo.ListActiveMemberIDs(ctx, celulaID)
	if err != nil {
		return 0, fmt.Errorf("load celula members: %w", err)
	}
	if len(membros) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	ns := make([]notificacaoDomain.Notificacao, 0, len(membros))
	for _, pessoaID := range membros {
		n, err := notificacaoDomain.NewNotificacao(pessoaID, titulo, mensagem, tipo, referenciaID, now)
		if err != nil {
			return 0, err
		}
		ns = append(ns, n)
	}

	inserted, err := s.repo.InsertBatch(ctx, ns)
	if err != nil {
		return 0, fmt.Errorf("insert notificacoes: %w", err)
	}

	metrics.NotificationsCreated.Add(float64(inserted))
	s.log.Info("Celula members notified",
		zap.String("celula_id", celulaID.String()),
		zap.String("tipo", tipo),
		zap.Int("total", inserted),
	)
	return inserted, nil
}
