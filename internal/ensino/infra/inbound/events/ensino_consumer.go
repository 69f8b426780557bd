package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ensinoDomain "github.com/davicafu/igrejalab/internal/ensino/domain"
	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
)

type ProgressoService interface {
	RecalcularProgresso(ctx context.Context, pessoaID, cursoID uuid.UUID) (*ensinoDomain.ProgressoCurso, error)
}

// EnsinoConsumer repite el recálculo del curso tras cada lição marcada.
// Si la transacción original ya lo hizo, el resultado es el mismo.
type EnsinoConsumer struct {
	service ProgressoService
	log     *zap.Logger
}

func NewEnsinoConsumer(service ProgressoService, logger *zap.Logger) *EnsinoConsumer {
	return &EnsinoConsumer{service: service, log: logger}
}

func (c *EnsinoConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for ensino", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case sharedEvents.LicaoMarcadaEvent:
		sharedUtils.UnmarshalAndHandle(c.log, base.Data, func(evt sharedEvents.LicaoMarcada) {
			ctxEnsino, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()

			p, err := c.service.RecalcularProgresso(ctxEnsino, evt.PessoaID, evt.CursoID)
			if err != nil {
				c.log.Warn("Failed to recalculate course progress",
					zap.String("pessoa_id", evt.PessoaID.String()),
					zap.String("curso_id", evt.CursoID.String()),
					zap.Error(err),
				)
				return
			}
			c.log.Debug("Course progress reconciled",
				zap.String("pessoa_id", evt.PessoaID.String()),
				zap.Int("progresso_percent", p.ProgressoPercent),
			)
		})

	default:
		c.log.Debug("Ignoring ensino event", zap.String("type", base.Type), zap.String("key", key))
	}
}
