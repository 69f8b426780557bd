package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
)

// MembroService es lo que el consumidor necesita del módulo células.
type MembroService interface {
	DeactivateMembro(ctx context.Context, pessoaID uuid.UUID) ([]uuid.UUID, error)
}

// PessoaConsumer reacciona a eventos de pessoas: al borrar una pessoa se desactivan sus pertenencias.
type PessoaConsumer struct {
	service MembroService
	log     *zap.Logger
}

func NewPessoaConsumer(service MembroService, logger *zap.Logger) *PessoaConsumer {
	return &PessoaConsumer{
		service: service,
		log:     logger,
	}
}

func (c *PessoaConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for celula", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case sharedEvents.PessoaDeletedEvent:
		sharedUtils.UnmarshalAndHandle(c.log, base.Data, func(evt sharedEvents.PessoaDeleted) {
			c.withContext(ctx, evt.ID, func(ctxCelula context.Context) error {
				celulas, err := c.service.DeactivateMembro(ctxCelula, evt.ID)
				if err == nil && len(celulas) > 0 {
					c.log.Info("Membership deactivated", zap.String("pessoa_id", evt.ID.String()), zap.Int("celulas", len(celulas)))
				}
				return err
			})
		})

	default:
		// created/updated no afectan a las células
		c.log.Debug("Ignoring pessoa event", zap.String("type", base.Type), zap.String("key", key))
	}
}

func (c *PessoaConsumer) withContext(ctx context.Context, pessoaID uuid.UUID, action func(ctx context.Context) error) {
	ctxCelula, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := action(ctxCelula); err != nil {
		c.log.Warn("Failed to process pessoa event",
			zap.String("pessoa_id", pessoaID.String()),
			zap.Error(err),
		)
	}
}
