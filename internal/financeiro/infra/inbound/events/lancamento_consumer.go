package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
)

type AnalyticsService interface {
	RegistrarAnalytics(ctx context.Context, ls ...*finDomain.Lancamento) error
}

// LancamentoConsumer alimenta el almacén analítico con cada lançamento creado.
type LancamentoConsumer struct {
	service AnalyticsService
	log     *zap.Logger
}

func NewLancamentoConsumer(service AnalyticsService, logger *zap.Logger) *LancamentoConsumer {
	return &LancamentoConsumer{service: service, log: logger}
}

func (c *LancamentoConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for financeiro", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case sharedEvents.LancamentoCriadoEvent:
		sharedUtils.UnmarshalAndHandle(c.log, base.Data, func(evt sharedEvents.LancamentoCriado) {
			ctxFin, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			l := &finDomain.Lancamento{
				ID:             evt.ID,
				Tipo:           finDomain.Tipo(evt.Tipo),
				Categoria:      evt.Categoria,
				Valor:          evt.Valor,
				DataLancamento: evt.DataLancamento,
			}
			if err := c.service.RegistrarAnalytics(ctxFin, l); err != nil {
				c.log.Warn("Failed to log lancamento to analytics",
					zap.String("lancamento_id", evt.ID.String()),
					zap.Error(err),
				)
				return
			}
			c.log.Debug("Lancamento logged to analytics", zap.String("lancamento_id", evt.ID.String()))
		})

	default:
		c.log.Debug("Ignoring financeiro event", zap.String("type", base.Type), zap.String("key", key))
	}
}
