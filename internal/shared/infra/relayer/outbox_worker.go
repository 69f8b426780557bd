package relayer

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedDomainEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	sharedBus "github.com/davicafu/igrejalab/internal/shared/infra/platform/bus"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/metrics"
	"go.uber.org/zap"
)

// Worker procesa eventos pendientes de la tabla outbox de forma genérica.
type Worker struct {
	repo          sharedDomain.OutboxRepository
	publisher     sharedBus.EventBus
	eventRegistry map[string]sharedDomainEvents.EventMetadata
	interval      time.Duration
	batchSize     int
	log           *zap.Logger
}

func NewOutboxWorker(
	repo sharedDomain.OutboxRepository,
	publisher sharedBus.EventBus,
	registry map[string]sharedDomainEvents.EventMetadata,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		repo:          repo,
		publisher:     publisher,
		eventRegistry: registry,
		interval:      interval,
		batchSize:     batchSize,
		log:           log,
	}
}

// Start bloquea hasta que se cancela ctx; lanzarlo con go.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Outbox worker iniciado", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Outbox worker detenido.")
			return
		case <-ticker.C:
			w.log.Debug("🔄 Ejecutando polling de outbox")
			w.ProcessBatch(ctx)
		}
	}
}

func (w *Worker) ProcessBatch(ctx context.Context) {
	events, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener eventos pendientes", zap.Error(err))
		return
	}
	if len(events) > 0 {
		w.log.Info("📬 eventos encontrados para procesar", zap.Int("count", len(events)))
	}

	for _, evt := range events {
		w.publishAndMark(ctx, evt)
	}
}

func (w *Worker) publishAndMark(ctx context.Context, evt sharedDomain.OutboxEvent) {
	metadata, ok := w.eventRegistry[evt.EventType]
	if !ok {
		// Se queda pendiente hasta que algún registro lo conozca.
		w.log.Error("Tipo de evento desconocido en registro", zap.String("event_type", evt.EventType))
		return
	}

	integrationEvt, err := toIntegrationEvent(evt, metadata)
	if err != nil {
		w.log.Error("Error al decodificar payload del evento", zap.String("event_id", evt.ID.String()), zap.Error(err))
		return
	}

	if err := w.publisher.Publish(ctx, metadata.Topic, integrationEvt); err != nil {
		w.log.Warn("⚠️ No se pudo publicar evento",
			zap.String("event_id", evt.ID.String()),
			zap.Error(err),
		)
		metrics.OutboxEventsPublished.WithLabelValues(evt.EventType, "failed").Inc()
		return // se reintenta en el siguiente ciclo
	}
	metrics.OutboxEventsPublished.WithLabelValues(evt.EventType, "published").Inc()

	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		w.log.Warn("⚠️ No se pudo marcar evento como procesado",
			zap.String("event_id", evt.ID.String()),
			zap.Error(err),
		)
	} else {
		w.log.Info("✅ Evento publicado y marcado",
			zap.String("event_id", evt.ID.String()),
			zap.String("event_type", evt.EventType),
			zap.String("topic", metadata.Topic),
		)
	}
}

// toIntegrationEvent valida el payload contra el tipo registrado y lo envuelve.
func toIntegrationEvent(evt sharedDomain.OutboxEvent, metadata sharedDomainEvents.EventMetadata) (sharedDomainEvents.IntegrationEvent, error) {
	typed := reflect.New(metadata.Type).Interface()

	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return sharedDomainEvents.IntegrationEvent{}, err
	}
	if err := json.Unmarshal(payloadBytes, typed); err != nil {
		return sharedDomainEvents.IntegrationEvent{}, err
	}
	data, err := json.Marshal(typed)
	if err != nil {
		return sharedDomainEvents.IntegrationEvent{}, err
	}

	return sharedDomainEvents.IntegrationEvent{
		Type:      evt.EventType,
		Key:       evt.AggregateID,
		Timestamp: evt.CreatedAt,
		Data:      data,
	}, nil
}
