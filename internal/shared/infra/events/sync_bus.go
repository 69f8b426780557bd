package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/igrejalab/internal/shared/infra/platform/bus"
)

// SyncEventBus entrega cada evento a sus handlers dentro de Publish.
// Lo usa el handler serverless, donde no hay goroutines vivas entre peticiones.
type SyncEventBus struct {
	handlers map[string][]MessageHandler
	mu       sync.RWMutex
}

var _ sharedBus.EventBus = (*SyncEventBus)(nil)

func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{handlers: make(map[string][]MessageHandler)}
}

func (b *SyncEventBus) Handle(topic string, handler MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish serializa el evento igual que Kafka y no vuelve hasta que todos los handlers terminan.
func (b *SyncEventBus) Publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var key string
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = keyer.PartitionKey()
	}

	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()

	for _, h := range handlers {
		h.HandleMessage(ctx, key, payload)
	}
	return nil
}
