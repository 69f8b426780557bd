package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/igrejalab/internal/shared/infra/platform/bus"
)

// InMemoryEventBus reparte los eventos de cada topic entre sus suscriptores (canales de Go).
type InMemoryEventBus struct {
	subscribers map[string][]chan interface{}
	mu          sync.RWMutex
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make(map[string][]chan interface{}),
	}
}

// Publish serializa el evento y lo entrega como []byte, igual que llegaría desde Kafka.
// Si el buffer de un suscriptor está lleno el mensaje se descarta para él.
func (b *InMemoryEventBus) Publish(ctx context.Context, topic string, event interface{}) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := b.subscribers[topic]
	b.mu.RUnlock()

	for _, subChan := range subs {
		select {
		case subChan <- payloadBytes:
		default:
		}
	}
	return nil
}

// Subscribe devuelve un canal que recibe los eventos del topic.
func (b *InMemoryEventBus) Subscribe(topic string, bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan interface{}, bufferSize)
	b.subscribers[topic] = append(b.subscribers[topic], subChan)
	return subChan
}
