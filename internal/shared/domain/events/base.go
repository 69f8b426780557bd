package events

import (
	"encoding/json"
	"reflect"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// EventMetadata indica a qué tipo se decodifica el payload y en qué topic se publica.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}

// MergeRegistries une los registros de cada contexto en uno solo.
func MergeRegistries(registries ...map[string]EventMetadata) map[string]EventMetadata {
	out := make(map[string]EventMetadata)
	for _, r := range registries {
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}

// PartitionKey agrupa en la misma partición los eventos de un agregado.
func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}
