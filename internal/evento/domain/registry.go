package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	"github.com/google/uuid"
)

const (
	EventoCreated   = "evento.created"
	EventoUpdated   = "evento.updated"
	EventoDeleted   = "evento.deleted"
	InscricaoCriada = "evento.inscricao_criada"
)

const EventoTopic = "evento-events"

const AggregateType = "evento"

type EventoDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		EventoCreated:   {Type: reflect.TypeOf(Evento{}), Topic: EventoTopic},
		EventoUpdated:   {Type: reflect.TypeOf(Evento{}), Topic: EventoTopic},
		EventoDeleted:   {Type: reflect.TypeOf(EventoDeletedPayload{}), Topic: EventoTopic},
		InscricaoCriada: {Type: reflect.TypeOf(Inscricao{}), Topic: EventoTopic},
	}
}
