package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
)

const (
	PessoaCreated = "pessoa.created"
	PessoaUpdated = "pessoa.updated"
	PessoaDeleted = sharedEvents.PessoaDeletedEvent
)

const PessoaTopic = "pessoa-events"

const AggregateType = "pessoa"

// PessoaDeletedPayload es el payload del evento de borrado.
type PessoaDeletedPayload = sharedEvents.PessoaDeleted

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		PessoaCreated: {Type: reflect.TypeOf(Pessoa{}), Topic: PessoaTopic},
		PessoaUpdated: {Type: reflect.TypeOf(Pessoa{}), Topic: PessoaTopic},
		PessoaDeleted: {Type: reflect.TypeOf(PessoaDeletedPayload{}), Topic: PessoaTopic},
	}
}
