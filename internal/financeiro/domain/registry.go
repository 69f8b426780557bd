package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
)

const LancamentoCriado = sharedEvents.LancamentoCriadoEvent

const FinanceiroTopic = "financeiro-events"

const AggregateType = "lancamento"

type LancamentoCriadoPayload = sharedEvents.LancamentoCriado

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		LancamentoCriado: {Type: reflect.TypeOf(LancamentoCriadoPayload{}), Topic: FinanceiroTopic},
	}
}
