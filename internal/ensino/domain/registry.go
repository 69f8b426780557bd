package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
)

const (
	CursoCreated    = "ensino.curso_created"
	MatriculaCriada = "ensino.matricula_criada"
	LicaoMarcada    = sharedEvents.LicaoMarcadaEvent
)

const EnsinoTopic = "ensino-events"

const AggregateType = "ensino"

type LicaoMarcadaPayload = sharedEvents.LicaoMarcada

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		CursoCreated:    {Type: reflect.TypeOf(Curso{}), Topic: EnsinoTopic},
		MatriculaCriada: {Type: reflect.TypeOf(ProgressoCurso{}), Topic: EnsinoTopic},
		LicaoMarcada:    {Type: reflect.TypeOf(LicaoMarcadaPayload{}), Topic: EnsinoTopic},
	}
}
