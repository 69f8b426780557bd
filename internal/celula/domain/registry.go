package domain

import (
	"reflect"
	"time"

	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	"github.com/google/uuid"
)

const (
	CelulaCreated      = "celula.created"
	CelulaUpdated      = "celula.updated"
	CelulaDeleted      = "celula.deleted"
	MembroAdicionado   = "celula.membro_adicionado"
	ReuniaoAgendada    = "celula.reuniao_agendada"
	PresencaRegistrada = "celula.presenca_registrada"
)

const CelulaTopic = "celula-events"

const AggregateType = "celula"

type CelulaDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type PresencaRegistradaPayload struct {
	RelatorioID uuid.UUID   `json:"relatorio_id"`
	CelulaID    uuid.UUID   `json:"celula_id"`
	DataReuniao time.Time   `json:"data_reuniao"`
	Presentes   []uuid.UUID `json:"presentes"`
	Visitantes  int         `json:"visitantes"`
}

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		CelulaCreated:      {Type: reflect.TypeOf(Celula{}), Topic: CelulaTopic},
		CelulaUpdated:      {Type: reflect.TypeOf(Celula{}), Topic: CelulaTopic},
		CelulaDeleted:      {Type: reflect.TypeOf(CelulaDeletedPayload{}), Topic: CelulaTopic},
		MembroAdicionado:   {Type: reflect.TypeOf(Membro{}), Topic: CelulaTopic},
		ReuniaoAgendada:    {Type: reflect.TypeOf(Reuniao{}), Topic: CelulaTopic},
		PresencaRegistrada: {Type: reflect.TypeOf(PresencaRegistradaPayload{}), Topic: CelulaTopic},
	}
}
