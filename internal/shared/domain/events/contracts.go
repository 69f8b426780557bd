package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contratos de integración entre contextos, no entidades del dominio.
// Los tipos de evento coinciden con los que registra cada contexto.
const (
	PessoaDeletedEvent    = "pessoa.deleted"
	LicaoMarcadaEvent     = "ensino.licao_marcada"
	LancamentoCriadoEvent = "financeiro.lancamento_criado"
)

type PessoaDeleted struct {
	ID uuid.UUID `json:"id"`
}

type LicaoMarcada struct {
	PessoaID         uuid.UUID `json:"pessoa_id"`
	LicaoID          uuid.UUID `json:"licao_id"`
	CursoID          uuid.UUID `json:"curso_id"`
	ProgressoPercent int       `json:"progresso_percent"`
	Concluida        bool      `json:"concluida"`
}

type LancamentoCriado struct {
	ID             uuid.UUID       `json:"id"`
	Tipo           string          `json:"tipo"`
	Categoria      string          `json:"categoria"`
	Valor          decimal.Decimal `json:"valor"`
	DataLancamento time.Time       `json:"data_lancamento"`
}
