package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Evento struct {
	ID         uuid.UUID  `json:"id"`
	Titulo     string     `json:"titulo"`
	Descricao  string     `json:"descricao,omitempty"`
	DataInicio time.Time  `json:"data_inicio"`
	DataFim    *time.Time `json:"data_fim,omitempty"`
	Local      string     `json:"local,omitempty"`
	Capacidade *int       `json:"capacidade,omitempty"` // nil = sin límite
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (e *Evento) PartitionKey() string {
	return e.ID.String()
}

// EventoResumo es el evento con el número de inscritos.
type EventoResumo struct {
	Evento
	TotalInscritos int `json:"total_inscritos"`
}

// Lotado indica si ya no caben más inscritos.
func (e *EventoResumo) Lotado() bool {
	return e.Capacidade != nil && e.TotalInscritos >= *e.Capacidade
}

func NewEvento(titulo, descricao string, dataInicio time.Time, dataFim *time.Time, local string, capacidade *int) (*Evento, error) {
	now := time.Now().UTC()
	e := &Evento{
		ID:         uuid.New(),
		Titulo:     strings.TrimSpace(titulo),
		Descricao:  descricao,
		DataInicio: dataInicio,
		DataFim:    dataFim,
		Local:      strings.TrimSpace(local),
		Capacidade: capacidade,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Evento) Validate() error {
	if e.Titulo == "" {
		return invalid(errors.New("titulo is required"))
	}
	if e.DataInicio.IsZero() {
		return invalid(errors.New("data_inicio is required"))
	}
	if e.DataFim != nil && e.DataFim.Before(e.DataInicio) {
		return invalid(errors.New("data_fim must not be before data_inicio"))
	}
	if e.Capacidade != nil && *e.Capacidade < 1 {
		return invalid(errors.New("capacidade must be at least 1"))
	}
	return nil
}

type Inscricao struct {
	ID        uuid.UUID `json:"id"`
	EventoID  uuid.UUID `json:"evento_id"`
	PessoaID  uuid.UUID `json:"pessoa_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewInscricao(eventoID, pessoaID uuid.UUID) (*Inscricao, error) {
	if eventoID == uuid.Nil || pessoaID == uuid.Nil {
		return nil, invalid(errors.New("evento_id and pessoa_id are required"))
	}
	return &Inscricao{
		ID:        uuid.New(),
		EventoID:  eventoID,
		PessoaID:  pessoaID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
