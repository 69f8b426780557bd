package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAtivo     Status = "ativo"
	StatusInativo   Status = "inativo"
	StatusVisitante Status = "visitante"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAtivo, StatusInativo, StatusVisitante:
		return true
	}
	return false
}

// Pessoa es el perfil de un miembro o visitante.
type Pessoa struct {
	ID             uuid.UUID  `json:"id"`
	Nome           string     `json:"nome"`
	Email          string     `json:"email,omitempty"`
	Telefone       string     `json:"telefone,omitempty"`
	DataNascimento *time.Time `json:"data_nascimento,omitempty"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (p *Pessoa) PartitionKey() string {
	return p.ID.String()
}

func NewPessoa(nome, email, telefone string, dataNascimento *time.Time, status Status) (*Pessoa, error) {
	if status == "" {
		status = StatusAtivo
	}
	now := time.Now().UTC()
	p := &Pessoa{
		ID:             uuid.New(),
		Nome:           strings.TrimSpace(nome),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Telefone:       telefone,
		DataNascimento: dataNascimento,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pessoa) Validate() error {
	if p.Nome == "" {
		return invalid(errors.New("nome is required"))
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return invalid(errors.New("invalid email"))
	}
	if !p.Status.Valid() {
		return invalid(errors.New("invalid status"))
	}
	return nil
}
