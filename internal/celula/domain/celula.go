package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Celula es un grupo pequeño que se reúne semanalmente.
type Celula struct {
	ID            uuid.UUID  `json:"id"`
	Nome          string     `json:"nome"`
	Descricao     string     `json:"descricao,omitempty"`
	LiderID       *uuid.UUID `json:"lider_id,omitempty"`
	SupervisorID  *uuid.UUID `json:"supervisor_id,omitempty"`
	CoordenadorID *uuid.UUID `json:"coordenador_id,omitempty"`
	DiaSemana     string     `json:"dia_semana,omitempty"`
	Horario       string     `json:"horario,omitempty"`
	Endereco      string     `json:"endereco,omitempty"`
	Ativa         bool       `json:"ativa"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (c *Celula) PartitionKey() string {
	return c.ID.String()
}

func NewCelula(nome, descricao string) (*Celula, error) {
	now := time.Now().UTC()
	c := &Celula{
		ID:        uuid.New(),
		Nome:      strings.TrimSpace(nome),
		Descricao: descricao,
		Ativa:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Celula) Validate() error {
	if c.Nome == "" {
		return invalid(errors.New("nome is required"))
	}
	return nil
}

// CelulaResumo es la fila del listado, con los contadores agregados.
type CelulaResumo struct {
	Celula
	TotalMembros    int `json:"total_membros"`
	TotalRelatorios int `json:"total_relatorios"`
}

// PessoaRef es la vista mínima de una pessoa dentro del detalle.
type PessoaRef struct {
	ID    uuid.UUID `json:"id"`
	Nome  string    `json:"nome"`
	Email string    `json:"email,omitempty"`
}

// Membro es la pertenencia de una pessoa a una célula.
type Membro struct {
	ID        uuid.UUID `json:"id"`
	CelulaID  uuid.UUID `json:"celula_id"`
	PessoaID  uuid.UUID `json:"pessoa_id"`
	Nome      string    `json:"nome,omitempty"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMembro(celulaID, pessoaID uuid.UUID) *Membro {
	return &Membro{
		ID:        uuid.New(),
		CelulaID:  celulaID,
		PessoaID:  pessoaID,
		Ativo:     true,
		CreatedAt: time.Now().UTC(),
	}
}

// CelulaDetalhe es la respuesta de GET /celulas/:id.
type CelulaDetalhe struct {
	Celula
	Lider       *PessoaRef  `json:"lider"`
	Supervisor  *PessoaRef  `json:"supervisor"`
	Coordenador *PessoaRef  `json:"coordenador"`
	Membros     []Membro    `json:"membros"`
	Relatorios  []Relatorio `json:"relatorios"`
}

// Reuniao es una reunión agendada.
type Reuniao struct {
	ID          uuid.UUID `json:"id"`
	CelulaID    uuid.UUID `json:"celula_id"`
	DataReuniao time.Time `json:"data_reuniao"`
	Tema        string    `json:"tema,omitempty"`
	Local       string    `json:"local,omitempty"`
	Observacoes string    `json:"observacoes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewReuniao(celulaID uuid.UUID, data time.Time, tema, local, observacoes string) (*Reuniao, error) {
	if data.IsZero() {
		return nil, invalid(errors.New("data_reuniao is required"))
	}
	return &Reuniao{
		ID:          uuid.New(),
		CelulaID:    celulaID,
		DataReuniao: data.UTC(),
		Tema:        tema,
		Local:       local,
		Observacoes: observacoes,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Relatorio es el informe de asistencia de una reunión.
type Relatorio struct {
	ID          uuid.UUID `json:"id"`
	CelulaID    uuid.UUID `json:"celula_id"`
	DataReuniao time.Time `json:"data_reuniao"`
	Tema        string    `json:"tema,omitempty"`
	Visitantes  int       `json:"visitantes"`
	Observacoes string    `json:"observacoes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Presenca es una fila por miembro presente en un relatorio.
type Presenca struct {
	ID          uuid.UUID `json:"id"`
	RelatorioID uuid.UUID `json:"relatorio_id"`
	PessoaID    uuid.UUID `json:"pessoa_id"`
	Presente    bool      `json:"presente"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRelatorioPresenca crea el relatorio y una presença por pessoa (sin repetir ids).
func NewRelatorioPresenca(celulaID uuid.UUID, data time.Time, tema string, visitantes int, observacoes string, presentes []uuid.UUID) (*Relatorio, []Presenca, error) {
	if data.IsZero() {
		return nil, nil, invalid(errors.New("data_reuniao is required"))
	}
	if visitantes < 0 {
		return nil, nil, invalid(errors.New("visitantes must be >= 0"))
	}

	now := time.Now().UTC()
	rel := &Relatorio{
		ID:          uuid.New(),
		CelulaID:    celulaID,
		DataReuniao: data.UTC(),
		Tema:        tema,
		Visitantes:  visitantes,
		Observacoes: observacoes,
		CreatedAt:   now,
	}

	seen := make(map[uuid.UUID]bool, len(presentes))
	presencas := make([]Presenca, 0, len(presentes))
	for _, pessoaID := range presentes {
		if seen[pessoaID] {
			continue
		}
		seen[pessoaID] = true
		presencas = append(presencas, Presenca{
			ID:          uuid.New(),
			RelatorioID: rel.ID,
			PessoaID:    pessoaID,
			Presente:    true,
			CreatedAt:   now,
		})
	}
	return rel, presencas, nil
}
