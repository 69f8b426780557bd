package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Curso es un curso del ministerio de enseñanza.
type Curso struct {
	ID        uuid.UUID `json:"id"`
	Titulo    string    `json:"titulo"`
	Descricao string    `json:"descricao,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCurso(titulo, descricao string) (*Curso, error) {
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return nil, invalid(errors.New("titulo is required"))
	}
	now := time.Now().UTC()
	return &Curso{ID: uuid.New(), Titulo: titulo, Descricao: descricao, CreatedAt: now, UpdatedAt: now}, nil
}

// CursoResumo es la fila del listado con el número de lições.
type CursoResumo struct {
	Curso
	TotalLicoes int `json:"total_licoes"`
}

// CursoDetalhe incluye las lições ordenadas.
type CursoDetalhe struct {
	Curso
	Licoes []Licao `json:"licoes"`
}

type Licao struct {
	ID        uuid.UUID `json:"id"`
	CursoID   uuid.UUID `json:"curso_id"`
	Titulo    string    `json:"titulo"`
	Ordem     int       `json:"ordem"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLicao(cursoID uuid.UUID, titulo string, ordem int) (*Licao, error) {
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return nil, invalid(errors.New("titulo is required"))
	}
	return &Licao{ID: uuid.New(), CursoID: cursoID, Titulo: titulo, Ordem: ordem, CreatedAt: time.Now().UTC()}, nil
}

// ProgressoLicao es el avance de una pessoa en una lição; único por (pessoa_id, licao_id).
type ProgressoLicao struct {
	ID               uuid.UUID  `json:"id"`
	PessoaID         uuid.UUID  `json:"pessoa_id"`
	LicaoID          uuid.UUID  `json:"licao_id"`
	ProgressoPercent int        `json:"progresso_percent"`
	Concluida        bool       `json:"concluida"`
	DataConclusao    *time.Time `json:"data_conclusao"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewProgressoLicao fija concluida = percent >= 100; la fecha de conclusión solo se rellena si está concluida.
func NewProgressoLicao(pessoaID, licaoID uuid.UUID, percent int, now time.Time) (*ProgressoLicao, error) {
	if pessoaID == uuid.Nil || licaoID == uuid.Nil {
		return nil, invalid(errors.New("pessoa_id and licao_id are required"))
	}
	if percent < 0 || percent > 100 {
		return nil, invalid(errors.New("progresso_percent must be between 0 and 100"))
	}

	p := &ProgressoLicao{
		ID:               uuid.New(),
		PessoaID:         pessoaID,
		LicaoID:          licaoID,
		ProgressoPercent: percent,
		Concluida:        percent >= 100,
		UpdatedAt:        now,
	}
	if p.Concluida {
		p.DataConclusao = &now
	}
	return p, nil
}

// ProgressoCurso es el avance derivado de una pessoa en un curso; único por (pessoa_id, curso_id).
type ProgressoCurso struct {
	ID               uuid.UUID  `json:"id"`
	PessoaID         uuid.UUID  `json:"pessoa_id"`
	CursoID          uuid.UUID  `json:"curso_id"`
	ProgressoPercent int        `json:"progresso_percent"`
	LicoesConcluidas int        `json:"licoes_concluidas"`
	TotalLicoes      int        `json:"total_licoes"`
	Concluido        bool       `json:"concluido"`
	DataConclusao    *time.Time `json:"data_conclusao"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CalcularProgresso deriva el progreso del curso a partir de las lições concluidas.
func CalcularProgresso(pessoaID, cursoID uuid.UUID, concluidas, total int, now time.Time) *ProgressoCurso {
	p := &ProgressoCurso{
		ID:               uuid.New(),
		PessoaID:         pessoaID,
		CursoID:          cursoID,
		ProgressoPercent: Percentual(concluidas, total),
		LicoesConcluidas: concluidas,
		TotalLicoes:      total,
		Concluido:        total > 0 && concluidas >= total,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if p.Concluido {
		p.DataConclusao = &now
	}
	return p
}

// Percentual = round(concluidas*100/total); 0 si el curso no tiene lições.
func Percentual(concluidas, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(concluidas) * 100 / float64(total)))
}
