package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Los importes viajan en JSON como números, no como strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Tipo string

const (
	TipoReceita Tipo = "receita"
	TipoDespesa Tipo = "despesa"
)

func (t Tipo) Valid() bool {
	return t == TipoReceita || t == TipoDespesa
}

// Lancamento es un movimiento financiero; valor siempre positivo, el signo lo da el tipo.
type Lancamento struct {
	ID             uuid.UUID       `json:"id"`
	Tipo           Tipo            `json:"tipo"`
	Categoria      string          `json:"categoria"`
	Descricao      string          `json:"descricao,omitempty"`
	Valor          decimal.Decimal `json:"valor"`
	DataLancamento time.Time       `json:"data_lancamento"`
	PessoaID       *uuid.UUID      `json:"pessoa_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (l *Lancamento) PartitionKey() string {
	return l.ID.String()
}

func NewLancamento(tipo Tipo, categoria, descricao string, valor decimal.Decimal, data time.Time, pessoaID *uuid.UUID) (*Lancamento, error) {
	l := &Lancamento{
		ID:             uuid.New(),
		Tipo:           tipo,
		Categoria:      strings.TrimSpace(categoria),
		Descricao:      descricao,
		Valor:          valor.Round(2),
		DataLancamento: Dia(data),
		PessoaID:       pessoaID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Lancamento) Validate() error {
	if !l.Tipo.Valid() {
		return invalid(errors.New("tipo must be receita or despesa"))
	}
	if !l.Valor.IsPositive() {
		return invalid(errors.New("valor must be greater than zero"))
	}
	if l.DataLancamento.IsZero() {
		return invalid(errors.New("data_lancamento is required"))
	}
	return nil
}

// Dia trunca a medianoche UTC; data_lancamento es una fecha sin hora.
func Dia(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Relatorio resume receitas y despesas de un periodo.
type Relatorio struct {
	DataInicio *time.Time      `json:"data_inicio,omitempty"`
	DataFim    *time.Time      `json:"data_fim,omitempty"`
	Receitas   decimal.Decimal `json:"receitas"`
	Despesas   decimal.Decimal `json:"despesas"`
	Saldo      decimal.Decimal `json:"saldo"`
}

// NewRelatorio suma los valores de cada tipo; sin filas todo queda a cero.
func NewRelatorio(inicio, fim *time.Time, receitas, despesas []decimal.Decimal) Relatorio {
	r := Relatorio{
		DataInicio: inicio,
		DataFim:    fim,
		Receitas:   decimal.Sum(decimal.Zero, receitas...),
		Despesas:   decimal.Sum(decimal.Zero, despesas...),
	}
	r.Saldo = r.Receitas.Sub(r.Despesas)
	return r
}

// TendenciaMensal es el total por mes que sale del almacén analítico.
type TendenciaMensal struct {
	Mes      string          `json:"mes"` // YYYY-MM
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
	Saldo    decimal.Decimal `json:"saldo"`
}

const MesLayout = "2006-01"

// CompletarMeses devuelve un elemento por mes entre inicio y fim, con ceros donde no hubo movimientos.
func CompletarMeses(inicio, fim time.Time, parciais []TendenciaMensal) []TendenciaMensal {
	byMes := make(map[string]TendenciaMensal, len(parciais))
	for _, p := range parciais {
		byMes[p.Mes] = p
	}

	var out []TendenciaMensal
	start := time.Date(inicio.Year(), inicio.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := start; !m.After(fim); m = m.AddDate(0, 1, 0) {
		mes := m.Format(MesLayout)
		t, ok := byMes[mes]
		if !ok {
			t = TendenciaMensal{Mes: mes, Receitas: decimal.Zero, Despesas: decimal.Zero}
		}
		t.Saldo = t.Receitas.Sub(t.Despesas)
		out = append(out, t)
	}
	return out
}
