package domain

import "time"

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq    Operator = "="
	OpNeq   Operator = "<>"
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE"
)

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado.
// Si Any no está vacío, el criterio es un grupo OR y Field/Op/Value se ignoran.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
	Any   []Criterion
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	if c.Operator == OpOr && len(all) > 1 {
		return []Criterion{{Any: all}}
	}
	return all
}

// ---------------- Criterios genéricos ----------------

// EqCriteria filtra por igualdad exacta sobre una columna.
type EqCriteria struct {
	Field string
	Value interface{}
}

func (c EqCriteria) ToConditions() []Criterion {
	return []Criterion{{Field: c.Field, Op: OpEq, Value: c.Value}}
}

// SearchCriteria busca un texto (ILIKE) en cualquiera de las columnas indicadas.
type SearchCriteria struct {
	Fields []string
	Term   string
}

func (c SearchCriteria) ToConditions() []Criterion {
	if c.Term == "" || len(c.Fields) == 0 {
		return nil
	}
	group := make([]Criterion, 0, len(c.Fields))
	for _, f := range c.Fields {
		group = append(group, Criterion{Field: f, Op: OpILike, Value: "%" + c.Term + "%"})
	}
	if len(group) == 1 {
		return group
	}
	return []Criterion{{Any: group}}
}

// DateRangeCriteria filtra una columna de fecha entre Start y End (ambos opcionales, inclusivos).
type DateRangeCriteria struct {
	Field string
	Start *time.Time
	End   *time.Time
}

func (c DateRangeCriteria) ToConditions() []Criterion {
	var conds []Criterion
	if c.Start != nil {
		conds = append(conds, Criterion{Field: c.Field, Op: OpGte, Value: *c.Start})
	}
	if c.End != nil {
		conds = append(conds, Criterion{Field: c.Field, Op: OpLte, Value: *c.End})
	}
	return conds
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}
