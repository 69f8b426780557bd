package query

import (
	"net/url"
	"strconv"
)

// Parámetros de query reconocidos por los listados.
const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSearch    = "search"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 20
	DefaultSortBy = "created_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PaginationParams se deriva de la query string en cada petición.
type PaginationParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// ParsePagination lee page/limit/search/sortBy/sortOrder.
// page y limit no numéricos o menores que 1 vuelven a los valores por defecto.
// maxLimit <= 0 significa sin tope.
func ParsePagination(values url.Values, maxLimit int) PaginationParams {
	p := PaginationParams{
		Page:      parsePositive(values.Get(ParamPage), DefaultPage),
		Limit:     parsePositive(values.Get(ParamLimit), DefaultLimit),
		Search:    values.Get(ParamSearch),
		SortBy:    values.Get(ParamSortBy),
		SortOrder: SortDesc,
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if SortOrder(values.Get(ParamSortOrder)) == SortAsc {
		p.SortOrder = SortAsc
	}
	return p
}

func parsePositive(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// Ascending es la comparación a dos vías: cualquier cosa que no sea "asc" es descendente.
func (p PaginationParams) Ascending() bool {
	return p.SortOrder == SortAsc
}

// Offset devuelve el número de filas a saltar.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Range devuelve el rango inclusivo de filas [from, to].
func (p PaginationParams) Range() (from, to int) {
	from = p.Offset()
	return from, from + p.Limit - 1
}

// SortFor resuelve el campo de orden contra la lista de columnas permitidas.
// El valor acaba interpolado en ORDER BY, por eso nunca pasa tal cual.
func (p PaginationParams) SortFor(allowed ...string) Sort {
	field := DefaultSortBy
	for _, a := range allowed {
		if a == p.SortBy {
			field = a
			break
		}
	}
	return Sort{Field: field, Desc: !p.Ascending()}
}

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "created_at", "nome"
	Desc  bool
}

// TotalPages = ceil(total/limit); 0 cuando no hay filas.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// PageInfo es el bloque "pagination" de las respuestas de listado.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page es el sobre único de todos los listados.
type Page[T any] struct {
	Data       []T      `json:"data"`
	Pagination PageInfo `json:"pagination"`
}

func NewPage[T any](data []T, p PaginationParams, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Pagination: PageInfo{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: TotalPages(total, p.Limit),
		},
	}
}
