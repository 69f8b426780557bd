package mocks

import (
	"fmt"
	"strings"
	"time"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
)

// matches evalúa criterios contra un registro plano (columna -> valor).
func matches(record map[string]interface{}, criteria sharedDomain.Criteria) bool {
	if criteria == nil {
		return true
	}
	for _, c := range criteria.ToConditions() {
		if !matchCondition(record, c) {
			return false
		}
	}
	return true
}

func matchCondition(record map[string]interface{}, c sharedDomain.Criterion) bool {
	if len(c.Any) > 0 {
		for _, sub := range c.Any {
			if matchCondition(record, sub) {
				return true
			}
		}
		return false
	}

	value := record[c.Field]
	switch c.Op {
	case sharedDomain.OpEq:
		return fmt.Sprint(value) == fmt.Sprint(c.Value)
	case sharedDomain.OpNeq:
		return fmt.Sprint(value) != fmt.Sprint(c.Value)
	case sharedDomain.OpILike, sharedDomain.OpLike:
		needle := strings.Trim(fmt.Sprint(c.Value), "%")
		return strings.Contains(strings.ToLower(fmt.Sprint(value)), strings.ToLower(needle))
	case sharedDomain.OpGte, sharedDomain.OpLte, sharedDomain.OpGt, sharedDomain.OpLt:
		a, okA := value.(time.Time)
		b, okB := c.Value.(time.Time)
		if !okA || !okB {
			return false
		}
		switch c.Op {
		case sharedDomain.OpGte:
			return !a.Before(b)
		case sharedDomain.OpLte:
			return !a.After(b)
		case sharedDomain.OpGt:
			return a.After(b)
		default:
			return a.Before(b)
		}
	}
	return false
}

// paginate recorta items según page/limit.
func paginate[T any](items []T, p sharedQuery.PaginationParams) []T {
	from := p.Offset()
	if from >= len(items) {
		return nil
	}
	to := from + p.Limit
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}
