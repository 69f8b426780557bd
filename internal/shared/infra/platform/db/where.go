package db

import (
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
)

// BuildWhere traduce criterios neutrales a una cláusula WHERE con placeholders '?'.
// Devuelve "" si no hay condiciones. En Postgres la búsqueda usa ILIKE nativo; en SQLite
// se cae a LOWER(..) LIKE LOWER(..), que solo ignora mayúsculas ASCII ("Á" no casa con "á").
func BuildWhere(driver Driver, criteria sharedDomain.Criteria) (string, []interface{}) {
	if criteria == nil {
		return "", nil
	}
	conds := criteria.ToConditions()
	if len(conds) == 0 {
		return "", nil
	}

	var clauses []string
	var args []interface{}
	for _, c := range conds {
		clause, a := renderCondition(driver, c)
		clauses = append(clauses, clause)
		args = append(args, a...)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func renderCondition(driver Driver, c sharedDomain.Criterion) (string, []interface{}) {
	if len(c.Any) > 0 {
		var parts []string
		var args []interface{}
		for _, sub := range c.Any {
			p, a := renderCondition(driver, sub)
			parts = append(parts, p)
			args = append(args, a...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args
	}

	switch c.Op {
	case sharedDomain.OpILike:
		if driver == DriverPostgres {
			return fmt.Sprintf("%s ILIKE ?", c.Field), []interface{}{c.Value}
		}
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", c.Field), []interface{}{c.Value}
	default:
		return fmt.Sprintf("%s %s ?", c.Field, c.Op), []interface{}{c.Value}
	}
}

// OrderBy compone la cláusula de orden; field debe venir de una lista permitida.
func OrderBy(field string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", field, dir)
}
