package db

import (
	"strconv"
	"strings"
)

// Rebind convierte los placeholders '?' al formato del driver.
// Para Postgres (pgx) reescribe a $1, $2, ...; para SQLite los deja igual.
func (d Driver) Rebind(query string) string {
	if d != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}
