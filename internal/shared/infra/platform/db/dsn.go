package db

import (
	"fmt"
	"net/url"
	"strings"
)

// Driver representa los drivers soportados.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "pgx"
)

const sqlitePragmas = "cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// ParseDSN interpreta la URL de base de datos y devuelve el driver y el DSN para database/sql.
// Acepta sqlite:///ruta.db, postgres:// y postgresql://. Si la URL de Postgres trae usuario
// sin contraseña, se usa serviceKey como contraseña.
func ParseDSN(databaseURL, serviceKey string) (Driver, string) {
	if databaseURL == "" {
		return DriverSQLite, "file:igrejalab.db?" + sqlitePragmas
	}

	if strings.HasPrefix(databaseURL, "sqlite://") {
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == ":memory:" {
			return DriverSQLite, path
		}
		return DriverSQLite, fmt.Sprintf("file:%s?%s", path, sqlitePragmas)
	}

	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return DriverPostgres, withServiceKey(databaseURL, serviceKey)
	}

	// Se trata como ruta de fichero SQLite
	return DriverSQLite, fmt.Sprintf("file:%s?%s", databaseURL, sqlitePragmas)
}

func withServiceKey(databaseURL, serviceKey string) string {
	if serviceKey == "" {
		return databaseURL
	}
	u, err := url.Parse(databaseURL)
	if err != nil || u.User == nil {
		return databaseURL
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		return databaseURL
	}
	u.User = url.UserPassword(u.User.Username(), serviceKey)
	return u.String()
}
