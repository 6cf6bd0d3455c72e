// Package dsn turns connection target descriptors of the form "dialect:key=value;key=value" into
// database/sql driver names and data source names.
package dsn

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect is the SQL flavour spoken by the target database.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// database/sql driver names registered by the driver packages.
const (
	driverMySQL    = "mysql"
	driverPQ       = "postgres"
	driverPgx      = "pgx"
	driverSQLite   = "sqlite"
	memoryDatabase = ":memory:"
)

var errUnsupportedDialect = errors.New("unsupported dialect")

// NormalizeDialect maps a dialect name or alias onto its Dialect and the driver serving it.
//
// Supported values include:
//   - mysql, mariadb
//   - postgres, postgresql, pgsql, cockroachdb (lib/pq) and pgx (jackc/pgx)
//   - sqlite, sqlite3
func NormalizeDialect(name string) (Dialect, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(MySQL), "mariadb":
		return MySQL, driverMySQL, nil
	case string(Postgres), "postgresql", "pgsql", "cockroachdb":
		return Postgres, driverPQ, nil
	case driverPgx:
		return Postgres, driverPgx, nil
	case string(SQLite), "sqlite3":
		return SQLite, driverSQLite, nil
	default:
		return "", "", fmt.Errorf("%w: %q", errUnsupportedDialect, name)
	}
}

// NumberedPlaceholders reports whether the dialect expects $1, $2, ... instead of ?.
func (d Dialect) NumberedPlaceholders() bool {
	return d == Postgres
}

// LastInsertIDQuery returns the statement asking the connection for its most recently generated id.
func (d Dialect) LastInsertIDQuery() string {
	switch d {
	case Postgres:
		return "SELECT lastval()"
	case SQLite:
		return "SELECT last_insert_rowid()"
	default:
		return "SELECT LAST_INSERT_ID()"
	}
}
