package sqlsession

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
	"modernc.org/sqlite"

	// registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// bindCodes are driver codes reporting a parameter value the server could not accept for its
// placeholder: invalid text representation and datatype mismatch (SQLSTATE), wrong arguments,
// incorrect and truncated values (MySQL), datatype mismatch and bind index out of range (SQLite).
var bindCodes = map[string]struct{}{
	"22P02": {},
	"42804": {},
	"1210":  {},
	"1292":  {},
	"1366":  {},
	"20":    {},
	"25":    {},
}

// newError builds an *Error around a driver failure, keeping the call stack of the wrap site.
func newError(kind Kind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Code: driverCode(err),
		Err:  pkgerrors.WithStack(err),
	}
}

// classify is newError for statement paths, where the failure itself can outrank the kind
// suggested by the calling stage.
func classify(kind Kind, op string, err error) *Error {
	e := newError(kind, op, err)

	switch msg := err.Error(); {
	case connectionLost(err):
		e.Kind = KindConnection
	case strings.HasPrefix(msg, "sql: converting argument"):
		e.Kind = KindBind
	case strings.HasPrefix(msg, "sql: expected") && strings.Contains(msg, "arguments, got"):
		e.Kind = KindPreparation
	default:
		if _, ok := bindCodes[e.Code]; ok {
			e.Kind = KindBind
		}
	}

	return e
}

func connectionLost(err error) bool {
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn)
}

func driverCode(err error) string {
	var (
		myErr   *mysql.MySQLError
		pqErr   *pq.Error
		pgErr   *pgconn.PgError
		liteErr *sqlite.Error
	)

	switch {
	case errors.As(err, &myErr):
		return strconv.Itoa(int(myErr.Number))
	case errors.As(err, &pqErr):
		return string(pqErr.Code)
	case errors.As(err, &pgErr):
		return pgErr.Code
	case errors.As(err, &liteErr):
		return strconv.Itoa(liteErr.Code())
	default:
		return ""
	}
}
