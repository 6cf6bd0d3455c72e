package sqlsession

import (
	"database/sql"
	"errors"
)

// Result is the row cursor returned by Query. It streams rows as the driver delivers them and must
// be closed by the caller; closing it also releases the prepared statement behind it.
type Result interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type rows struct {
	*sql.Rows

	stmt *sql.Stmt
	// tx is the transaction the rows were read in, nil outside one.
	tx      *sql.Tx
	release func(*rows)
	closed  bool
}

func (r *rows) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	err := errors.Join(r.Rows.Close(), r.stmt.Close())

	if r.release != nil {
		r.release(r)
	}

	return err
}
