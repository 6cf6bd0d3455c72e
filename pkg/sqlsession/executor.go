package sqlsession

import (
	"context"
	"database/sql"
)

// Executor captures the statement operations of a Session. Repositories depending on it can be
// driven by a real Session or by a test double.
type Executor interface {
	Query(ctx context.Context, query string, params ...any) (Result, error)
	Exec(ctx context.Context, query string, params ...any) (int64, error)
	Select(ctx context.Context, data any, query string, params ...any) error
	LastInsertID(ctx context.Context) (int64, error)
}

var _ Executor = (*Session)(nil)

// handle is what *sql.Conn and *sql.Tx have in common. Statements run on the active
// transaction when there is one, and on the pinned connection otherwise.
type handle interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
