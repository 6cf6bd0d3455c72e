// Package sqlsession is a single-connection database session: statements with positional ?
// parameters, explicit transactions and last-insert-id retrieval over database/sql drivers for
// MySQL, PostgreSQL and SQLite.
//
// A Session pins exactly one connection for its whole lifetime. It is not safe for concurrent
// use; callers sharing one must serialize access themselves.
package sqlsession

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sllt/sqlsession/pkg/sqlsession/dsn"
	"github.com/sllt/sqlsession/pkg/sqlsession/logging"
)

// Session owns one database connection and the transaction running on it, if any.
type Session struct {
	db   *sql.DB
	conn *sql.Conn
	tx   *sql.Tx

	id       string
	dialect  dsn.Dialect
	hostName string
	database string

	logger  logging.Logger
	metrics Metrics
	tracer  trace.Tracer

	results map[*rows]struct{}
	closed  bool
}

// Open parses target, connects as user and verifies the connection before returning.
// Every failure is a KindConnection error and leaves nothing open behind it.
//
// Target descriptors look like
//
//	mysql:host=localhost;port=3306;dbname=shop
//	pgsql:host=localhost;dbname=shop;sslmode=disable
//	sqlite:/var/lib/shop.db
func Open(ctx context.Context, target, user, password string, opts ...Option) (*Session, error) {
	o := newOptions(opts)

	t, err := dsn.Parse(target)
	if err != nil {
		return nil, newError(KindConnection, "open", err)
	}

	db, err := o.open(t, user, password)
	if err != nil {
		return nil, newError(KindConnection, "open", err)
	}

	s, err := connect(ctx, db, t.Dialect, t.Address(), t.Database, o)
	if err != nil {
		_ = db.Close()

		o.logger.Errorf("could not connect to %s database at '%s': %v", t.Dialect, t.Address(), err)

		return nil, err
	}

	s.logger.Infof("session %s connected to %s database '%s' at '%s'", s.id, t.Dialect, t.Database, t.Address())

	return s, nil
}

// FromDB builds a Session on an already opened handle. db is limited to a single connection and
// is owned by FromDB from then on: Close closes it, and so does FromDB itself when it fails.
func FromDB(ctx context.Context, db *sql.DB, dialect string, opts ...Option) (*Session, error) {
	d, _, err := dsn.NormalizeDialect(dialect)
	if err != nil {
		_ = db.Close()

		return nil, newError(KindConnection, "open", err)
	}

	s, err := connect(ctx, db, d, "", "", newOptions(opts))
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

func connect(ctx context.Context, db *sql.DB, dialect dsn.Dialect, hostName, database string, o *options) (*Session, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, newError(KindConnection, "open", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, newError(KindConnection, "open", err)
	}

	s := &Session{
		db:       db,
		conn:     conn,
		id:       uuid.NewString(),
		dialect:  dialect,
		hostName: hostName,
		database: database,
		logger:   o.logger,
		metrics:  o.metrics,
		tracer:   o.tracer,
		results:  make(map[*rows]struct{}),
	}

	s.countOpen(ctx, 1)

	return s, nil
}

// ID identifies the session in logs and spans.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Dialect() string {
	return string(s.dialect)
}

// InTransaction reports whether Begin has been called without a matching Commit or Rollback.
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

// Begin starts a transaction. It fails with KindTransaction when one is already active.
// The transaction is not tied to ctx: it stays open until Commit or Rollback.
func (s *Session) Begin(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "begin", "")
	defer func() { err = s.endSpan(ctx, span, err) }()

	if err = s.usable("begin"); err != nil {
		return err
	}

	if s.tx != nil {
		return &Error{Kind: KindTransaction, Op: "begin", Err: ErrTransactionActive}
	}

	defer s.sendStats(ctx, time.Now(), "Begin", "BEGIN")

	tx, err := s.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return newError(KindTransaction, "begin", err)
	}

	s.tx = tx

	return nil
}

// Query prepares query, binds params to its ? placeholders in order and returns the row cursor.
// The caller must close the Result.
func (s *Session) Query(ctx context.Context, query string, params ...any) (_ Result, err error) {
	ctx, span := s.startSpan(ctx, "query", query)
	defer func() { err = s.endSpan(ctx, span, err) }()

	defer s.sendStats(ctx, time.Now(), "Query", query, params...)

	stmt, args, err := s.prepare(ctx, "query", query, params)
	if err != nil {
		return nil, err
	}

	r, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		_ = stmt.Close()

		return nil, classify(KindExecution, "query", err)
	}

	res := &rows{Rows: r, stmt: stmt, tx: s.tx, release: s.release}
	s.results[res] = struct{}{}

	return res, nil
}

// Exec prepares query, binds params to its ? placeholders in order, runs it and returns the
// number of rows affected. Zero affected rows is not an error.
func (s *Session) Exec(ctx context.Context, query string, params ...any) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "exec", query)
	defer func() { err = s.endSpan(ctx, span, err) }()

	defer s.sendStats(ctx, time.Now(), "Exec", query, params...)

	stmt, args, err := s.prepare(ctx, "exec", query, params)
	if err != nil {
		return 0, err
	}

	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, classify(KindExecution, "exec", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, newError(KindDriver, "exec", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", n))

	return n, nil
}

// LastInsertID asks the connection for the id generated by its most recent insert. What "most
// recent" covers is up to the database: LAST_INSERT_ID() on MySQL, lastval() on PostgreSQL and
// last_insert_rowid() on SQLite. Failures are KindDriver errors.
func (s *Session) LastInsertID(ctx context.Context) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "last-insert-id", "")
	defer func() { err = s.endSpan(ctx, span, err) }()

	if err = s.usable("last-insert-id"); err != nil {
		return 0, err
	}

	query := s.dialect.LastInsertIDQuery()

	defer s.sendStats(ctx, time.Now(), "LastInsertID", query)

	var id int64

	if err = s.handle().QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, newError(KindDriver, "last-insert-id", err)
	}

	return id, nil
}

// Commit applies the active transaction. Results still open from inside it are closed first.
// A driver failure leaves the outcome unknown; the transaction is cleared either way.
func (s *Session) Commit(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "commit", "")
	defer func() { err = s.endSpan(ctx, span, err) }()

	tx, err := s.activeTx("commit")
	if err != nil {
		return err
	}

	defer s.sendStats(ctx, time.Now(), "Commit", "COMMIT")

	s.closeResults(tx)
	s.tx = nil

	if err = tx.Commit(); err != nil {
		return newError(KindTransaction, "commit", err)
	}

	return nil
}

// Rollback discards the active transaction. Results still open from inside it are closed first.
func (s *Session) Rollback(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "rollback", "")
	defer func() { err = s.endSpan(ctx, span, err) }()

	tx, err := s.activeTx("rollback")
	if err != nil {
		return err
	}

	defer s.sendStats(ctx, time.Now(), "Rollback", "ROLLBACK")

	s.closeResults(tx)
	s.tx = nil

	if err = tx.Rollback(); err != nil {
		return newError(KindTransaction, "rollback", err)
	}

	return nil
}

// Close releases the connection. Open results are closed. A transaction still active is rolled
// back so the connection can be released, and reported as ErrTransactionPending: callers should
// resolve their transactions before closing. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	ctx := context.Background()

	for r := range s.results {
		_ = r.Close()
	}

	var errs []error

	if s.tx != nil {
		s.logger.Warnf("session %s closed with an unresolved transaction, rolling it back", s.id)

		errs = append(errs, &Error{Kind: KindTransaction, Op: "close", Err: ErrTransactionPending})

		if err := s.tx.Rollback(); err != nil {
			errs = append(errs, newError(KindTransaction, "close", err))
		}

		s.tx = nil
	}

	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, newError(KindConnection, "close", err))
	}

	if err := s.db.Close(); err != nil {
		errs = append(errs, newError(KindConnection, "close", err))
	}

	s.countOpen(ctx, -1)

	err := errors.Join(errs...)
	s.countError(ctx, err)

	return err
}

func (s *Session) prepare(ctx context.Context, op, query string, params []any) (*sql.Stmt, []any, error) {
	if err := s.usable(op); err != nil {
		return nil, nil, err
	}

	bound, n := rebind(query, s.dialect)
	if n != len(params) {
		return nil, nil, &Error{
			Kind: KindPreparation,
			Op:   op,
			Err:  pkgerrors.Wrapf(ErrParamCount, "%d placeholders, %d parameters", n, len(params)),
		}
	}

	args, err := bindParams(op, params)
	if err != nil {
		return nil, nil, err
	}

	stmt, err := s.handle().PrepareContext(ctx, bound)
	if err != nil {
		return nil, nil, classify(KindPreparation, op, err)
	}

	return stmt, args, nil
}

func (s *Session) handle() handle {
	if s.tx != nil {
		return s.tx
	}

	return s.conn
}

func (s *Session) usable(op string) error {
	if s.closed {
		return &Error{Kind: KindConnection, Op: op, Err: ErrSessionClosed}
	}

	return nil
}

func (s *Session) activeTx(op string) (*sql.Tx, error) {
	if err := s.usable(op); err != nil {
		return nil, err
	}

	if s.tx == nil {
		return nil, &Error{Kind: KindTransaction, Op: op, Err: ErrNoTransaction}
	}

	return s.tx, nil
}

// closeResults closes the open results read inside tx. database/sql cannot end a transaction
// while its rows are open.
func (s *Session) closeResults(tx *sql.Tx) {
	for r := range s.results {
		if r.tx != tx {
			continue
		}

		s.logger.Warnf("session %s: closing a result left open at the end of its transaction", s.id)

		_ = r.Close()
	}
}

func (s *Session) release(r *rows) {
	delete(s.results, r)
}

func (s *Session) startSpan(ctx context.Context, op, query string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", string(s.dialect)),
		attribute.String("sqlsession.id", s.id),
	}

	if query != "" {
		attrs = append(attrs, attribute.String("db.statement", clean(query)))
	}

	return s.tracer.Start(ctx, "sql-"+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func (s *Session) endSpan(ctx context.Context, span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.countError(ctx, err)
	}

	span.End()

	return err
}
