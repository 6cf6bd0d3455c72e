package sqlsession

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a session failure.
type Kind uint8

const (
	// KindConnection: the connection could not be established, or was lost mid-session.
	KindConnection Kind = iota + 1
	// KindPreparation: invalid SQL, or placeholder and parameter counts differ.
	KindPreparation
	// KindBind: a parameter value cannot be bound to its placeholder.
	KindBind
	// KindExecution: the statement ran but the database rejected it.
	KindExecution
	// KindTransaction: begin, commit or rollback in an invalid state, or rejected by the driver.
	KindTransaction
	// KindDriver: any other driver reported failure.
	KindDriver
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindPreparation:
		return "preparation"
	case KindBind:
		return "bind"
	case KindExecution:
		return "execution"
	case KindTransaction:
		return "transaction"
	case KindDriver:
		return "driver"
	default:
		return "unknown"
	}
}

// Sentinels to match any error of a kind with errors.Is.
var (
	ErrConnection  = &Error{Kind: KindConnection}
	ErrPreparation = &Error{Kind: KindPreparation}
	ErrBind        = &Error{Kind: KindBind}
	ErrExecution   = &Error{Kind: KindExecution}
	ErrTransaction = &Error{Kind: KindTransaction}
	ErrDriver      = &Error{Kind: KindDriver}
)

// Causes raised by the session itself rather than the driver.
var (
	ErrSessionClosed      = errors.New("session is closed")
	ErrTransactionActive  = errors.New("a transaction is already active")
	ErrNoTransaction      = errors.New("no transaction is active")
	ErrTransactionPending = errors.New("session closed with an unresolved transaction; it was rolled back")
	ErrParamCount         = errors.New("placeholder and parameter counts differ")
	ErrUnsupportedParam   = errors.New("unsupported parameter type")
)

// Error is returned by every failing Session operation.
type Error struct {
	Kind Kind
	// Op is the session operation that failed, e.g. "exec" or "commit".
	Op string
	// Position is the 1-indexed parameter position for KindBind errors.
	Position int
	// Code is the driver diagnostic code: MySQL error number, SQLSTATE, or SQLite result code.
	Code string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("sqlsession: ")
	b.WriteString(e.Kind.String())
	b.WriteString(" error")

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Position > 0 {
		fmt.Fprintf(&b, " at parameter %d", e.Position)
	}

	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, ErrExecution) holds for any execution error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}
