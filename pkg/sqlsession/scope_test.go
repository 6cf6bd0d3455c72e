package sqlsession

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_TransactCommits(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectPrepare("UPDATE t SET x = ?").ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Transact(context.Background(), func(tx *Session) error {
		_, err := tx.Exec(context.Background(), "UPDATE t SET x = ?", 1)
		return err
	})

	require.NoError(t, err)
	assert.False(t, s.InTransaction())

	closeMockSession(t, s, mock)
}

func TestSession_TransactRollsBackOnError(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.Transact(context.Background(), func(*Session) error {
		return errMock
	})

	require.ErrorIs(t, err, errMock)
	assert.False(t, s.InTransaction())

	closeMockSession(t, s, mock)
}

func TestSession_TransactRollsBackOnPanic(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.Transact(context.Background(), func(*Session) error {
			panic("boom")
		})
	})

	assert.False(t, s.InTransaction())

	closeMockSession(t, s, mock)
}

func TestSession_TransactBeginFails(t *testing.T) {
	s, mock := newMockSession(t, "mysql")

	mock.ExpectBegin().WillReturnError(errMock)

	called := false
	err := s.Transact(context.Background(), func(*Session) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, ErrTransaction)
	assert.False(t, called)

	closeMockSession(t, s, mock)
}

func TestWith_ClosesSession(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "with.db")
	ctx := context.Background()

	var kept *Session

	err := With(ctx, target, "", "", func(s *Session) error {
		kept = s

		_, err := s.Exec(ctx, "CREATE TABLE t (x INTEGER)")

		return err
	}, WithLogger(quietLogger()))

	require.NoError(t, err)

	_, err = kept.Exec(ctx, "INSERT INTO t(x) VALUES (?)", 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestWith_ReturnsCallbackAndCloseErrors(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "with.db")
	ctx := context.Background()

	err := With(ctx, target, "", "", func(s *Session) error {
		require.NoError(t, s.Begin(ctx))

		return errMock
	}, WithLogger(quietLogger()))

	assert.ErrorIs(t, err, errMock)
	assert.ErrorIs(t, err, ErrTransactionPending)
}

func TestWith_ClosesOnPanic(t *testing.T) {
	target := "sqlite:" + filepath.Join(t.TempDir(), "with.db")

	var kept *Session

	assert.Panics(t, func() {
		_ = With(context.Background(), target, "", "", func(s *Session) error {
			kept = s
			panic("boom")
		}, WithLogger(quietLogger()))
	})

	require.NotNil(t, kept)
	assert.True(t, kept.closed)
}

func TestWith_OpenFailure(t *testing.T) {
	called := false

	err := With(context.Background(), "oracle:host=db", "", "", func(*Session) error {
		called = true
		return nil
	}, WithLogger(quietLogger()))

	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, called)
}
