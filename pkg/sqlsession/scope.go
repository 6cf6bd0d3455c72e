package sqlsession

import (
	"context"
	"errors"
)

// With opens a Session, hands it to fn and closes it on every way out of fn, panics included.
// Errors from fn and from Close are both returned.
func With(ctx context.Context, target, user, password string, fn func(*Session) error, opts ...Option) (err error) {
	s, err := Open(ctx, target, user, password, opts...)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, s.Close())
	}()

	return fn(s)
}

// Transact runs fn inside a transaction: it is committed when fn returns nil and rolled back when
// fn fails or panics. fn must not commit or roll back itself.
func (s *Session) Transact(ctx context.Context, fn func(*Session) error) (err error) {
	if err = s.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(ctx)

			panic(p)
		}

		if err != nil {
			err = errors.Join(err, s.Rollback(ctx))

			return
		}

		err = s.Commit(ctx)
	}()

	return fn(s)
}
