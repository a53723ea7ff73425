package database

import (
	"context"
	"errors"
	"fmt"
)

// Session is one live database connection. Sessions are not safe for
// concurrent use; the pool hands each one to a single caller at a time.
type Session interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx is a transaction opened on a Session.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Rows iterates a query result. pgx.Rows satisfies it directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Dialer opens a new Session.
type Dialer func(ctx context.Context) (Session, error)

// closedReporter is implemented by sessions that can tell when their
// underlying connection is gone.
type closedReporter interface {
	IsClosed() bool
}

// InTx runs fn inside a transaction on s. The transaction is committed when
// fn returns nil and rolled back otherwise. A failed commit is marked
// Permanent: whether it was applied is unknown, so it must not be retried.
func InTx(ctx context.Context, s Session, fn func(tx Tx) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		committed = true // the driver has already ended the transaction
		return Permanent(fmt.Errorf("commit transaction: %w", err))
	}
	committed = true
	return nil
}
