package mock

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// ErrInjected is the default error returned by injected faults
var ErrInjected = errors.New("mock: injected fault")

// Statement records one executed statement
type Statement struct {
	SQL  string
	Args []any
	InTx bool
}

// Session simulates a database connection for development and tests
// This implements the database.Session interface
type Session struct {
	mu sync.Mutex

	// Rows returned by every Query call
	QueryRows [][]any

	// Injected failures; nil means success
	QueryErr  error
	PingErr   error
	BeginErr  error
	CommitErr error
	// ExecErr is returned by the ExecFailAt-th Exec (1-based, counted
	// across transactions); zero means every Exec fails with ExecErr.
	ExecErr    error
	ExecFailAt int

	// Recorded activity
	Executed   []Statement
	Committed  int
	RolledBack int
	Queries    int
	Closed     bool

	execCount int
}

// NewSession creates a session that succeeds at everything
func NewSession() *Session {
	return &Session{}
}

func (s *Session) exec(sql string, args []any, inTx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.execCount++
	if s.ExecErr != nil && (s.ExecFailAt == 0 || s.ExecFailAt == s.execCount) {
		return s.ExecErr
	}
	s.Executed = append(s.Executed, Statement{SQL: sql, Args: args, InTx: inTx})
	return nil
}

// Exec records a statement outside a transaction
func (s *Session) Exec(ctx context.Context, sql string, args ...any) error {
	return s.exec(sql, args, false)
}

// Query returns the configured rows
func (s *Session) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Queries++
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	return &Rows{values: s.QueryRows}, nil
}

// Begin opens a recorded transaction
func (s *Session) Begin(ctx context.Context) (database.Tx, error) {
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}
	return &tx{s: s}, nil
}

// Ping returns PingErr
func (s *Session) Ping(ctx context.Context) error {
	return s.PingErr
}

// Close marks the session closed
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// IsClosed reports whether Close was called
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closed
}

// Snapshot returns a copy of the executed statements
func (s *Session) Snapshot() []Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Statement(nil), s.Executed...)
}

type tx struct {
	s       *Session
	pending []Statement
	done    bool
}

func (t *tx) Exec(ctx context.Context, sql string, args ...any) error {
	t.s.mu.Lock()
	t.s.execCount++
	fail := t.s.ExecErr != nil && (t.s.ExecFailAt == 0 || t.s.ExecFailAt == t.s.execCount)
	err := t.s.ExecErr
	t.s.mu.Unlock()

	if fail {
		return err
	}
	t.pending = append(t.pending, Statement{SQL: sql, Args: args, InTx: true})
	return nil
}

// Commit publishes the pending statements unless CommitErr is set
func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("mock: transaction already closed")
	}
	t.done = true
	if t.s.CommitErr != nil {
		return t.s.CommitErr
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.Executed = append(t.s.Executed, t.pending...)
	t.s.Committed++
	return nil
}

// Rollback discards the pending statements
func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return errors.New("mock: transaction already closed")
	}
	t.done = true
	t.pending = nil

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.RolledBack++
	return nil
}

// Rows iterates canned values, assigning them to Scan destinations by type
type Rows struct {
	values [][]any
	pos    int
	closed bool
}

// NewRows creates a Rows over values
func NewRows(values [][]any) *Rows {
	return &Rows{values: values}
}

func (r *Rows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.values) {
		return errors.New("mock: Scan called without a current row")
	}
	row := r.values[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("mock: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("mock: destination %d is not a pointer", i)
		}
		sv := reflect.ValueOf(row[i])
		if !sv.Type().AssignableTo(dv.Elem().Type()) {
			if !sv.Type().ConvertibleTo(dv.Elem().Type()) {
				return fmt.Errorf("mock: cannot scan %T into %T", row[i], d)
			}
			sv = sv.Convert(dv.Elem().Type())
		}
		dv.Elem().Set(sv)
	}
	return nil
}

func (r *Rows) Err() error { return nil }

func (r *Rows) Close() { r.closed = true }
