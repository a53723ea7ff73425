package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// Dialer hands out mock sessions and counts pool activity
type Dialer struct {
	mu sync.Mutex

	// NewSession builds each session; defaults to NewSession
	NewSession func() *Session

	// FailDials makes the next N dials fail with DialErr
	FailDials int
	DialErr   error

	Sessions []*Session
	dials    atomic.Int64
}

// NewDialer creates a dialer whose sessions succeed at everything
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial implements database.Dialer
func (d *Dialer) Dial(ctx context.Context) (database.Session, error) {
	d.dials.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailDials > 0 {
		d.FailDials--
		if d.DialErr != nil {
			return nil, d.DialErr
		}
		return nil, ErrInjected
	}

	newSession := d.NewSession
	if newSession == nil {
		newSession = NewSession
	}
	s := newSession()
	d.Sessions = append(d.Sessions, s)
	return s, nil
}

// Dials returns how many times Dial was called
func (d *Dialer) Dials() int {
	return int(d.dials.Load())
}

// Opened returns the sessions created so far
func (d *Dialer) Opened() []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Session(nil), d.Sessions...)
}

// Faults wraps real sessions to inject failures into otherwise working storage
type Faults struct {
	// FailExecAt fails the n-th Exec inside a transaction (1-based) with Err
	FailExecAt int
	Err        error

	// Times limits injection to the first Times transactions; 0 means every one
	Times int
}

// WrapDialer returns a dialer whose sessions fail as described by f
func WrapDialer(dial database.Dialer, f Faults) database.Dialer {
	state := &faultState{Faults: f}
	return func(ctx context.Context) (database.Session, error) {
		s, err := dial(ctx)
		if err != nil {
			return nil, err
		}
		return &faultySession{Session: s, state: state}, nil
	}
}

// faultState is shared by every session of one wrapped dialer
type faultState struct {
	Faults
	mu  sync.Mutex
	txs int
}

// armed reports whether the next transaction should fail
func (f *faultState) armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs++
	return f.Times == 0 || f.txs <= f.Times
}

type faultySession struct {
	database.Session
	state *faultState
}

func (s *faultySession) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := s.Session.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, state: s.state, armed: s.state.armed()}, nil
}

type faultyTx struct {
	database.Tx
	state *faultState
	armed bool
	execs int
}

func (t *faultyTx) Exec(ctx context.Context, sql string, args ...any) error {
	t.execs++
	if t.armed && t.state.FailExecAt > 0 && t.execs == t.state.FailExecAt {
		if t.state.Err != nil {
			return t.state.Err
		}
		return ErrInjected
	}
	return t.Tx.Exec(ctx, sql, args...)
}
