package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
	"github.com/rs/zerolog/log"
)

// PoolConfig bounds the pool.
type PoolConfig struct {
	// MinConns sessions are opened right after the pool is created.
	MinConns int
	// MaxConns is the hard limit on concurrently leased sessions.
	MaxConns int
	// CloseTimeout bounds closing a single session on release or shutdown.
	CloseTimeout time.Duration
}

// Pool is a bounded set of reusable Sessions.
//
// Nothing is dialled until the first Acquire. Callers beyond MaxConns block
// until a session is released or their context ends; exhaustion is
// backpressure, not an error.
type Pool struct {
	cfg  PoolConfig
	dial Dialer

	mu     sync.Mutex
	inner  *puddle.Pool[Session]
	closed bool

	leased atomic.Int64
}

// NewPool creates a pool that opens sessions with dial.
func NewPool(cfg PoolConfig, dial Dialer) *Pool {
	if cfg.MaxConns < 1 {
		cfg.MaxConns = 1
	}
	if cfg.MinConns < 0 {
		cfg.MinConns = 0
	}
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 5 * time.Second
	}
	return &Pool{cfg: cfg, dial: dial}
}

// init creates the inner pool exactly once. The caller that creates it
// then warms MinConns sessions outside the lock, so other callers never wait
// on a warm-up dial. A failure to warm is logged; Acquire reports the
// connectivity error to its caller.
func (p *Pool) init(ctx context.Context) (*puddle.Pool[Session], error) {
	inner, created, err := p.innerPool()
	if err != nil {
		return nil, err
	}
	if created {
		p.warm(ctx, inner)
	}
	return inner, nil
}

// innerPool returns the inner pool, creating it under p.mu on first use
func (p *Pool) innerPool() (*puddle.Pool[Session], bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, false, ErrPoolClosed
	}
	if p.inner != nil {
		return p.inner, false, nil
	}

	inner, err := puddle.NewPool(&puddle.Config[Session]{
		Constructor: p.construct,
		Destructor:  p.destroy,
		MaxSize:     int32(p.cfg.MaxConns),
	})
	if err != nil {
		return nil, false, fmt.Errorf("create pool: %w", err)
	}
	p.inner = inner

	log.Info().
		Int("min", p.cfg.MinConns).
		Int("max", p.cfg.MaxConns).
		Msg("database connection pool created")
	return inner, true, nil
}

func (p *Pool) warm(ctx context.Context, inner *puddle.Pool[Session]) {
	for i := 0; i < p.cfg.MinConns; i++ {
		if err := inner.CreateResource(ctx); err != nil {
			log.Warn().Err(err).Int("warmed", i).Msg("failed to warm connection pool")
			return
		}
	}
}

func (p *Pool) construct(ctx context.Context) (Session, error) {
	s, err := p.dial(ctx)
	if err != nil {
		return nil, Transient(fmt.Errorf("%w: %w", ErrConnectivity, err))
	}
	return s, nil
}

func (p *Pool) destroy(s Session) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.CloseTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		log.Debug().Err(err).Msg("error closing database session")
	}
}

// Acquire leases a session, blocking while MaxConns sessions are leased.
// The returned Conn must be released on every path, normally with defer.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	inner, err := p.init(ctx)
	if err != nil {
		return nil, err
	}

	res, err := inner.Acquire(ctx)
	if err != nil {
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, ErrPoolClosed
		}
		return nil, err
	}

	p.leased.Add(1)
	return &Conn{res: res, pool: p}, nil
}

// With leases a session for the duration of fn.
func (p *Pool) With(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return fn(ctx, conn.Session())
}

// Shutdown closes every session. It is idempotent, safe to call on a pool
// that was never used, and must only be called once no session is leased.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.inner == nil {
		return
	}
	p.inner.Close()
	p.inner = nil
	log.Info().Msg("connection pool closed")
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	Leased int
	Idle   int
	Total  int
	Max    int
}

// Stats reports the current pool occupancy.
func (p *Pool) Stats() PoolStats {
	stats := PoolStats{
		Leased: int(p.leased.Load()),
		Max:    p.cfg.MaxConns,
	}

	p.mu.Lock()
	inner := p.inner
	p.mu.Unlock()

	if inner != nil {
		s := inner.Stat()
		stats.Idle = int(s.IdleResources())
		stats.Total = int(s.TotalResources())
	}
	return stats
}

// Conn is a leased Session.
type Conn struct {
	res      *puddle.Resource[Session]
	pool     *Pool
	released atomic.Bool
}

// Session returns the leased session. It must not be used after Release.
func (c *Conn) Session() Session {
	return c.res.Value()
}

// Release returns the session to the pool. A session whose connection is
// gone is destroyed instead of being handed to the next caller. Release is
// safe to call more than once.
func (c *Conn) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	c.pool.leased.Add(-1)

	if cr, ok := c.res.Value().(closedReporter); ok && cr.IsClosed() {
		c.res.Destroy()
		return
	}
	c.res.Release()
}
