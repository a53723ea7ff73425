package database

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Default retry settings for transient connectivity failures.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 10 * time.Second
)

// RetryPolicy describes how a failed call is retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Defaults to IsTransient.
	Retryable func(error) bool

	// Sleep waits between attempts. Defaults to a context-aware timer;
	// tests replace it to observe the schedule without waiting.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy retries transient failures up to 3 times with
// exponential backoff from 1s capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
// A zero MaxBackoff leaves the schedule uncapped.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	for i := 1; i < attempt; i++ {
		if d > math.MaxInt64/2 {
			return d
		}
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return d
}

// Do calls op until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil || !retryable(err) || attempt == attempts {
			return err
		}

		wait := p.Backoff(attempt)
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("transient database error, retrying")

		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return err
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Executor runs one unit of database work on a pooled session, retrying
// the whole unit on transient failures. Each attempt leases its own
// session, so a broken connection is never reused by the retry.
type Executor struct {
	pool   *Pool
	policy RetryPolicy
}

// NewExecutor creates an Executor over pool.
func NewExecutor(pool *Pool, policy RetryPolicy) *Executor {
	return &Executor{pool: pool, policy: policy}
}

// Do runs fn with a leased session under the retry policy.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	return e.policy.Do(ctx, func(ctx context.Context) error {
		return e.pool.With(ctx, fn)
	})
}

// Pool returns the pool the executor leases from.
func (e *Executor) Pool() *Pool {
	return e.pool
}
