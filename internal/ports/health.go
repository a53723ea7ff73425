package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// SessionRunner leases a database session for the duration of fn.
// *database.Pool implements it.
type SessionRunner interface {
	With(ctx context.Context, fn func(ctx context.Context, s database.Session) error) error
}

// HealthProbe checks that the database answers a trivial query
type HealthProbe struct {
	db      SessionRunner
	timeout time.Duration
}

// NewHealthProbe creates a probe. A nil db means there is no database to
// check and the probe always passes.
func NewHealthProbe(db SessionRunner, timeout time.Duration) *HealthProbe {
	return &HealthProbe{db: db, timeout: timeout}
}

// Check reports whether a session can be leased and answers SELECT 1.
// It never returns an error; failures are logged.
func (p *HealthProbe) Check(ctx context.Context) bool {
	if p.db == nil {
		return true
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.db.With(ctx, func(ctx context.Context, s database.Session) error {
		rows, err := s.Query(ctx, "SELECT 1")
		if err != nil {
			return err
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("health query returned no rows")
		}
		var one int
		if err := rows.Scan(&one); err != nil {
			return err
		}
		if one != 1 {
			return fmt.Errorf("health query returned %d", one)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("database health check failed")
		return false
	}
	return true
}
