package ports

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// StatusSink receives the latest health state
// This is a PORT - the gRPC health server implements it
type StatusSink interface {
	SetServing(serving bool)
}

// PoolStatter exposes pool occupancy for periodic logging
type PoolStatter interface {
	Stats() database.PoolStats
}

// HealthMonitor handles periodic health probing
type HealthMonitor struct {
	probe    *HealthProbe
	sink     StatusSink
	stats    PoolStatter
	interval time.Duration

	healthy *bool // nil until the first check
}

// NewHealthMonitor creates a new background monitor. sink and stats may be nil.
func NewHealthMonitor(probe *HealthProbe, sink StatusSink, stats PoolStatter, interval time.Duration) *HealthMonitor {
	return &HealthMonitor{
		probe:    probe,
		sink:     sink,
		stats:    stats,
		interval: interval,
	}
}

// Start begins periodic probing
// This runs in a goroutine until context is cancelled
func (m *HealthMonitor) Start(ctx context.Context) {
	log.Info().
		Dur("interval", m.interval).
		Msg("starting health monitor")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Check immediately on start
	m.checkOnce(ctx)

	for {
		select {
		case <-ticker.C:
			m.checkOnce(ctx)

		case <-ctx.Done():
			log.Info().Msg("stopping health monitor")
			return
		}
	}
}

// checkOnce probes the database and publishes the result
func (m *HealthMonitor) checkOnce(ctx context.Context) {
	healthy := m.probe.Check(ctx)

	if m.healthy == nil || *m.healthy != healthy {
		ev := log.Info()
		if !healthy {
			ev = log.Error()
		}
		ev.Bool("healthy", healthy).Msg("database health changed")
	}
	m.healthy = &healthy

	if m.stats != nil {
		s := m.stats.Stats()
		log.Debug().
			Int("leased", s.Leased).
			Int("idle", s.Idle).
			Int("total", s.Total).
			Int("max", s.Max).
			Msg("connection pool stats")
	}

	if m.sink != nil {
		m.sink.SetServing(healthy)
	}
}
