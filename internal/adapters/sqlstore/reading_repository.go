// Package sqlstore implements domain.ReadingStore with SQL that runs
// unchanged on PostgreSQL and on the SQLite development sessions.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/database"
	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

const sqlPreviewLen = 50

// ReadingRepository implements domain.ReadingStore over a retrying executor
type ReadingRepository struct {
	exec      *database.Executor
	insertSQL string
	rangeSQL  string
}

// NewReadingRepository creates a repository for the given schemas. Schema
// names are interpolated into the SQL, so each must be a plain identifier.
func NewReadingRepository(exec *database.Executor, schemas config.SchemaConfig) (*ReadingRepository, error) {
	for _, name := range schemas.All() {
		if !config.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid schema name %q", name)
		}
	}

	return &ReadingRepository{
		exec:      exec,
		insertSQL: fmt.Sprintf(`INSERT INTO %s.raw_readings (raw_line) VALUES ($1)`, schemas.Bronze),
		rangeSQL: fmt.Sprintf(`SELECT reading_time, metric_name, metric_value
FROM %s.stg_readings
WHERE reading_date >= $1 AND reading_date < $2
UNION ALL
SELECT reading_time, metric_name, metric_value
FROM %s.mart_daily_power
WHERE reading_date >= $1 AND reading_date < $2
ORDER BY 1, 2`, schemas.Silver, schemas.Gold),
	}, nil
}

// SaveRawLines inserts every line as its own raw record inside one transaction
func (r *ReadingRepository) SaveRawLines(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	start := time.Now()
	err := r.exec.Do(ctx, func(ctx context.Context, s database.Session) error {
		return database.InTx(ctx, s, func(tx database.Tx) error {
			for i, line := range lines {
				if err := tx.Exec(ctx, r.insertSQL, line); err != nil {
					return fmt.Errorf("failed to insert line %d: %w", i+1, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save raw lines: %w", err)
	}

	log.Debug().
		Int("lines", len(lines)).
		Dur("took", time.Since(start)).
		Str("sql", preview(r.insertSQL)).
		Msg("raw lines saved")
	return nil
}

// ReadingsInRange returns silver and gold rows in the half-open date range,
// ordered by time then metric name
func (r *ReadingRepository) ReadingsInRange(ctx context.Context, dr domain.DateRange) ([]domain.ReadingRow, error) {
	from, to := dr.Bounds()

	start := time.Now()
	var readings []domain.ReadingRow
	err := r.exec.Do(ctx, func(ctx context.Context, s database.Session) error {
		readings = readings[:0]

		rows, err := s.Query(ctx, r.rangeSQL, from, to)
		if err != nil {
			return fmt.Errorf("failed to query readings: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				t     time.Time
				name  string
				value float64
			)
			if err := rows.Scan(&t, &name, &value); err != nil {
				return fmt.Errorf("failed to scan reading: %w", err)
			}
			readings = append(readings, domain.NewReadingRow(t, name, value))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("from", from).
		Str("to", to).
		Int("rows", len(readings)).
		Dur("took", time.Since(start)).
		Str("sql", preview(r.rangeSQL)).
		Msg("range query executed")
	return readings, nil
}

// preview shortens SQL for log lines
func preview(sql string) string {
	if len(sql) <= sqlPreviewLen {
		return sql
	}
	return sql[:sqlPreviewLen] + "..."
}
