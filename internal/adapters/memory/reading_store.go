package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

// ReadingStore implements domain.ReadingStore with in-memory storage
// This is perfect for development - no database setup needed
//
// Raw lines play the bronze role. Silver rows are the lines that parse, and
// the gold stage is one Power row per calendar day derived with
// domain.DailyPower, so the dev timeline looks like the warehouse one.
type ReadingStore struct {
	mu   sync.RWMutex
	raw  []string
	rows []domain.ReadingRow // silver, in arrival order
}

// NewReadingStore creates an empty in-memory store
func NewReadingStore() *ReadingStore {
	return &ReadingStore{}
}

// SaveRawLines stores the batch atomically
func (s *ReadingStore) SaveRawLines(ctx context.Context, lines []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parsed := make([]domain.ReadingRow, 0, len(lines))
	for _, line := range lines {
		r, err := domain.ParseLine(line)
		if err != nil {
			// bronze keeps what silver would filter out
			continue
		}
		parsed = append(parsed, domain.NewReadingRow(r.Time(), r.Name, r.Value))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw = append(s.raw, lines...)
	s.rows = append(s.rows, parsed...)
	return nil
}

// RawLines returns a copy of every stored raw line
func (s *ReadingStore) RawLines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.raw...)
}

// ReadingsInRange returns silver and derived gold rows whose date is in range
func (s *ReadingStore) ReadingsInRange(ctx context.Context, r domain.DateRange) ([]domain.ReadingRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []domain.ReadingRow{}
	type daily struct{ voltages, currents []float64 }
	days := make(map[time.Time]*daily)

	for _, row := range s.rows {
		if !r.Contains(row.Time) {
			continue
		}
		results = append(results, row)

		day := row.Time.Truncate(24 * time.Hour)
		d := days[day]
		if d == nil {
			d = &daily{}
			days[day] = d
		}
		switch row.Name {
		case domain.MetricVoltage:
			d.voltages = append(d.voltages, row.Value)
		case domain.MetricCurrent:
			d.currents = append(d.currents, row.Value)
		}
	}

	for day, d := range days {
		if power, ok := domain.DailyPower(d.voltages, d.currents); ok {
			results = append(results, domain.NewReadingRow(day, domain.MetricPower, power))
		}
	}

	// Sort by timestamp, then name
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].Time.Equal(results[j].Time) {
			return results[i].Time.Before(results[j].Time)
		}
		return results[i].Name < results[j].Name
	})

	return results, nil
}
