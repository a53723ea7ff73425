package ports

import (
	"context"
	"errors"
	"sync"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

// failingStore fails every call with err
type failingStore struct {
	err error
}

func (s failingStore) SaveRawLines(ctx context.Context, lines []string) error { return s.err }

func (s failingStore) ReadingsInRange(ctx context.Context, r domain.DateRange) ([]domain.ReadingRow, error) {
	return nil, s.err
}

// recordingStore remembers what it was asked to do
type recordingStore struct {
	mu      sync.Mutex
	batches [][]string
	ranges  []domain.DateRange
	rows    []domain.ReadingRow
}

func (s *recordingStore) SaveRawLines(ctx context.Context, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, lines)
	return nil
}

func (s *recordingStore) ReadingsInRange(ctx context.Context, r domain.DateRange) ([]domain.ReadingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges = append(s.ranges, r)
	return s.rows, nil
}

// mapCache is a ResultCache backed by a map
type mapCache struct {
	mu      sync.Mutex
	entries map[domain.DateRange][]domain.ReadingRow
	puts    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[domain.DateRange][]domain.ReadingRow)}
}

func (c *mapCache) Get(ctx context.Context, r domain.DateRange) ([]domain.ReadingRow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.entries[r]
	return rows, ok
}

func (c *mapCache) Put(ctx context.Context, r domain.DateRange, rows []domain.ReadingRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r] = rows
	c.puts++
}

var errBackend = errors.New("connection refused")
