package domain

import (
	"context"
)

// ReadingStore defines operations for storing raw lines and reading curated rows
// This is a PORT - adapters (SQL, Memory) will implement it
type ReadingStore interface {
	// SaveRawLines persists every line as its own raw record in one
	// transaction. Either all lines are stored or none are.
	SaveRawLines(ctx context.Context, lines []string) error

	// ReadingsInRange returns curated rows from both curation stages whose
	// calendar date falls in the half-open range, ordered by time then name.
	ReadingsInRange(ctx context.Context, r DateRange) ([]ReadingRow, error)
}

// ResultCache stores query results keyed by resolved range
// Implementations must treat their own failures as cache misses
type ResultCache interface {
	Get(ctx context.Context, r DateRange) ([]ReadingRow, bool)
	Put(ctx context.Context, r DateRange, rows []ReadingRow)
}
