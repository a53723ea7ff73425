package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Reading represents a single validated sensor line
// This is pure domain logic - no database, no transport, just business concepts
type Reading struct {
	Timestamp int64
	Name      string
	Value     float64
}

// ParseLine validates one "{unix_seconds} {metric_name} {value}" line.
// Malformed input is an expected outcome and is reported as ErrInvalidLine.
func ParseLine(line string) (Reading, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Reading{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrInvalidLine, len(fields))
	}

	// Business rule: timestamps are whole, non-negative seconds
	ts, err := parseTimestamp(fields[0])
	if err != nil {
		return Reading{}, err
	}

	name := fields[1]
	if first, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(first) {
		return Reading{}, fmt.Errorf("%w: metric name %q must start with a letter", ErrInvalidLine, name)
	}

	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Reading{}, fmt.Errorf("%w: value %q is not a finite number", ErrInvalidLine, fields[2])
	}

	return Reading{Timestamp: ts, Name: name, Value: value}, nil
}

func parseTimestamp(s string) (int64, error) {
	// ParseInt accepts a leading '+' or '-'; neither is a valid timestamp here
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, fmt.Errorf("%w: timestamp %q is not a non-negative integer", ErrInvalidLine, s)
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: timestamp %q is not a non-negative integer", ErrInvalidLine, s)
	}
	return ts, nil
}

// Time returns the reading's instant in UTC
func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// ReadingRow is one row of the curated timeline returned by range queries
type ReadingRow struct {
	Time  time.Time
	Name  string
	Value float64
}

// NewReadingRow normalizes the instant to UTC with millisecond precision
func NewReadingRow(t time.Time, name string, value float64) ReadingRow {
	return ReadingRow{
		Time:  t.UTC().Truncate(time.Millisecond),
		Name:  name,
		Value: value,
	}
}

type readingRowJSON struct {
	Time  string  `json:"time"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MarshalJSON renders the row as {time, name, value} with a fixed-precision time
func (r ReadingRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingRowJSON{
		Time:  FormatTimestamp(r.Time),
		Name:  r.Name,
		Value: r.Value,
	})
}

// UnmarshalJSON accepts the representation produced by MarshalJSON
func (r *ReadingRow) UnmarshalJSON(data []byte) error {
	var raw readingRowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, ok := ParseFlexible(raw.Time)
	if !ok {
		return fmt.Errorf("invalid reading time %q", raw.Time)
	}
	*r = NewReadingRow(t, raw.Name, raw.Value)
	return nil
}
