package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// resultRows adapts *sql.Rows to database.Rows. SQLite has no timestamp
// type, so *time.Time destinations are filled from whatever the driver
// returns: a time.Time when the column is declared TIMESTAMP, otherwise
// text in one of the driver's timestamp layouts.
type resultRows struct {
	rows *sql.Rows
}

func (r *resultRows) Next() bool { return r.rows.Next() }
func (r *resultRows) Err() error { return classify(r.rows.Err()) }
func (r *resultRows) Close()     { _ = r.rows.Close() }

func (r *resultRows) Scan(dest ...any) error {
	raw := make([]any, len(dest))
	for i, d := range dest {
		if _, ok := d.(*time.Time); ok {
			raw[i] = new(any)
			continue
		}
		raw[i] = d
	}

	if err := r.rows.Scan(raw...); err != nil {
		return classify(err)
	}

	for i, d := range dest {
		tp, ok := d.(*time.Time)
		if !ok {
			continue
		}
		t, err := toTime(*raw[i].(*any))
		if err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		*tp = t
	}
	return nil
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTimestamp(x)
	case []byte:
		return parseTimestamp(string(x))
	case int64:
		return time.Unix(x, 0).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("cannot scan NULL into *time.Time")
	default:
		return time.Time{}, fmt.Errorf("cannot scan %T into *time.Time", v)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
