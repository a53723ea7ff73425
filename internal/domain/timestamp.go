package domain

import (
	"fmt"
	"regexp"
	"time"
)

// flexibleLayout pairs the accepted shape of a timestamp string with the
// layout used to parse it. The shape check keeps fractional seconds to at
// most six digits; time.Parse then rejects impossible calendar values.
type flexibleLayout struct {
	shape    *regexp.Regexp
	layout   string
	dateOnly bool
}

// Tried in order; the first match wins.
var flexibleLayouts = []flexibleLayout{
	{shape: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6}Z$`), layout: "2006-01-02T15:04:05Z"},
	{shape: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`), layout: "2006-01-02T15:04:05Z"},
	{shape: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6}$`), layout: "2006-01-02T15:04:05"},
	{shape: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`), layout: "2006-01-02T15:04:05"},
	{shape: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), layout: time.DateOnly, dateOnly: true},
}

// timestampFormat truncates (never rounds) sub-millisecond precision
const timestampFormat = "2006-01-02T15:04:05.000Z"

// ParseFlexible parses a bare date or an ISO-8601 timestamp with optional
// fractional seconds and optional "Z" marker. Inputs without a zone are UTC.
func ParseFlexible(s string) (time.Time, bool) {
	t, _, ok := parseFlexible(s)
	return t, ok
}

func parseFlexible(s string) (time.Time, flexibleLayout, bool) {
	for _, f := range flexibleLayouts {
		if !f.shape.MatchString(s) {
			continue
		}
		t, err := time.ParseInLocation(f.layout, s, time.UTC)
		if err != nil {
			return time.Time{}, flexibleLayout{}, false
		}
		return t, f, true
	}
	return time.Time{}, flexibleLayout{}, false
}

// FormatTimestamp renders t as YYYY-MM-DDTHH:MM:SS.mmmZ in UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// DateRange is a half-open interval of calendar days [From, To).
// Both bounds are UTC midnights. An inverted range is not an error; it
// simply matches nothing.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ResolveRange turns the caller's "from" and "to" strings into a DateRange.
//
// Both bounds are truncated to midnight. When "to" is a bare date the upper
// bound is advanced by one day so that the whole named day is included; a
// "to" carrying a time of day is only truncated, never advanced.
func ResolveRange(from, to string) (DateRange, error) {
	if from == "" || to == "" {
		return DateRange{}, ErrMissingRange
	}

	fromTime, _, ok := parseFlexible(from)
	if !ok {
		return DateRange{}, fmt.Errorf("%w: from=%q", ErrInvalidRange, from)
	}
	toTime, toLayout, ok := parseFlexible(to)
	if !ok {
		return DateRange{}, fmt.Errorf("%w: to=%q", ErrInvalidRange, to)
	}

	r := DateRange{
		From: midnight(fromTime),
		To:   midnight(toTime),
	}
	if toLayout.dateOnly {
		r.To = r.To.AddDate(0, 0, 1)
	}
	return r, nil
}

// Bounds returns the range as two YYYY-MM-DD strings
func (r DateRange) Bounds() (from, to string) {
	return r.From.Format(time.DateOnly), r.To.Format(time.DateOnly)
}

// Contains reports whether the calendar day of t falls within the range
func (r DateRange) Contains(t time.Time) bool {
	day := midnight(t)
	return !day.Before(r.From) && day.Before(r.To)
}

// String implements fmt.Stringer
func (r DateRange) String() string {
	from, to := r.Bounds()
	return "[" + from + ", " + to + ")"
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
