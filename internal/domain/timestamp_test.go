package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlexible_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "2022-04-14", want: time.Date(2022, 4, 14, 0, 0, 0, 0, time.UTC)},
		{input: "2022-04-14T13:10:17Z", want: time.Date(2022, 4, 14, 13, 10, 17, 0, time.UTC)},
		{input: "2022-04-14T13:10:17.123Z", want: time.Date(2022, 4, 14, 13, 10, 17, 123000000, time.UTC)},
		{input: "2022-04-14T13:10:17", want: time.Date(2022, 4, 14, 13, 10, 17, 0, time.UTC)},
		{input: "2022-04-14T13:10:17.456", want: time.Date(2022, 4, 14, 13, 10, 17, 456000000, time.UTC)},
		{input: "2022-04-14T13:10:17.4", want: time.Date(2022, 4, 14, 13, 10, 17, 400000000, time.UTC)},
		{input: "2022-04-14T13:10:17.123456Z", want: time.Date(2022, 4, 14, 13, 10, 17, 123456000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseFlexible(tt.input)
			if !ok {
				t.Fatalf("ParseFlexible(%q) failed", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseFlexible(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseFlexible(%q) location = %v, want UTC", tt.input, got.Location())
			}
		})
	}
}

func TestParseFlexible_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"14-04-2022",
		"2022-13-45",
		"not a date",
		"1649941817",
		"2022-04-14T13:10",
		"2022-04-14T13:10:17+02:00",
		"2022-04-14T13:10:17.1234567Z",
		"2022-04-14 13:10:17",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if got, ok := ParseFlexible(input); ok {
				t.Errorf("ParseFlexible(%q) = %v, want failure", input, got)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "basic", in: time.Date(2022, 4, 14, 13, 10, 17, 0, time.UTC), want: "2022-04-14T13:10:17.000Z"},
		{name: "microseconds truncated", in: time.Date(2022, 4, 14, 13, 10, 17, 123456000, time.UTC), want: "2022-04-14T13:10:17.123Z"},
		{name: "no rounding up", in: time.Date(2022, 4, 14, 13, 10, 17, 999999999, time.UTC), want: "2022-04-14T13:10:17.999Z"},
		{name: "midnight", in: time.Date(2022, 4, 14, 0, 0, 0, 0, time.UTC), want: "2022-04-14T00:00:00.000Z"},
		{name: "end of day", in: time.Date(2022, 4, 14, 23, 59, 59, 999000000, time.UTC), want: "2022-04-14T23:59:59.999Z"},
		{name: "converted to utc", in: time.Date(2022, 4, 14, 15, 10, 17, 0, time.FixedZone("CEST", 2*3600)), want: "2022-04-14T13:10:17.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp_RoundTrip(t *testing.T) {
	parsed, ok := ParseFlexible("2022-04-14T13:10:17.123456Z")
	if !ok {
		t.Fatal("ParseFlexible failed")
	}
	if got := FormatTimestamp(parsed); got != "2022-04-14T13:10:17.123Z" {
		t.Errorf("FormatTimestamp = %q, want 2022-04-14T13:10:17.123Z", got)
	}
}

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantFrom string
		wantTo   string
	}{
		{name: "bare dates advance upper bound", from: "2022-04-14", to: "2022-04-15", wantFrom: "2022-04-14", wantTo: "2022-04-16"},
		{name: "equal bare dates cover one day", from: "2022-04-14", to: "2022-04-14", wantFrom: "2022-04-14", wantTo: "2022-04-15"},
		{name: "timestamp upper bound stays", from: "2022-04-14", to: "2022-04-15T00:00:00", wantFrom: "2022-04-14", wantTo: "2022-04-15"},
		{name: "timestamp upper bound truncated", from: "2022-04-14", to: "2022-04-15T18:30:00Z", wantFrom: "2022-04-14", wantTo: "2022-04-15"},
		{name: "lower bound never advances", from: "2022-04-14T23:59:59.999Z", to: "2022-04-15", wantFrom: "2022-04-14", wantTo: "2022-04-16"},
		{name: "month rollover", from: "2022-04-30", to: "2022-04-30", wantFrom: "2022-04-30", wantTo: "2022-05-01"},
		{name: "inverted range is not an error", from: "2022-04-20", to: "2022-04-10", wantFrom: "2022-04-20", wantTo: "2022-04-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ResolveRange(tt.from, tt.to)
			if err != nil {
				t.Fatalf("ResolveRange failed: %v", err)
			}
			gotFrom, gotTo := r.Bounds()
			if gotFrom != tt.wantFrom || gotTo != tt.wantTo {
				t.Errorf("ResolveRange(%q, %q) = [%s, %s), want [%s, %s)", tt.from, tt.to, gotFrom, gotTo, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestResolveRange_Errors(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{name: "missing from", from: "", to: "2022-04-14", want: ErrMissingRange},
		{name: "missing to", from: "2022-04-14", to: "", want: ErrMissingRange},
		{name: "bad from", from: "yesterday", to: "2022-04-14", want: ErrInvalidRange},
		{name: "bad to", from: "2022-04-14", to: "14-04-2022", want: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveRange(tt.from, tt.to)
			if !errors.Is(err, tt.want) {
				t.Errorf("ResolveRange error = %v, want %v", err, tt.want)
			}
			if !IsRejection(err) {
				t.Errorf("IsRejection(%v) = false, want true", err)
			}
		})
	}
}

func TestDateRange_Contains(t *testing.T) {
	r, err := ResolveRange("2022-04-14", "2022-04-14")
	if err != nil {
		t.Fatalf("ResolveRange failed: %v", err)
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{at: time.Date(2022, 4, 13, 23, 59, 59, 0, time.UTC), want: false},
		{at: time.Date(2022, 4, 14, 0, 0, 0, 0, time.UTC), want: true},
		{at: time.Date(2022, 4, 14, 23, 59, 59, 0, time.UTC), want: true},
		{at: time.Date(2022, 4, 15, 0, 0, 0, 0, time.UTC), want: false},
	}
	for _, c := range cases {
		if got := r.Contains(c.at); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.at, got, c.want)
		}
	}
}
