// Package calendar models local calendar days without time-of-day.
//
// A Day is an ordinal count of days, so arithmetic and comparisons never
// touch wall-clock instants. Conversions to time.Time always land on noon,
// which keeps daylight-saving and offset shifts from moving a value across a
// day boundary.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const KeyLayout = "2006-01-02"

const (
	secondsPerDay = 86400
	noonSeconds   = 12 * 3600
	// ordinal of 1970-01-01 when 0001-01-01 is 1
	unixEpochOrdinal = 719163 + 1
)

var ErrParse = errors.New("invalid day key")

type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse day %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("parse day %q", e.Input)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// Day is a calendar day. The zero value means "no day".
type Day struct {
	n int
}

func Date(year int, month time.Month, day int) Day {
	noon := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	unixDays := (noon.Unix() - noonSeconds) / secondsPerDay
	return Day{n: int(unixDays) + unixEpochOrdinal}
}

// FromTime returns the calendar day t falls on in its own location.
func FromTime(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	year, month, day := t.Date()
	return Date(year, month, day)
}

// Today returns the current day in loc (time.Local when nil).
func Today(now time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(now.In(loc))
}

func ParseDay(raw string) (Day, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Day{}, &ParseError{Input: raw}
	}
	parsed, err := time.Parse(KeyLayout, trimmed)
	if err != nil {
		return Day{}, &ParseError{Input: raw, Err: err}
	}
	return FromTime(parsed), nil
}

// ParseDayLoose accepts a day key or an RFC 3339 timestamp. Timestamps are
// mapped to the calendar day they fall on in loc.
func ParseDayLoose(raw string, loc *time.Location) (Day, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == len(KeyLayout) {
		return ParseDay(trimmed)
	}
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.Parse(time.RFC3339Nano, trimmed)
	if err != nil {
		return Day{}, &ParseError{Input: raw, Err: err}
	}
	return FromTime(parsed.In(loc)), nil
}

// ParseDays parses every entry, returning the valid days in input order and
// one error per rejected entry.
func ParseDays(raw []string) ([]Day, []error) {
	days := make([]Day, 0, len(raw))
	var errs []error
	for _, value := range raw {
		day, err := ParseDay(value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		days = append(days, day)
	}
	return days, errs
}

func MustParseDay(raw string) Day {
	day, err := ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return day
}

func (d Day) IsZero() bool {
	return d.n == 0
}

// Time returns noon of d in loc (UTC when nil).
func (d Day) Time(loc *time.Location) time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	utcNoon := time.Unix(int64(d.n-unixEpochOrdinal)*secondsPerDay+noonSeconds, 0).UTC()
	year, month, day := utcNoon.Date()
	return time.Date(year, month, day, 12, 0, 0, 0, loc)
}

func (d Day) Date() (int, time.Month, int) {
	return d.Time(time.UTC).Date()
}

func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Day) AddDays(n int) Day {
	if d.IsZero() {
		return d
	}
	return Day{n: d.n + n}
}

// AddMonths follows time.AddDate normalisation (Jan 31 + 1 month = Mar 2/3).
func (d Day) AddMonths(n int) Day {
	if d.IsZero() {
		return d
	}
	return FromTime(d.Time(time.UTC).AddDate(0, n, 0))
}

func (d Day) Before(other Day) bool { return d.n < other.n }
func (d Day) After(other Day) bool  { return d.n > other.n }
func (d Day) Equal(other Day) bool  { return d.n == other.n }

// Between reports whether d lies in [start, end]. Zero bounds never match.
func (d Day) Between(start Day, end Day) bool {
	if d.IsZero() || start.IsZero() || end.IsZero() {
		return false
	}
	return d.n >= start.n && d.n <= end.n
}

// DaysBetween returns b - a in whole days.
func DaysBetween(a Day, b Day) int {
	return b.n - a.n
}

func (d Day) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.Time(time.UTC).Format(KeyLayout)
}

func (d Day) String() string {
	return d.Key()
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.Key()), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes null for the zero day.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Key() + `"`), nil
}

func (d *Day) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = Day{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return &ParseError{Input: raw}
	}
	return d.UnmarshalText([]byte(raw[1 : len(raw)-1]))
}

// MarshalYAML writes the day key (empty for the zero day).
func (d Day) MarshalYAML() (any, error) {
	return d.Key(), nil
}

// Max returns the latest non-zero day, or the zero day.
func Max(days ...Day) Day {
	best := Day{}
	for _, day := range days {
		if day.IsZero() {
			continue
		}
		if best.IsZero() || day.After(best) {
			best = day
		}
	}
	return best
}
