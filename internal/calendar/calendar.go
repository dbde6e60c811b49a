// Package calendar maps instants onto calendar days in a single reference
// timezone. Streaks and the weekly rollup both compare days through the same
// Calendar so that day boundaries agree everywhere.
package calendar

import (
	"fmt"
	"time"
)

// Day is a calendar date with no time-of-day or zone attached.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// Calendar resolves instants to days in one fixed location.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar for loc. A nil loc means UTC.
func New(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Load builds a Calendar from an IANA zone name such as "Europe/Berlin".
// An empty name selects UTC.
func Load(name string) (Calendar, error) {
	if name == "" {
		return New(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calendar{}, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return New(loc), nil
}

// Location returns the reference timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayOf returns the calendar day containing t.
func (c Calendar) DayOf(t time.Time) Day {
	y, m, d := t.In(c.Location()).Date()
	return Day{Year: y, Month: m, Day: d}
}

// DayOfPtr is DayOf for optional timestamps. ok is false for nil, which
// callers treat as "never".
func (c Calendar) DayOfPtr(t *time.Time) (Day, bool) {
	if t == nil {
		return Day{}, false
	}
	return c.DayOf(*t), true
}

// StartOf returns midnight of d in the reference timezone.
func (c Calendar) StartOf(d Day) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.Location())
}

// utcMidnight anchors the date in UTC, where every day is exactly 24h long.
func (d Day) utcMidnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	y, m, dd := d.utcMidnight().AddDate(0, 0, n).Date()
	return Day{Year: y, Month: m, Day: dd}
}

// Sub returns the number of whole days from other to d.
func (d Day) Sub(other Day) int {
	return int(d.utcMidnight().Sub(other.utcMidnight()).Hours() / 24)
}

func (d Day) Equal(other Day) bool {
	return d == other
}

func (d Day) Before(other Day) bool {
	return d.Sub(other) < 0
}

func (d Day) Weekday() time.Weekday {
	return d.utcMidnight().Weekday()
}

// ShortName is the three-letter weekday label used on charts ("Mon").
func (d Day) ShortName() string {
	return d.Weekday().String()[:3]
}

// String formats the day as 2006-01-02.
func (d Day) String() string {
	return d.utcMidnight().Format("2006-01-02")
}
