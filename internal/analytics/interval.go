package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

var ErrInvalidInterval = fmt.Errorf("%w: invalid interval", shortener.ErrInvalidInput)

// Interval is the bucket granularity of the clicks-over-time series.
// The set is closed: values only come from ParseInterval.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval6h  Interval = "6h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval7d  Interval = "7d"
	Interval30d Interval = "30d"
)

// CalendarUnit names a calendar-aligned bucket.
type CalendarUnit string

const (
	UnitWeek  CalendarUnit = "week"
	UnitMonth CalendarUnit = "month"
)

// bucketRule is either a fixed width counted from the Unix epoch in UTC or a
// calendar unit (ISO week starting Monday, calendar month).
type bucketRule struct {
	width time.Duration
	unit  CalendarUnit
}

var rules = map[Interval]bucketRule{
	Interval15m: {width: 15 * time.Minute},
	Interval30m: {width: 30 * time.Minute},
	Interval1h:  {width: time.Hour},
	Interval6h:  {width: 6 * time.Hour},
	Interval12h: {width: 12 * time.Hour},
	Interval1d:  {width: 24 * time.Hour},
	Interval7d:  {unit: UnitWeek},
	Interval30d: {unit: UnitMonth},
}

// Intervals lists every accepted interval, finest first.
func Intervals() []Interval {
	return []Interval{
		Interval15m, Interval30m, Interval1h, Interval6h,
		Interval12h, Interval1d, Interval7d, Interval30d,
	}
}

func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if _, ok := rules[iv]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return iv, nil
}

func (i Interval) Valid() bool {
	_, ok := rules[i]
	return ok
}

func (i Interval) String() string { return string(i) }

// Width returns the fixed bucket width, or false for calendar intervals.
func (i Interval) Width() (time.Duration, bool) {
	r := rules[i]
	return r.width, r.width > 0
}

// Unit returns the calendar unit, or false for fixed-width intervals.
func (i Interval) Unit() (CalendarUnit, bool) {
	r := rules[i]
	return r.unit, r.unit != ""
}

// Truncate rounds t down to the start of its bucket, in UTC.
func (i Interval) Truncate(t time.Time) time.Time {
	t = t.UTC()
	r, ok := rules[i]
	if !ok {
		panic(errors.New("analytics: truncate with invalid interval " + string(i)))
	}

	if r.width > 0 {
		// Widths divide a day, and Go's zero time sits on a UTC midnight, so
		// this matches epoch-based truncation.
		return t.Truncate(r.width)
	}

	y, m, d := t.Date()
	switch r.unit {
	case UnitWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}
