// Package marketday computes the recurring trading-day schedule of a market.
//
// A market trades every Interval days starting from a known market day. Dates
// are compared at calendar-day granularity in the calculator's location, so
// the time of day carried by stored timestamps never shifts a result.
package marketday

import (
	"errors"
	"time"
)

const secondsPerDay = 24 * 60 * 60

var (
	ErrInvalidInterval = errors.New("market day interval must be a positive number of days")
	ErrMissingDate     = errors.New("a reference market date is required")
)

type Schedule struct {
	Interval int       `json:"interval"`
	Last     time.Time `json:"lastMarketDay"`
	Next     time.Time `json:"nextMarketDay"`
}

type Calculator struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}

	return &Calculator{
		Location: loc,
		Now:      time.Now,
	}
}

// Today is the current calendar day in the calculator's location.
func (c *Calculator) Today() time.Time {
	return c.day(c.Now().In(c.Location))
}

// Compute returns the most recent market day on or before today and the one
// after it. When interval is zero it is derived from the distance between
// prev and next; either way the result satisfies
// Last <= today < Last+Interval and Next == Last+Interval.
func (c *Calculator) Compute(prev, next time.Time, interval int) (Schedule, error) {
	if prev.IsZero() && next.IsZero() {
		return Schedule{}, ErrMissingDate
	}

	start := prev
	if start.IsZero() || (!next.IsZero() && next.Before(prev)) {
		start = next
	}
	start = civil(start)

	if interval == 0 {
		if prev.IsZero() || next.IsZero() {
			return Schedule{}, ErrMissingDate
		}
		interval = c.IntervalDays(prev, next)
	}
	if interval <= 0 {
		return Schedule{}, ErrInvalidInterval
	}

	elapsed := daysBetween(start, c.Today())
	steps := floorDiv(elapsed, interval)

	last := start.AddDate(0, 0, steps*interval)

	return Schedule{
		Interval: interval,
		Last:     c.day(last),
		Next:     c.day(last.AddDate(0, 0, interval)),
	}, nil
}

// IntervalDays is the absolute number of calendar days between a and b.
func (c *Calculator) IntervalDays(a, b time.Time) int {
	d := daysBetween(a, b)
	if d < 0 {
		return -d
	}

	return d
}

// day keeps the calendar date of t as written and moves it to the
// calculator's location. Stored market dates come back from postgres as UTC
// midnight and must not roll back a day in western zones.
func (c *Calculator) day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location)
}

// civil is the calendar date of t at UTC midnight, where every calendar day
// exists. Pacific/Apia has no 2011-12-30.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b. Both are re-anchored in UTC
// so daylight saving transitions in the calculator's location do not produce
// 23 or 25 hour days. Unix seconds are used because time.Duration saturates
// after roughly 292 years.
func daysBetween(a, b time.Time) int {
	ua := civil(a).Unix()
	ub := civil(b).Unix()

	return int((ub - ua) / secondsPerDay)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
