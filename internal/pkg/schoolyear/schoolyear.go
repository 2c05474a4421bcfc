// Package schoolyear maps calendar dates onto school years. A school year starts on
// August 1st: any date before August belongs to the year that started the previous summer.
package schoolyear

import (
	"fmt"
	"time"
)

// FirstMonth is the month a school year starts in.
const FirstMonth = time.August

// Year is a school year spanning two calendar years.
type Year struct {
	Start int
	End   int
}

// Of returns the school year containing d.
func Of(d time.Time) Year {
	start := d.Year()
	if d.Month() < FirstMonth {
		start--
	}
	return Year{Start: start, End: start + 1}
}

// String formats the year as "2013 — 2014".
func (y Year) String() string {
	return fmt.Sprintf("%d — %d", y.Start, y.End)
}

// StartDate is August 1st of the school year containing today, in today's location.
func StartDate(today time.Time) time.Time {
	return time.Date(Of(today).Start, FirstMonth, 1, 0, 0, 0, 0, today.Location())
}

// Shift is the number of school years separating the year of d from the year of today.
// It is positive when d lies in a future school year.
func Shift(d, today time.Time) int {
	return Of(d).Start - Of(today).Start
}

// Clock returns the current time in a fixed location.
type Clock func() time.Time

// NewClock returns a Clock reporting wall time in loc.
func NewClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// FixedClock always reports t. Useful for tests and batch runs pinned to a date.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Today truncates the clock reading to midnight.
func (c Clock) Today() time.Time {
	now := c()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
