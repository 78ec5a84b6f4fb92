// Package fiscal computes financial-year boundaries.
// Document sequences reset at the financial-year boundary, which falls on a
// fixed month (April in the Indian GST domain) but is configurable per tenant.
package fiscal

import (
	"fmt"
	"time"
)

// DefaultStartMonth is the conventional financial-year start (April 1).
const DefaultStartMonth = time.April

// Calendar derives financial years from calendar dates.
type Calendar struct {
	startMonth time.Month
}

// NewCalendar creates a calendar with the given year-start month.
// Months outside 1..12 fall back to DefaultStartMonth.
func NewCalendar(startMonth time.Month) Calendar {
	if startMonth < time.January || startMonth > time.December {
		startMonth = DefaultStartMonth
	}
	return Calendar{startMonth: startMonth}
}

// Default returns the April-start calendar.
func Default() Calendar {
	return NewCalendar(DefaultStartMonth)
}

// StartMonth returns the configured year-start month.
func (c Calendar) StartMonth() time.Month {
	return c.startMonth
}

// YearOf returns the financial year containing t.
func (c Calendar) YearOf(t time.Time) Year {
	start := t.Year()
	if t.Month() < c.startMonth {
		start--
	}
	return Year{start: start, calendar: c}
}

// Year is one financial year, identified by its starting calendar year.
type Year struct {
	start    int
	calendar Calendar
}

// StartYear returns the calendar year the financial year begins in.
func (y Year) StartYear() int {
	return y.start
}

// Tag renders the year as stored on sequence rows, e.g. "2024-25".
// A January-start calendar has no spanning year, so the tag collapses
// to the plain calendar year, e.g. "2024".
func (y Year) Tag() string {
	if y.calendar.startMonth == time.January {
		return fmt.Sprintf("%d", y.start)
	}
	return fmt.Sprintf("%d-%02d", y.start, (y.start+1)%100)
}

// Short returns the two-digit suffix used in rendered document numbers,
// e.g. "24" for FY 2024-25.
func (y Year) Short() string {
	return fmt.Sprintf("%02d", y.start%100)
}

// Begin returns the first instant of the financial year (UTC).
func (y Year) Begin() time.Time {
	return time.Date(y.start, y.calendar.startMonth, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the next financial year (UTC).
func (y Year) End() time.Time {
	return y.Begin().AddDate(1, 0, 0)
}

// Contains reports whether t falls within the financial year.
func (y Year) Contains(t time.Time) bool {
	return !t.Before(y.Begin()) && t.Before(y.End())
}
