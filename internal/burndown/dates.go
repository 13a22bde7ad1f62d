package burndown

import (
	"time"

	"burndown-gen/internal/issue"
)

const dayFormat = "2006-01-02"

// ParseDay parses a "YYYY-MM-DD" calendar date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(dayFormat, s)
}

// DateRange returns the inclusive sequence of calendar days between start and
// end, one entry per day, each normalized to midnight. start > end yields nil.
func DateRange(start, end time.Time) []time.Time {
	start = issue.Midnight(start)
	end = issue.Midnight(end)

	var days []time.Time
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		days = append(days, current)
	}
	return days
}

// WorkingDateRange is DateRange with Saturdays and Sundays removed.
func WorkingDateRange(start, end time.Time) []time.Time {
	var days []time.Time
	for _, d := range DateRange(start, end) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// DefaultRange returns the trailing 30-day window ending at now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	return issue.Midnight(now.AddDate(0, 0, -30)), issue.Midnight(now)
}
