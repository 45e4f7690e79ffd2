package pkg

import (
	"time"
)

// DayBucket is the UTC calendar day used to key daily counters.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDayUTC truncates to UTC midnight, the daily reset boundary.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameUTCDay reports whether both times fall in the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	return StartOfDayUTC(a).Equal(StartOfDayUTC(b))
}
