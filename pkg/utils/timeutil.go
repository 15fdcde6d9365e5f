package utils

import (
	"time"
)

// ExchangeLocation resolves an exchange timezone name from the chart meta
// (e.g. "America/New_York") to a Location, falling back to UTC when the
// name is empty or unknown to the tz database.
func ExchangeLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatDate renders a Unix-second timestamp as a date in the exchange
// timezone, or UTC when tz is empty.
func FormatDate(ts int64, tz string) string {
	return time.Unix(ts, 0).In(ExchangeLocation(tz)).Format("2006-01-02")
}

// FormatTime renders a Unix-second timestamp with time-of-day in the
// exchange timezone.
func FormatTime(ts int64, tz string) string {
	return time.Unix(ts, 0).In(ExchangeLocation(tz)).Format("2006-01-02 15:04:05 MST")
}
