package models

import "fmt"

// Range is a named lookback window accepted by the chart endpoint.
type Range string

const (
	Range1D  Range = "1d"
	Range5D  Range = "5d"
	Range1Mo Range = "1mo"
	Range3Mo Range = "3mo"
	Range6Mo Range = "6mo"
	Range1Y  Range = "1y"
	Range2Y  Range = "2y"
	Range5Y  Range = "5y"
	Range10Y Range = "10y"
	RangeYTD Range = "ytd"
	RangeMax Range = "max"
)

var validRanges = map[Range]bool{
	Range1D: true, Range5D: true, Range1Mo: true, Range3Mo: true,
	Range6Mo: true, Range1Y: true, Range2Y: true, Range5Y: true,
	Range10Y: true, RangeYTD: true, RangeMax: true,
}

// ParseRange validates a wire token and returns the Range it names.
func ParseRange(s string) (Range, error) {
	r := Range(s)
	if !validRanges[r] {
		return "", fmt.Errorf("invalid range %q", s)
	}
	return r, nil
}

// Interval is the bar width accepted by the chart endpoint.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval2m  Interval = "2m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval90m Interval = "90m"
	Interval1h  Interval = "1h"
	Interval1D  Interval = "1d"
	Interval5D  Interval = "5d"
	Interval1Wk Interval = "1wk"
	Interval1Mo Interval = "1mo"
	Interval3Mo Interval = "3mo"
)

var validIntervals = map[Interval]bool{
	Interval1m: true, Interval2m: true, Interval5m: true, Interval15m: true,
	Interval30m: true, Interval60m: true, Interval90m: true, Interval1h: true,
	Interval1D: true, Interval5D: true, Interval1Wk: true, Interval1Mo: true,
	Interval3Mo: true,
}

// ParseInterval validates a wire token and returns the Interval it names.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if !validIntervals[iv] {
		return "", fmt.Errorf("invalid interval %q", s)
	}
	return iv, nil
}
