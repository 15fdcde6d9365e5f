package utils

import (
	"testing"
	"time"
)

func TestExchangeLocation(t *testing.T) {
	if loc := ExchangeLocation(""); loc != time.UTC {
		t.Errorf("empty name: got %v, want UTC", loc)
	}
	if loc := ExchangeLocation("Not/AZone"); loc != time.UTC {
		t.Errorf("unknown name: got %v, want UTC", loc)
	}
	loc := ExchangeLocation("America/New_York")
	if loc.String() != "America/New_York" {
		t.Errorf("got %v, want America/New_York", loc)
	}
}

func TestFormatDate(t *testing.T) {
	// 2026-08-20 00:30 UTC is still 2026-08-19 in New York.
	ts := time.Date(2026, 8, 20, 0, 30, 0, 0, time.UTC).Unix()
	if got := FormatDate(ts, ""); got != "2026-08-20" {
		t.Errorf("UTC date = %q", got)
	}
	if got := FormatDate(ts, "America/New_York"); got != "2026-08-19" {
		t.Errorf("NY date = %q", got)
	}
}
