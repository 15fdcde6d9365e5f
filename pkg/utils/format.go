// Package utils provides display formatting helpers for yfin.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/gramistella/yfin/pkg/models"
)

// FormatMoney renders a Money value as "190.50 USD". A missing currency
// leaves just the amount.
func FormatMoney(m models.Money) string {
	s := fmt.Sprintf("%.2f", m.Amount)
	if m.Currency == "" {
		return s
	}
	return s + " " + string(m.Currency)
}

// FormatCount renders a share or contract count in compact notation:
// 1927345 → "1.93M", 1500 → "1.50K". Values under a thousand print as-is.
func FormatCount(n uint64) string {
	f := float64(n)
	switch {
	case f >= 1e12:
		return trimCompact(f/1e12) + "T"
	case f >= 1e9:
		return trimCompact(f/1e9) + "B"
	case f >= 1e6:
		return trimCompact(f/1e6) + "M"
	case f >= 1e3:
		return trimCompact(f/1e3) + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatFloat renders a float with up to 2 decimals, dropping a trailing
// ".00". NaN renders as "n/a".
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return trimCompact(f)
}

func trimCompact(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	if strings.HasSuffix(s, ".00") {
		return s[:len(s)-3]
	}
	return s
}
