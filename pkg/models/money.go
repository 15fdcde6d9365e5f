// Package models defines the core data structures returned by the yfin client:
// quotes, candles, corporate actions, profiles, option chains, and the
// supporting value types (Money, Range, Interval).
package models

import "math"

// Currency is an ISO 4217 currency code, e.g. "USD", "EUR".
type Currency string

// Common currencies referenced by the inference tables and fallbacks.
const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
)

// Money is an amount denominated in a currency. Arithmetic preserves the
// currency of the receiver; non-finite inputs normalize to zero so that a
// missing upstream value never poisons downstream sums.
type Money struct {
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
}

// NewMoney builds a Money value, normalizing NaN/Inf amounts to zero.
func NewMoney(amount float64, currency Currency) Money {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return Money{Amount: amount, Currency: currency}
}

// Add returns m + other. The result keeps m's currency.
func (m Money) Add(other Money) Money {
	return NewMoney(m.Amount+other.Amount, m.Currency)
}

// Sub returns m - other. The result keeps m's currency.
func (m Money) Sub(other Money) Money {
	return NewMoney(m.Amount-other.Amount, m.Currency)
}

// Mul returns m scaled by factor.
func (m Money) Mul(factor float64) Money {
	return NewMoney(m.Amount*factor, m.Currency)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount == 0 }
