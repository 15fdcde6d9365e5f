package models

import "time"

// OptionContract is one leg of an option chain, priced in the chain's
// reporting currency.
type OptionContract struct {
	ContractSymbol    string    `json:"contract_symbol"`
	Strike            Money     `json:"strike"`
	LastPrice         *Money    `json:"last_price,omitempty"`
	Bid               *Money    `json:"bid,omitempty"`
	Ask               *Money    `json:"ask,omitempty"`
	Volume            *uint64   `json:"volume,omitempty"`
	OpenInterest      *uint64   `json:"open_interest,omitempty"`
	ImpliedVolatility *float64  `json:"implied_volatility,omitempty"`
	InTheMoney        bool      `json:"in_the_money"`
	ExpirationDate    int64     `json:"expiration_date"`
	ExpirationAt      time.Time `json:"expiration_at"`
	LastTradeAt       *time.Time `json:"last_trade_at,omitempty"`
}

// OptionChain holds the calls and puts for one expiration of a symbol.
type OptionChain struct {
	Symbol          string           `json:"symbol"`
	ExpirationDates []int64          `json:"expiration_dates"`
	Expiration      int64            `json:"expiration"`
	Currency        Currency         `json:"currency"`
	Calls           []OptionContract `json:"calls"`
	Puts            []OptionContract `json:"puts"`
}
