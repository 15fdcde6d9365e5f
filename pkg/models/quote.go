package models

import "time"

// Quote is a point-in-time snapshot of a symbol from the v7 quote endpoint.
// Optional fields are nil when Yahoo omits them.
type Quote struct {
	Symbol        string   `json:"symbol"`
	ShortName     string   `json:"short_name,omitempty"`
	LongName      string   `json:"long_name,omitempty"`
	QuoteType     string   `json:"quote_type,omitempty"`
	Exchange      string   `json:"exchange,omitempty"`
	MarketState   string   `json:"market_state,omitempty"`
	Currency      Currency `json:"currency,omitempty"`
	Price         *Money   `json:"price,omitempty"`
	PreviousClose *Money   `json:"previous_close,omitempty"`
	Open          *Money   `json:"open,omitempty"`
	DayHigh       *Money   `json:"day_high,omitempty"`
	DayLow        *Money   `json:"day_low,omitempty"`
	DayVolume     *uint64  `json:"day_volume,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	MarketTime    int64    `json:"market_time,omitempty"`
}

// Name returns the most descriptive available name, falling back to the
// symbol itself.
func (q Quote) Name() string {
	if q.LongName != "" {
		return q.LongName
	}
	if q.ShortName != "" {
		return q.ShortName
	}
	return q.Symbol
}

// QuoteUpdate is a single observation emitted by the stream engine. Ts is
// the receive time in Unix seconds UTC for both the polling and the
// WebSocket path.
type QuoteUpdate struct {
	Symbol        string   `json:"symbol"`
	LastPrice     *float64 `json:"last_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Currency      Currency `json:"currency,omitempty"`
	Ts            int64    `json:"ts"`
}

// SearchResult is a single hit from the v1 search endpoint.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	QuoteType string `json:"quote_type,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// NewsItem is a normalized news article from either the ncp endpoint or the
// per-symbol RSS feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher,omitempty"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Summary     string    `json:"summary,omitempty"`
}
