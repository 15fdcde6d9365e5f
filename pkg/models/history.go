package models

// HistoryParams selects the window, resolution, and post-processing of a
// history request. Exactly one of Range or Period must be set; Period is a
// pair of Unix-second bounds with Start < End.
type HistoryParams struct {
	Range    Range
	Period   *Period
	Interval Interval

	IncludePrePost bool
	IncludeActions bool
	AutoAdjust     bool
	KeepNA         bool
}

// Period is a half-open [Start, End) epoch-second window.
type Period struct {
	Start int64
	End   int64
}

// DefaultHistoryParams mirrors the defaults of the chart facade: one year of
// daily, auto-adjusted bars with actions included.
func DefaultHistoryParams() HistoryParams {
	return HistoryParams{
		Range:          Range1Y,
		Interval:       Interval1D,
		IncludeActions: true,
		AutoAdjust:     true,
	}
}

// Candle is a single OHLCV bar. Ts is Unix seconds UTC. With KeepNA, gaps
// are preserved as NaN OHLC values; otherwise every field is finite.
type Candle struct {
	Ts     int64   `json:"ts"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume *uint64 `json:"volume,omitempty"`
}

// ActionKind discriminates corporate action variants.
type ActionKind string

const (
	ActionDividend    ActionKind = "dividend"
	ActionSplit       ActionKind = "split"
	ActionCapitalGain ActionKind = "capitalGain"
)

// Action is a corporate action attached to a history series. Amount carries
// the dividend amount or capital gain; Numerator/Denominator carry the split
// terms. Actions within a series are sorted ascending by Ts.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Ts          int64      `json:"ts"`
	Amount      float64    `json:"amount,omitempty"`
	Numerator   float64    `json:"numerator,omitempty"`
	Denominator float64    `json:"denominator,omitempty"`
}

// SplitRatio returns numerator/denominator for split actions, guarding
// against a zero denominator. Non-split actions report 1.
func (a Action) SplitRatio() float64 {
	if a.Kind != ActionSplit || a.Denominator == 0 {
		return 1
	}
	return a.Numerator / a.Denominator
}

// HistoryMeta carries series-level metadata from the chart response.
type HistoryMeta struct {
	Timezone         string   `json:"timezone,omitempty"`
	GmtOffsetSeconds int64    `json:"gmt_offset_seconds,omitempty"`
	Currency         Currency `json:"currency,omitempty"`
}

// HistoryResponse is an assembled history series. Candles are ordered by
// non-decreasing Ts. RawClose[i] is the unadjusted close for Candles[i] and
// feeds the back-adjust pass; it is populated whether or not AutoAdjust ran.
type HistoryResponse struct {
	Candles  []Candle      `json:"candles"`
	Actions  []Action      `json:"actions"`
	Adjusted bool          `json:"adjusted"`
	Meta     HistoryMeta   `json:"meta"`
	RawClose []float64     `json:"raw_close,omitempty"`
}

// DownloadParams drives the multi-symbol download fan-out.
type DownloadParams struct {
	History HistoryParams

	BackAdjust bool
	Repair     bool
	Rounding   bool
}

// DownloadResult aggregates per-symbol series. No ordering is guaranteed
// across symbols; within a symbol the history ordering holds.
type DownloadResult struct {
	Series   map[string][]Candle      `json:"series"`
	Meta     map[string]*HistoryMeta  `json:"meta"`
	Actions  map[string][]Action      `json:"actions"`
	Adjusted bool                     `json:"adjusted"`
}
