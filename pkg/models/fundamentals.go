package models

// TimeseriesPoint is one reported period of a fundamentals timeseries type.
type TimeseriesPoint struct {
	AsOf  string  `json:"as_of"` // YYYY-MM-DD period end
	Value float64 `json:"value"`
}

// TimeseriesRow is the ordered series for one requested type, denominated in
// the symbol's reporting currency.
type TimeseriesRow struct {
	Type     string            `json:"type"`
	Currency Currency          `json:"currency,omitempty"`
	Points   []TimeseriesPoint `json:"points"`
}
