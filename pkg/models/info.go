package models

import "time"

// PriceTarget summarizes the analyst price-target module.
type PriceTarget struct {
	Mean             *float64 `json:"mean,omitempty"`
	Median           *float64 `json:"median,omitempty"`
	High             *float64 `json:"high,omitempty"`
	Low              *float64 `json:"low,omitempty"`
	NumberOfAnalysts *int     `json:"number_of_analysts,omitempty"`
	Current          *float64 `json:"current,omitempty"`
}

// RecommendationSummary is the latest period of the recommendation trend.
type RecommendationSummary struct {
	Period     string `json:"period,omitempty"`
	StrongBuy  int    `json:"strong_buy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strong_sell"`
}

// EsgScores carries the headline sustainability scores.
type EsgScores struct {
	TotalEsg         *float64 `json:"total_esg,omitempty"`
	EnvironmentScore *float64 `json:"environment_score,omitempty"`
	SocialScore      *float64 `json:"social_score,omitempty"`
	GovernanceScore  *float64 `json:"governance_score,omitempty"`
}

// Info is the composite record assembled by the info aggregator: quote plus
// profile plus the recoverable analyst/ESG legs. Only the profile leg is
// required; the rest may be nil.
type Info struct {
	Symbol          string                 `json:"symbol"`
	Quote           *Quote                 `json:"quote,omitempty"`
	Profile         Profile                `json:"profile"`
	PriceTarget     *PriceTarget           `json:"price_target,omitempty"`
	Recommendations *RecommendationSummary `json:"recommendations,omitempty"`
	Esg             *EsgScores             `json:"esg,omitempty"`
	AsOf            time.Time              `json:"as_of"`
}
