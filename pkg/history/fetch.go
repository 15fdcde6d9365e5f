// Package history fetches and assembles OHLCV series from the v8 chart
// endpoint: raw arrays in, adjusted and ordered candles out, with the
// corporate actions that explain the adjustments.
package history

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

// chartEnvelope mirrors chart.result[0] of the v8 response. Bar arrays use
// pointer elements because Yahoo emits null for missing observations.
type chartEnvelope struct {
	Chart struct {
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency  string `json:"currency"`
		Timezone  string `json:"exchangeTimezoneName"`
		GmtOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*uint64  `json:"volume"`
		} `json:"quote"`
		Adjclose []struct {
			Adjclose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
	Events *chartEvents `json:"events"`
}

type chartEvents struct {
	Dividends    map[string]chartEvent `json:"dividends"`
	Splits       map[string]chartEvent `json:"splits"`
	CapitalGains map[string]chartEvent `json:"capitalGains"`
}

// chartEvent covers all three event shapes; unused fields stay zero.
type chartEvent struct {
	Date        int64   `json:"date"`
	Amount      float64 `json:"amount"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
	SplitRatio  string  `json:"splitRatio"`
}

// Fetch retrieves one symbol's chart data and assembles it into a
// HistoryResponse. An explicit period with start >= end fails before any
// network call.
func Fetch(ctx context.Context, c *client.Client, symbol string, params models.HistoryParams, opts client.CallOpts) (*models.HistoryResponse, error) {
	if symbol == "" {
		return nil, &client.ErrInvalidParams{Detail: "empty symbol"}
	}
	u, err := buildChartURL(c.URLs().Chart, symbol, params)
	if err != nil {
		return nil, err
	}

	var env chartEnvelope
	if err := c.GetJSON(ctx, u, &env, opts); err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	if len(env.Chart.Result) == 0 {
		return nil, &client.ErrMissingData{Symbol: symbol, What: "chart result"}
	}

	res := env.Chart.Result[0]
	cur := models.Currency(res.Meta.Currency)
	if cur != "" {
		c.StoreCurrency(symbol, cur)
	}
	return assemble(res, params), nil
}

func buildChartURL(base, symbol string, p models.HistoryParams) (string, error) {
	q := url.Values{}
	if p.Period != nil {
		if p.Period.Start >= p.Period.End {
			return "", &client.ErrInvalidDates{Start: p.Period.Start, End: p.Period.End}
		}
		q.Set("period1", strconv.FormatInt(p.Period.Start, 10))
		q.Set("period2", strconv.FormatInt(p.Period.End, 10))
	} else {
		rng := p.Range
		if rng == "" {
			rng = models.Range1Y
		}
		q.Set("range", string(rng))
	}

	iv := p.Interval
	if iv == "" {
		iv = models.Interval1D
	}
	q.Set("interval", string(iv))
	q.Set("includePrePost", strconv.FormatBool(p.IncludePrePost))
	if p.IncludeActions {
		q.Set("events", "div|split|capitalGains")
	}
	return fmt.Sprintf("%s/%s?%s", base, url.PathEscape(symbol), q.Encode()), nil
}
