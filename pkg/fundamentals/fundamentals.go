// Package fundamentals fetches reported financial series from the
// fundamentals-timeseries endpoint.
package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

type tsEnvelope struct {
	Timeseries struct {
		Result []json.RawMessage `json:"result"`
	} `json:"timeseries"`
}

type tsResultMeta struct {
	Meta struct {
		Type []string `json:"type"`
	} `json:"meta"`
}

type tsObservation struct {
	AsOfDate      string `json:"asOfDate"`
	CurrencyCode  string `json:"currencyCode"`
	ReportedValue struct {
		Raw float64 `json:"raw"`
	} `json:"reportedValue"`
}

// Timeseries fetches the named types (e.g. annualTotalRevenue) for a symbol
// over [start, end). The endpoint requires a crumb. Rows come back in the
// order requested where Yahoo returns them; points within a row are sorted
// by period end.
func Timeseries(ctx context.Context, c *client.Client, symbol string, types []string, start, end time.Time, opts client.CallOpts) ([]models.TimeseriesRow, error) {
	if symbol == "" {
		return nil, &client.ErrInvalidParams{Detail: "empty symbol"}
	}
	if len(types) == 0 {
		return nil, &client.ErrInvalidParams{Detail: "no timeseries types requested"}
	}
	if !start.Before(end) {
		return nil, &client.ErrInvalidDates{Start: start.Unix(), End: end.Unix()}
	}

	u := fmt.Sprintf("%s/%s?symbol=%s&type=%s&period1=%s&period2=%s",
		c.URLs().Timeseries,
		url.PathEscape(symbol),
		url.QueryEscape(symbol),
		url.QueryEscape(strings.Join(types, ",")),
		strconv.FormatInt(start.Unix(), 10),
		strconv.FormatInt(end.Unix(), 10))

	var env tsEnvelope
	if err := c.GetJSONAuth(ctx, u, &env, opts); err != nil {
		return nil, fmt.Errorf("timeseries %s: %w", symbol, err)
	}
	if len(env.Timeseries.Result) == 0 {
		return nil, &client.ErrMissingData{Symbol: symbol, What: "timeseries result"}
	}

	rows := make([]models.TimeseriesRow, 0, len(env.Timeseries.Result))
	for _, raw := range env.Timeseries.Result {
		var meta tsResultMeta
		if err := json.Unmarshal(raw, &meta); err != nil || len(meta.Meta.Type) == 0 {
			continue
		}
		typ := meta.Meta.Type[0]

		// The observations sit under a key named after the type itself.
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		obsRaw, ok := fields[typ]
		if !ok {
			continue
		}
		var obs []*tsObservation
		if err := json.Unmarshal(obsRaw, &obs); err != nil {
			continue
		}

		row := models.TimeseriesRow{Type: typ}
		for _, o := range obs {
			if o == nil {
				continue
			}
			if row.Currency == "" && o.CurrencyCode != "" {
				row.Currency = models.Currency(o.CurrencyCode)
			}
			row.Points = append(row.Points, models.TimeseriesPoint{
				AsOf:  o.AsOfDate,
				Value: o.ReportedValue.Raw,
			})
		}
		sort.Slice(row.Points, func(i, j int) bool { return row.Points[i].AsOf < row.Points[j].AsOf })
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &client.ErrMissingData{Symbol: symbol, What: "timeseries rows"}
	}
	return rows, nil
}
