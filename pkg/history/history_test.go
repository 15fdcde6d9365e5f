package history

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

func testClient(t *testing.T, handler http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e := client.DefaultEndpoints()
	e.Chart = srv.URL + "/v8/finance/chart"
	return client.New(client.WithEndpoints(e))
}

// splitSeriesBody is the canonical adjustment case: a 2:1 split between the
// first and second bar, a dividend on the last.
const splitSeriesBody = `{"chart":{"result":[{
  "meta":{"currency":"USD","exchangeTimezoneName":"America/New_York","gmtoffset":-14400},
  "timestamp":[1000,2000,3000],
  "indicators":{
    "quote":[{"open":[100,100,100],"high":[101,101,101],"low":[99,99,99],"close":[100,100,100],"volume":[10,10,10]}],
    "adjclose":[{"adjclose":[50,100,99]}]
  },
  "events":{
    "splits":{"2000":{"date":2000,"numerator":2,"denominator":1}},
    "dividends":{"3000":{"date":3000,"amount":1.0}}
  }
}]}}`

func chartHandler(t *testing.T, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})
}

func TestAutoAdjustWithSplit(t *testing.T) {
	c := testClient(t, chartHandler(t, splitSeriesBody))
	params := models.HistoryParams{Range: models.Range1Y, Interval: models.Interval1D, IncludeActions: true, AutoAdjust: true}

	resp, err := Fetch(context.Background(), c, "AAPL", params, client.CallOpts{})
	require.NoError(t, err)
	require.Len(t, resp.Candles, 3)

	b0 := resp.Candles[0]
	assert.InDelta(t, 50.0, b0.Open, 1e-9)
	assert.InDelta(t, 50.5, b0.High, 1e-9)
	assert.InDelta(t, 49.5, b0.Low, 1e-9)
	assert.InDelta(t, 50.0, b0.Close, 1e-9)
	require.NotNil(t, b0.Volume)
	assert.EqualValues(t, 20, *b0.Volume) // volume expands across the split

	assert.InDelta(t, 100.0, resp.Candles[1].Close, 1e-9)
	assert.InDelta(t, 99.0, resp.Candles[2].Close, 1e-9)

	require.Len(t, resp.Actions, 2)
	assert.Equal(t, models.ActionSplit, resp.Actions[0].Kind)
	assert.EqualValues(t, 2000, resp.Actions[0].Ts)
	assert.Equal(t, 2.0, resp.Actions[0].Numerator)
	assert.Equal(t, models.ActionDividend, resp.Actions[1].Kind)
	assert.Equal(t, 1.0, resp.Actions[1].Amount)

	assert.True(t, resp.Adjusted)
	assert.Equal(t, "America/New_York", resp.Meta.Timezone)
	assert.EqualValues(t, "USD", resp.Meta.Currency)

	// Ordering invariants hold.
	assert.True(t, sort.SliceIsSorted(resp.Candles, func(i, j int) bool {
		return resp.Candles[i].Ts < resp.Candles[j].Ts
	}))
	assert.True(t, sort.SliceIsSorted(resp.Actions, func(i, j int) bool {
		return resp.Actions[i].Ts < resp.Actions[j].Ts
	}))
}

func TestRawCloseSurvivesAdjustment(t *testing.T) {
	c := testClient(t, chartHandler(t, splitSeriesBody))
	params := models.HistoryParams{Range: models.Range1Y, AutoAdjust: true}

	resp, err := Fetch(context.Background(), c, "AAPL", params, client.CallOpts{})
	require.NoError(t, err)
	require.Len(t, resp.RawClose, 3)
	assert.Equal(t, []float64{100, 100, 100}, resp.RawClose)
}

func TestInvalidDatesFailsWithoutNetwork(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	params := models.HistoryParams{Period: &models.Period{Start: 2000, End: 1000}}

	_, err := Fetch(context.Background(), c, "AAPL", params, client.CallOpts{})
	var id *client.ErrInvalidDates
	require.ErrorAs(t, err, &id)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPeriodParamsOnWire(t *testing.T) {
	var gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[]}}]}}`)
	}))
	params := models.HistoryParams{
		Period:         &models.Period{Start: 1000, End: 2000},
		Interval:       models.Interval1h,
		IncludeActions: true,
	}

	_, err := Fetch(context.Background(), c, "MSFT", params, client.CallOpts{})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "period1=1000")
	assert.Contains(t, gotQuery, "period2=2000")
	assert.Contains(t, gotQuery, "interval=1h")
	assert.Contains(t, gotQuery, "events=")
	assert.NotContains(t, gotQuery, "range=")
}

func TestKeepNAPreservesGaps(t *testing.T) {
	body := `{"chart":{"result":[{
	  "meta":{"currency":"USD"},
	  "timestamp":[1000,2000,3000],
	  "indicators":{"quote":[{
	    "open":[100.499,null,99.996],"high":[100.499,null,99.996],
	    "low":[100.499,null,99.996],"close":[100.499,null,99.996],
	    "volume":[10,null,10]}]}
	}]}}`
	c := testClient(t, chartHandler(t, body))

	// Without keepna the null bar is dropped.
	resp, err := Fetch(context.Background(), c, "X", models.HistoryParams{Range: models.Range1Y}, client.CallOpts{})
	require.NoError(t, err)
	assert.Len(t, resp.Candles, 2)

	// With keepna it survives as NaN.
	resp, err = Fetch(context.Background(), c, "X", models.HistoryParams{Range: models.Range1Y, KeepNA: true}, client.CallOpts{CacheMode: client.CacheBypass})
	require.NoError(t, err)
	require.Len(t, resp.Candles, 3)
	assert.True(t, math.IsNaN(resp.Candles[1].Close))
}

func TestMissingChartResult(t *testing.T) {
	c := testClient(t, chartHandler(t, `{"chart":{"result":[]}}`))
	_, err := Fetch(context.Background(), c, "NOPE", models.HistoryParams{Range: models.Range1Y}, client.CallOpts{})
	var md *client.ErrMissingData
	assert.ErrorAs(t, err, &md)
}

func TestSplitRatioStringForm(t *testing.T) {
	events := &chartEvents{
		Splits: map[string]chartEvent{"5000": {Date: 5000, SplitRatio: "3/1"}},
	}
	actions, splits := extractEvents(events)
	require.Len(t, actions, 1)
	assert.Equal(t, 3.0, actions[0].Numerator)
	assert.Equal(t, 1.0, actions[0].Denominator)
	require.Len(t, splits, 1)
	assert.Equal(t, 3.0, splits[0].ratio)
}

func TestSplitZeroDenominatorIsNeutral(t *testing.T) {
	events := &chartEvents{
		Splits: map[string]chartEvent{"5000": {Date: 5000, Numerator: 2, Denominator: 0}},
	}
	_, splits := extractEvents(events)
	require.Len(t, splits, 1)
	assert.Equal(t, 1.0, splits[0].ratio)
}

func TestCumulativeSplitAfter(t *testing.T) {
	ts := []int64{1000, 2000, 3000, 4000}
	splits := []splitEvent{{ts: 2500, ratio: 2}, {ts: 3500, ratio: 3}}
	got := cumulativeSplitAfter(ts, splits)
	assert.Equal(t, []float64{6, 6, 3, 1}, got)
}

// ── Download fan-out ──

type fakeProvider struct {
	calls     int32
	responses map[string]*models.HistoryResponse
	err       error
}

func (f *fakeProvider) History(ctx context.Context, symbol string, params models.HistoryParams) (*models.HistoryResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.responses[symbol]
	if !ok {
		return nil, &client.ErrMissingData{Symbol: symbol, What: "history"}
	}
	return resp, nil
}

func series(closes ...float64) *models.HistoryResponse {
	resp := &models.HistoryResponse{}
	for i, c := range closes {
		resp.Candles = append(resp.Candles, models.Candle{
			Ts: int64(1000 * (i + 1)), Open: c, High: c, Low: c, Close: c,
		})
		resp.RawClose = append(resp.RawClose, c)
	}
	return resp
}

func TestDownloadFanOut(t *testing.T) {
	p := &fakeProvider{responses: map[string]*models.HistoryResponse{
		"AAPL": series(10, 11, 12),
		"MSFT": series(20, 21),
	}}

	res, err := Download(context.Background(), p, []string{"AAPL", "MSFT"}, models.DownloadParams{}, 4)
	require.NoError(t, err)
	assert.Len(t, res.Series["AAPL"], 3)
	assert.Len(t, res.Series["MSFT"], 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.calls))
}

func TestDownloadEmptySymbols(t *testing.T) {
	_, err := Download(context.Background(), &fakeProvider{}, nil, models.DownloadParams{}, 4)
	var ip *client.ErrInvalidParams
	assert.ErrorAs(t, err, &ip)
}

func TestDownloadFailFast(t *testing.T) {
	p := &fakeProvider{err: &client.ErrRateLimited{URL: "u"}}
	_, err := Download(context.Background(), p, []string{"A", "B"}, models.DownloadParams{}, 2)
	var rl *client.ErrRateLimited
	require.ErrorAs(t, err, &rl)
}

func TestDownloadBackAdjust(t *testing.T) {
	// Adjusted close 50, raw close 100: back-adjust restores the raw close
	// while O/H/L stay adjusted.
	resp := &models.HistoryResponse{
		Candles:  []models.Candle{{Ts: 1000, Open: 50, High: 50.5, Low: 49.5, Close: 50}},
		RawClose: []float64{100},
		Adjusted: true,
	}
	p := &fakeProvider{responses: map[string]*models.HistoryResponse{"AAPL": resp}}

	res, err := Download(context.Background(), p, []string{"AAPL"}, models.DownloadParams{BackAdjust: true}, 1)
	require.NoError(t, err)
	bar := res.Series["AAPL"][0]
	assert.Equal(t, 100.0, bar.Close)
	assert.Equal(t, 50.0, bar.Open)
	assert.True(t, res.Adjusted)
}

func TestDownloadRepair100xSpike(t *testing.T) {
	resp := &models.HistoryResponse{
		Candles: []models.Candle{
			{Ts: 1000, Open: 10, High: 11, Low: 9, Close: 10.0},
			{Ts: 2000, Open: 1000, High: 1100, Low: 900, Close: 1000.0},
			{Ts: 3000, Open: 10.5, High: 11, Low: 10, Close: 10.5},
		},
	}
	p := &fakeProvider{responses: map[string]*models.HistoryResponse{"X": resp}}

	res, err := Download(context.Background(), p, []string{"X"}, models.DownloadParams{Repair: true}, 1)
	require.NoError(t, err)
	mid := res.Series["X"][1]
	assert.InDelta(t, 10.0, mid.Open, 0.01)
	assert.InDelta(t, 11.0, mid.High, 0.01)
	assert.InDelta(t, 9.0, mid.Low, 0.01)
	assert.InDelta(t, 10.0, mid.Close, 0.01)
}

func TestDownloadRounding(t *testing.T) {
	resp := &models.HistoryResponse{
		Candles: []models.Candle{
			{Ts: 1000, Open: 100.499, High: 100.499, Low: 100.499, Close: 100.499},
			{Ts: 2000, Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: math.NaN()},
			{Ts: 3000, Open: 99.996, High: 99.996, Low: 99.996, Close: 99.996},
		},
	}
	p := &fakeProvider{responses: map[string]*models.HistoryResponse{"X": resp}}

	res, err := Download(context.Background(), p, []string{"X"}, models.DownloadParams{Rounding: true}, 1)
	require.NoError(t, err)
	bars := res.Series["X"]
	require.Len(t, bars, 3)
	assert.Equal(t, 100.50, bars[0].Close)
	assert.True(t, math.IsNaN(bars[1].Close))
	assert.Equal(t, 100.00, bars[2].Close)
}

func TestDownloadOverEndpoint(t *testing.T) {
	c := testClient(t, chartHandler(t, splitSeriesBody))
	p := NewProvider(c, client.CallOpts{})

	res, err := Download(context.Background(), p, []string{"AAPL"}, models.DownloadParams{
		History: models.HistoryParams{Range: models.Range1Y, AutoAdjust: true, IncludeActions: true},
	}, 0)
	require.NoError(t, err)
	require.Len(t, res.Series["AAPL"], 3)
	assert.Len(t, res.Actions["AAPL"], 2)
	require.NotNil(t, res.Meta["AAPL"])
	assert.EqualValues(t, "USD", res.Meta["AAPL"].Currency)
}
