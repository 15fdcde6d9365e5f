package history

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gramistella/yfin/pkg/models"
)

type splitEvent struct {
	ts    int64
	ratio float64
}

// assemble turns the raw chart arrays into an ordered candle series,
// applying auto-adjust and keepna per params.
func assemble(res chartResult, params models.HistoryParams) *models.HistoryResponse {
	actions, splits := extractEvents(res.Events)

	out := &models.HistoryResponse{
		Actions:  actions,
		Adjusted: params.AutoAdjust,
		Meta: models.HistoryMeta{
			Timezone:         res.Meta.Timezone,
			GmtOffsetSeconds: res.Meta.GmtOffset,
			Currency:         models.Currency(res.Meta.Currency),
		},
	}

	if len(res.Indicators.Quote) == 0 || len(res.Timestamp) == 0 {
		return out
	}
	q := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.Adjclose) > 0 {
		adj = res.Indicators.Adjclose[0].Adjclose
	}

	n := len(res.Timestamp)
	cumSplit := cumulativeSplitAfter(res.Timestamp, splits)

	for i := 0; i < n; i++ {
		open := deref(q.Open, i)
		high := deref(q.High, i)
		low := deref(q.Low, i)
		closeV := deref(q.Close, i)
		volume := derefVol(q.Volume, i)

		var adjClose float64 = math.NaN()
		if i < len(adj) && adj[i] != nil {
			adjClose = *adj[i]
		}

		// Adjustment factor: adjclose/close when Yahoo supplies adjclose,
		// otherwise derived from the splits alone.
		var priceFactor float64
		if !math.IsNaN(adjClose) && closeV != 0 && !math.IsNaN(closeV) {
			priceFactor = adjClose / closeV
		} else {
			priceFactor = 1 / math.Max(cumSplit[i], 1e-12)
		}

		rawClose := closeV
		if !isFinite(rawClose) {
			rawClose = math.NaN()
		}

		if params.AutoAdjust {
			open *= priceFactor
			high *= priceFactor
			low *= priceFactor
			closeV *= priceFactor
			if volume != nil {
				// Volumes expand across splits.
				scaled := float64(*volume) * cumSplit[i]
				if isFinite(scaled) {
					v := uint64(math.Round(scaled))
					volume = &v
				}
			}
		}

		finite := isFinite(open) && isFinite(high) && isFinite(low) && isFinite(closeV)
		if !finite && !params.KeepNA {
			continue
		}
		out.Candles = append(out.Candles, models.Candle{
			Ts:     res.Timestamp[i],
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeV,
			Volume: volume,
		})
		out.RawClose = append(out.RawClose, rawClose)
	}
	return out
}

// extractEvents flattens the dividend/split/capitalGain maps into a sorted
// action list plus the split series used for factor computation. The map key
// is the event timestamp when parseable; the inner date is the fallback.
func extractEvents(events *chartEvents) ([]models.Action, []splitEvent) {
	if events == nil {
		return nil, nil
	}

	var actions []models.Action
	var splits []splitEvent

	for key, ev := range events.Dividends {
		actions = append(actions, models.Action{
			Kind:   models.ActionDividend,
			Ts:     eventTs(key, ev.Date),
			Amount: ev.Amount,
		})
	}
	for key, ev := range events.CapitalGains {
		actions = append(actions, models.Action{
			Kind:   models.ActionCapitalGain,
			Ts:     eventTs(key, ev.Date),
			Amount: ev.Amount,
		})
	}
	for key, ev := range events.Splits {
		ts := eventTs(key, ev.Date)
		num, den := ev.Numerator, ev.Denominator
		if num == 0 && den == 0 {
			num, den = parseSplitRatio(ev.SplitRatio)
		}
		actions = append(actions, models.Action{
			Kind:        models.ActionSplit,
			Ts:          ts,
			Numerator:   num,
			Denominator: den,
		})
		ratio := 1.0
		if den != 0 {
			ratio = num / den
		}
		splits = append(splits, splitEvent{ts: ts, ratio: ratio})
	}

	sort.Slice(actions, func(i, j int) bool { return actions[i].Ts < actions[j].Ts })
	sort.Slice(splits, func(i, j int) bool { return splits[i].ts < splits[j].ts })
	return actions, splits
}

func eventTs(key string, date int64) int64 {
	if ts, err := strconv.ParseInt(key, 10, 64); err == nil {
		return ts
	}
	return date
}

// parseSplitRatio reads the "n/d" form some responses use instead of the
// numerator/denominator pair. Both default to 1 when unparseable.
func parseSplitRatio(s string) (num, den float64) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 1, 1
	}
	n, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	d, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 1, 1
	}
	return n, d
}

// cumulativeSplitAfter computes, per bar, the product of all split ratios
// dated strictly after that bar. Iterating right-to-left means each split is
// multiplied in exactly once.
func cumulativeSplitAfter(ts []int64, splits []splitEvent) []float64 {
	out := make([]float64, len(ts))
	factor := 1.0
	next := len(splits) - 1
	for i := len(ts) - 1; i >= 0; i-- {
		for next >= 0 && splits[next].ts > ts[i] {
			factor *= splits[next].ratio
			next--
		}
		out[i] = factor
	}
	return out
}

func deref(arr []*float64, i int) float64 {
	if i < len(arr) && arr[i] != nil {
		return *arr[i]
	}
	return math.NaN()
}

func derefVol(arr []*uint64, i int) *uint64 {
	if i < len(arr) && arr[i] != nil {
		v := *arr[i]
		return &v
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
