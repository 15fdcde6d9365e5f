package history

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

// defaultConcurrency bounds the per-symbol fan-out when the caller does not
// choose a limit.
const defaultConcurrency = 8

// Provider retrieves one symbol's history. Download is written against it
// so tests can substitute a canned source.
type Provider interface {
	History(ctx context.Context, symbol string, params models.HistoryParams) (*models.HistoryResponse, error)
}

type clientProvider struct {
	c    *client.Client
	opts client.CallOpts
}

func (p clientProvider) History(ctx context.Context, symbol string, params models.HistoryParams) (*models.HistoryResponse, error) {
	return Fetch(ctx, p.c, symbol, params, p.opts)
}

// NewProvider adapts a Client into a Provider with fixed call options.
func NewProvider(c *client.Client, opts client.CallOpts) Provider {
	return clientProvider{c: c, opts: opts}
}

// Download fetches many symbols concurrently and applies the post-processing
// passes. The first per-symbol error cancels the remaining fetches.
func Download(ctx context.Context, p Provider, symbols []string, params models.DownloadParams, concurrency int) (*models.DownloadResult, error) {
	if len(symbols) == 0 {
		return nil, &client.ErrInvalidParams{Detail: "no symbols to download"}
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	// Back-adjust replaces close with the raw series but keeps O/H/L
	// adjusted, so the fetch must adjust either way.
	hp := params.History
	hp.AutoAdjust = hp.AutoAdjust || params.BackAdjust

	result := &models.DownloadResult{
		Series:   make(map[string][]models.Candle, len(symbols)),
		Meta:     make(map[string]*models.HistoryMeta, len(symbols)),
		Actions:  make(map[string][]models.Action, len(symbols)),
		Adjusted: hp.AutoAdjust,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			resp, err := p.History(gctx, symbol, hp)
			if err != nil {
				return err
			}
			candles := postProcess(resp, params)

			mu.Lock()
			result.Series[symbol] = candles
			meta := resp.Meta
			result.Meta[symbol] = &meta
			result.Actions[symbol] = resp.Actions
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func postProcess(resp *models.HistoryResponse, params models.DownloadParams) []models.Candle {
	candles := resp.Candles

	if params.BackAdjust && len(resp.RawClose) == len(candles) {
		for i := range candles {
			candles[i].Close = resp.RawClose[i]
		}
	}
	if params.Repair {
		repairSeries(candles)
	}
	if params.Rounding {
		for i := range candles {
			candles[i].Open = round2(candles[i].Open)
			candles[i].High = round2(candles[i].High)
			candles[i].Low = round2(candles[i].Low)
			candles[i].Close = round2(candles[i].Close)
		}
	}
	return candles
}

// repairSeries rescales interior bars whose close sits roughly 100x above or
// below the midpoint of its neighbors, the signature of a unit mixup in the
// source data. Volumes are left alone.
func repairSeries(candles []models.Candle) {
	for i := 1; i < len(candles)-1; i++ {
		c := &candles[i]
		if !isFinite(c.Open) || !isFinite(c.High) || !isFinite(c.Low) || !isFinite(c.Close) {
			continue
		}
		prev, next := candles[i-1].Close, candles[i+1].Close
		if !isFinite(prev) || !isFinite(next) {
			continue
		}
		baseline := (prev + next) / 2
		if baseline <= 0 {
			continue
		}
		ratio := c.Close / baseline

		var scale float64
		switch {
		case ratio > 50 && ratio < 200:
			if ratio >= 80 && ratio < 125 {
				scale = 0.01
			} else {
				scale = 1 / ratio
			}
		case ratio > 0 && ratio < 0.02:
			if ratio >= 0.008 && ratio < 0.0125 {
				scale = 100
			} else {
				scale = 1 / ratio
			}
		default:
			continue
		}

		c.Open *= scale
		c.High *= scale
		c.Low *= scale
		c.Close *= scale
	}
}

func round2(f float64) float64 {
	if !isFinite(f) {
		return f
	}
	return math.Round(f*100) / 100
}
