// Package ticker is the per-symbol facade over the adapters: one handle
// that exposes quotes, history, options, profiles, news, and the composite
// info record for a single symbol.
package ticker

import (
	"context"
	"time"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/fundamentals"
	"github.com/gramistella/yfin/pkg/history"
	"github.com/gramistella/yfin/pkg/isin"
	"github.com/gramistella/yfin/pkg/models"
	"github.com/gramistella/yfin/pkg/options"
	"github.com/gramistella/yfin/pkg/profile"
	"github.com/gramistella/yfin/pkg/quote"
)

// Ticker binds a symbol to a client. The zero CallOpts (cache in Use mode,
// client defaults) apply to every call; use WithOpts for per-ticker tuning.
type Ticker struct {
	c      *client.Client
	symbol string
	opts   client.CallOpts
}

// New returns a handle for one symbol.
func New(c *client.Client, symbol string) *Ticker {
	return &Ticker{c: c, symbol: symbol}
}

// WithOpts returns a copy of the ticker using the given call options.
func (t *Ticker) WithOpts(opts client.CallOpts) *Ticker {
	return &Ticker{c: t.c, symbol: t.symbol, opts: opts}
}

// Symbol returns the symbol this ticker is bound to.
func (t *Ticker) Symbol() string { return t.symbol }

// Quote fetches the current snapshot.
func (t *Ticker) Quote(ctx context.Context) (*models.Quote, error) {
	return quote.One(ctx, t.c, t.symbol, t.opts)
}

// History fetches an assembled bar series.
func (t *Ticker) History(ctx context.Context, params models.HistoryParams) (*models.HistoryResponse, error) {
	return history.Fetch(ctx, t.c, t.symbol, params, t.opts)
}

// Actions fetches the corporate actions over a range without the bars.
func (t *Ticker) Actions(ctx context.Context, rng models.Range) ([]models.Action, error) {
	params := models.HistoryParams{Range: rng, Interval: models.Interval1D, IncludeActions: true}
	resp, err := history.Fetch(ctx, t.c, t.symbol, params, t.opts)
	if err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// Options fetches the option chain; expiration 0 means the nearest expiry.
func (t *Ticker) Options(ctx context.Context, expiration int64) (*models.OptionChain, error) {
	return options.Chain(ctx, t.c, t.symbol, expiration, t.opts)
}

// Profile loads the company or fund profile.
func (t *Ticker) Profile(ctx context.Context) (models.Profile, error) {
	return profile.Load(ctx, t.c, t.symbol, profile.APIThenScrape, t.opts)
}

// ISIN resolves the symbol's ISIN.
func (t *Ticker) ISIN(ctx context.Context) (string, error) {
	return isin.Resolve(ctx, t.c, t.symbol, t.opts)
}

// News fetches recent articles.
func (t *Ticker) News(ctx context.Context, count int) ([]models.NewsItem, error) {
	return quote.News(ctx, t.c, t.symbol, count, t.opts)
}

// Timeseries fetches fundamentals series for the symbol.
func (t *Ticker) Timeseries(ctx context.Context, types []string, start, end time.Time) ([]models.TimeseriesRow, error) {
	return fundamentals.Timeseries(ctx, t.c, t.symbol, types, start, end, t.opts)
}
