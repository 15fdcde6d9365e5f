// Package quote fetches point-in-time quote snapshots from the batch v7
// endpoint. Calls go out unauthenticated first; on 401/403 the client
// acquires a crumb and the call is repeated once with it.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

// maxBatch is the largest symbols= list the v7 endpoint accepts per call.
const maxBatch = 100

// v7Quote mirrors the fields we read from one quoteResponse result entry.
type v7Quote struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	QuoteType                  string   `json:"quoteType"`
	FullExchangeName           string   `json:"fullExchangeName"`
	MarketState                string   `json:"marketState"`
	Currency                   string   `json:"currency"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume        *uint64  `json:"regularMarketVolume"`
	MarketCap                  *float64 `json:"marketCap"`
	RegularMarketTime          int64    `json:"regularMarketTime"`
}

type v7Envelope struct {
	QuoteResponse struct {
		Result []v7Quote `json:"result"`
	} `json:"quoteResponse"`
}

// Fetch returns snapshots for the given symbols, preserving request order
// where Yahoo echoes it. Requests are chunked at 100 symbols.
func Fetch(ctx context.Context, c *client.Client, symbols []string, opts client.CallOpts) ([]models.Quote, error) {
	if len(symbols) == 0 {
		return nil, &client.ErrInvalidParams{Detail: "no symbols"}
	}

	var out []models.Quote
	for start := 0; start < len(symbols); start += maxBatch {
		end := start + maxBatch
		if end > len(symbols) {
			end = len(symbols)
		}
		batch, err := fetchBatch(ctx, c, symbols[start:end], opts)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// One fetches a single symbol's snapshot.
func One(ctx context.Context, c *client.Client, symbol string, opts client.CallOpts) (*models.Quote, error) {
	quotes, err := Fetch(ctx, c, []string{symbol}, opts)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, &client.ErrMissingData{Symbol: symbol, What: "quote"}
	}
	return &quotes[0], nil
}

func fetchBatch(ctx context.Context, c *client.Client, symbols []string, opts client.CallOpts) ([]models.Quote, error) {
	base := fmt.Sprintf("%s?symbols=%s", c.URLs().Quote, url.QueryEscape(strings.Join(symbols, ",")))

	body, err := c.GetText(ctx, base, opts)
	if err != nil {
		var ua *client.ErrUnauthorized
		if !errors.As(err, &ua) {
			return nil, err
		}
		// Endpoint now wants a crumb; acquire one and repeat with it.
		if err := c.EnsureCredentials(ctx); err != nil {
			return nil, err
		}
		authed := base + "&crumb=" + url.QueryEscape(c.Crumb())
		body, err = c.GetText(ctx, authed, opts)
		if err != nil {
			return nil, err
		}
	}

	var env v7Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("quote v7: %w", err)
	}

	quotes := make([]models.Quote, 0, len(env.QuoteResponse.Result))
	for _, q := range env.QuoteResponse.Result {
		quotes = append(quotes, toModel(q, c))
	}
	return quotes, nil
}

func toModel(q v7Quote, c *client.Client) models.Quote {
	cur := models.Currency(q.Currency)
	if cur != "" {
		c.StoreCurrency(q.Symbol, cur)
	}
	m := models.Quote{
		Symbol:      q.Symbol,
		ShortName:   q.ShortName,
		LongName:    q.LongName,
		QuoteType:   q.QuoteType,
		Exchange:    q.FullExchangeName,
		MarketState: q.MarketState,
		Currency:    cur,
		DayVolume:   q.RegularMarketVolume,
		MarketCap:   q.MarketCap,
		MarketTime:  q.RegularMarketTime,
	}
	m.Price = money(q.RegularMarketPrice, cur)
	m.PreviousClose = money(q.RegularMarketPreviousClose, cur)
	m.Open = money(q.RegularMarketOpen, cur)
	m.DayHigh = money(q.RegularMarketDayHigh, cur)
	m.DayLow = money(q.RegularMarketDayLow, cur)
	return m
}

func money(v *float64, cur models.Currency) *models.Money {
	if v == nil {
		return nil
	}
	m := models.NewMoney(*v, cur)
	return &m
}
