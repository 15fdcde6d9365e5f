// Package options fetches option chains from the v7 options endpoint.
package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
	"github.com/gramistella/yfin/pkg/quote"
)

type wireContract struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            float64  `json:"strike"`
	LastPrice         *float64 `json:"lastPrice"`
	Bid               *float64 `json:"bid"`
	Ask               *float64 `json:"ask"`
	Volume            *uint64  `json:"volume"`
	OpenInterest      *uint64  `json:"openInterest"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
	InTheMoney        bool     `json:"inTheMoney"`
	LastTradeDate     *int64   `json:"lastTradeDate"`
}

type chainEnvelope struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				Currency string `json:"currency"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64          `json:"expirationDate"`
				Calls          []wireContract `json:"calls"`
				Puts           []wireContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// Chain fetches the option chain for a symbol. expiration of 0 means the
// nearest expiry (the endpoint's default). Auth follows the v7 pattern:
// unauthenticated first, crumb on 401/403.
func Chain(ctx context.Context, c *client.Client, symbol string, expiration int64, opts client.CallOpts) (*models.OptionChain, error) {
	if symbol == "" {
		return nil, &client.ErrInvalidParams{Detail: "empty symbol"}
	}

	base := fmt.Sprintf("%s/%s", c.URLs().Options, url.PathEscape(symbol))
	if expiration > 0 {
		base += "?date=" + strconv.FormatInt(expiration, 10)
	}

	body, err := c.GetText(ctx, base, opts)
	if err != nil {
		var ua *client.ErrUnauthorized
		if !errors.As(err, &ua) {
			return nil, err
		}
		if err := c.EnsureCredentials(ctx); err != nil {
			return nil, err
		}
		sep := "?"
		if expiration > 0 {
			sep = "&"
		}
		body, err = c.GetText(ctx, base+sep+"crumb="+url.QueryEscape(c.Crumb()), opts)
		if err != nil {
			return nil, err
		}
	}

	var env chainEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("option chain %s: %w", symbol, err)
	}
	if len(env.OptionChain.Result) == 0 {
		return nil, &client.ErrMissingData{Symbol: symbol, What: "optionChain result"}
	}
	res := env.OptionChain.Result[0]

	cur := models.Currency(res.Quote.Currency)
	if cur == "" {
		// Chain payload omits the currency sometimes; the quote snapshot is
		// the authority then.
		q, err := quote.One(ctx, c, symbol, opts)
		if err != nil {
			return nil, err
		}
		if q.Price != nil {
			cur = q.Price.Currency
		}
		if cur == "" {
			return nil, &client.ErrMissingData{Symbol: symbol, What: "option chain currency"}
		}
	}

	chain := &models.OptionChain{
		Symbol:          symbol,
		ExpirationDates: res.ExpirationDates,
		Currency:        cur,
	}
	if len(res.Options) > 0 {
		leg := res.Options[0]
		exp := leg.ExpirationDate
		if exp == 0 {
			exp = expiration
		}
		chain.Expiration = exp
		chain.Calls = mapContracts(leg.Calls, exp, cur)
		chain.Puts = mapContracts(leg.Puts, exp, cur)
	}
	return chain, nil
}

func mapContracts(in []wireContract, expiration int64, cur models.Currency) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(in))
	for _, w := range in {
		oc := models.OptionContract{
			ContractSymbol:    w.ContractSymbol,
			Strike:            models.NewMoney(w.Strike, cur),
			Volume:            w.Volume,
			OpenInterest:      w.OpenInterest,
			ImpliedVolatility: w.ImpliedVolatility,
			InTheMoney:        w.InTheMoney,
			ExpirationDate:    expiration,
			ExpirationAt:      time.Unix(expiration, 0).UTC(),
		}
		oc.LastPrice = money(w.LastPrice, cur)
		oc.Bid = money(w.Bid, cur)
		oc.Ask = money(w.Ask, cur)
		if w.LastTradeDate != nil {
			t := time.Unix(*w.LastTradeDate, 0).UTC()
			oc.LastTradeAt = &t
		}
		out = append(out, oc)
	}
	return out
}

func money(v *float64, cur models.Currency) *models.Money {
	if v == nil {
		return nil
	}
	m := models.NewMoney(*v, cur)
	return &m
}
