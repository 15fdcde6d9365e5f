package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// QuoteSummary fetches the requested v10 modules for a symbol and returns
// the raw payload per module. Adapters decode the modules they own.
func (c *Client) QuoteSummary(ctx context.Context, symbol string, modules []string, opts CallOpts) (map[string]json.RawMessage, error) {
	if symbol == "" {
		return nil, &ErrInvalidParams{Detail: "empty symbol"}
	}
	if len(modules) == 0 {
		return nil, &ErrInvalidParams{Detail: "no quoteSummary modules requested"}
	}

	u := fmt.Sprintf("%s/%s?modules=%s&corsDomain=finance.yahoo.com&formatted=false",
		c.urls.QuoteSummary, url.PathEscape(symbol), url.QueryEscape(strings.Join(modules, ",")))

	var env struct {
		QuoteSummary struct {
			Result []map[string]json.RawMessage `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := c.GetJSONAuth(ctx, u, &env, opts); err != nil {
		return nil, fmt.Errorf("quoteSummary %s: %w", symbol, err)
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, &ErrMissingData{Symbol: symbol, What: "quoteSummary result"}
	}
	return env.QuoteSummary.Result[0], nil
}
