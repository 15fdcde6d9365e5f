package quote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

type searchEnvelope struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
		Sector    string `json:"sector"`
		Industry  string `json:"industry"`
	} `json:"quotes"`
}

// Search queries the v1 search endpoint. Results with no symbol are
// dropped; everything else passes through in Yahoo's ranking order.
func Search(ctx context.Context, c *client.Client, query string, limit int, opts client.CallOpts) ([]models.SearchResult, error) {
	if query == "" {
		return nil, &client.ErrInvalidParams{Detail: "empty search query"}
	}
	if limit <= 0 {
		limit = 10
	}

	u := fmt.Sprintf("%s?q=%s&quotesCount=%d&newsCount=0", c.URLs().Search, url.QueryEscape(query), limit)

	var env searchEnvelope
	if err := c.GetJSON(ctx, u, &env, opts); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := make([]models.SearchResult, 0, len(env.Quotes))
	for _, q := range env.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		out = append(out, models.SearchResult{
			Symbol:    q.Symbol,
			Name:      name,
			Exchange:  q.Exchange,
			QuoteType: q.QuoteType,
			Sector:    q.Sector,
			Industry:  q.Industry,
		})
	}
	return out, nil
}
