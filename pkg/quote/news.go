package quote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

type ncpRequest struct {
	ServiceConfig struct {
		Count   int      `json:"count"`
		Symbols []string `json:"s"`
	} `json:"serviceConfig"`
}

type ncpEnvelope struct {
	Data struct {
		TickerStream struct {
			Stream []struct {
				Content struct {
					Title   string `json:"title"`
					PubDate string `json:"pubDate"`
					Summary string `json:"summary"`
					Provider struct {
						DisplayName string `json:"displayName"`
					} `json:"provider"`
					CanonicalURL struct {
						URL string `json:"url"`
					} `json:"canonicalUrl"`
				} `json:"content"`
			} `json:"stream"`
		} `json:"tickerStream"`
	} `json:"data"`
}

// News returns recent articles for a symbol. The ncp endpoint is tried
// first; when it errors or comes back empty the per-symbol RSS feed serves
// as fallback, so callers see one normalized list either way.
func News(ctx context.Context, c *client.Client, symbol string, count int, opts client.CallOpts) ([]models.NewsItem, error) {
	if symbol == "" {
		return nil, &client.ErrInvalidParams{Detail: "empty symbol"}
	}
	if count <= 0 {
		count = 10
	}

	items, err := newsNCP(ctx, c, symbol, count, opts)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err != nil {
		log := c.Logger()
		log.Debug().Err(err).Str("symbol", symbol).Msg("ncp news failed, falling back to rss")
	}
	return newsRSS(ctx, c, symbol, count, opts)
}

func newsNCP(ctx context.Context, c *client.Client, symbol string, count int, opts client.CallOpts) ([]models.NewsItem, error) {
	var req ncpRequest
	req.ServiceConfig.Count = count
	req.ServiceConfig.Symbols = []string{symbol}

	var env ncpEnvelope
	if err := c.PostJSON(ctx, c.URLs().News, &req, &env, opts); err != nil {
		return nil, fmt.Errorf("ncp news %s: %w", symbol, err)
	}

	items := make([]models.NewsItem, 0, len(env.Data.TickerStream.Stream))
	for _, entry := range env.Data.TickerStream.Stream {
		content := entry.Content
		if content.Title == "" {
			continue
		}
		item := models.NewsItem{
			Title:     content.Title,
			Publisher: content.Provider.DisplayName,
			Link:      content.CanonicalURL.URL,
			Summary:   content.Summary,
		}
		if t, err := time.Parse(time.RFC3339, content.PubDate); err == nil {
			item.PublishedAt = t.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}

func newsRSS(ctx context.Context, c *client.Client, symbol string, count int, opts client.CallOpts) ([]models.NewsItem, error) {
	u := fmt.Sprintf("%s?s=%s", c.URLs().NewsRSS, url.QueryEscape(symbol))
	body, err := c.GetText(ctx, u, opts)
	if err != nil {
		return nil, fmt.Errorf("rss news %s: %w", symbol, err)
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parsing rss feed for %s: %w", symbol, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if len(items) >= count {
			break
		}
		item := models.NewsItem{
			Title:     it.Title,
			Link:      it.Link,
			Summary:   it.Description,
			Publisher: feed.Title,
		}
		if it.PublishedParsed != nil {
			item.PublishedAt = it.PublishedParsed.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}
