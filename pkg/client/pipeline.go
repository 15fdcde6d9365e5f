package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gramistella/yfin/internal/fixtures"
)

// CallOpts tune one pipeline call. The zero value uses the cache in Use
// mode with the client's default TTL and the client's retry policy.
type CallOpts struct {
	CacheMode CacheMode
	CacheTTL  time.Duration // 0 = client default
	Retry     *RetryConfig  // nil = client default
}

func (c *Client) retryFor(opts CallOpts) RetryConfig {
	if opts.Retry != nil {
		return *opts.Retry
	}
	return c.retry
}

// fetchText is the uniform request path: cache-get, send with retry,
// classify status, cache-put. finalURL is the cache key, so two calls with
// identical query strings share an entry.
func (c *Client) fetchText(ctx context.Context, build func() (*http.Request, error), finalURL string, opts CallOpts) (string, error) {
	useCache := c.cache != nil && opts.CacheMode != CacheBypass
	if useCache && opts.CacheMode == CacheUse {
		if body, ok := c.cache.get(finalURL); ok {
			c.log.Debug().Str("url", finalURL).Msg("cache hit")
			return body, nil
		}
	}

	resp, err := c.doWithRetry(ctx, build, c.retryFor(opts))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(resp.StatusCode, finalURL)
	}

	if err := fixtures.RecordURL(finalURL, raw); err != nil {
		c.log.Debug().Err(err).Msg("fixture record failed")
	}

	body := string(raw)
	if useCache {
		c.cache.set(finalURL, body, opts.CacheTTL)
	}
	return body, nil
}

// GetText GETs a URL through the pipeline and returns the body.
func (c *Client) GetText(ctx context.Context, rawURL string, opts CallOpts) (string, error) {
	build := func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	}
	return c.fetchText(ctx, build, rawURL, opts)
}

// GetJSON GETs a URL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any, opts CallOpts) error {
	body, err := c.GetText(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

// PostJSON POSTs payload as JSON and decodes the response into v. POST
// responses are never cached.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, v any, opts CallOpts) error {
	enc, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(enc))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
	opts.CacheMode = CacheBypass
	body, err := c.fetchText(ctx, build, rawURL, opts)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

// yahooError is the error envelope Yahoo nests under its top-level response
// keys. Either wrapper may be present depending on the endpoint.
type yahooError struct {
	QuoteSummary *struct {
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
	Finance *struct {
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// envelopeError extracts a Yahoo-level error from a 2xx body, or nil.
func envelopeError(body string) *ErrAPI {
	var env yahooError
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil
	}
	if env.QuoteSummary != nil && env.QuoteSummary.Error != nil {
		e := env.QuoteSummary.Error
		return &ErrAPI{Code: e.Code, Description: e.Description}
	}
	if env.Finance != nil && env.Finance.Error != nil {
		e := env.Finance.Error
		return &ErrAPI{Code: e.Code, Description: e.Description}
	}
	return nil
}

func isInvalidCrumb(e *ErrAPI) bool {
	return e != nil && strings.Contains(strings.ToLower(e.Description), "invalid crumb")
}

// GetTextAuth GETs a URL with the crumb appended as a query parameter,
// acquiring credentials first if needed. When the body carries Yahoo's
// "Invalid Crumb" error the crumb is dropped and the whole call repeated
// once with fresh credentials.
func (c *Client) GetTextAuth(ctx context.Context, rawURL string, opts CallOpts) (string, error) {
	for attempt := 0; ; attempt++ {
		if err := c.EnsureCredentials(ctx); err != nil {
			return "", err
		}
		finalURL, err := appendQuery(rawURL, "crumb", c.Crumb())
		if err != nil {
			return "", err
		}
		body, err := c.GetText(ctx, finalURL, opts)
		if err != nil {
			return "", err
		}
		if apiErr := envelopeError(body); apiErr != nil {
			if isInvalidCrumb(apiErr) && attempt == 0 {
				c.log.Debug().Str("url", rawURL).Msg("invalid crumb, refreshing")
				c.ClearCrumb()
				c.InvalidateCache(finalURL)
				continue
			}
			return "", apiErr
		}
		return body, nil
	}
}

// GetJSONAuth is GetTextAuth plus a decode into v.
func (c *Client) GetJSONAuth(ctx context.Context, rawURL string, v any, opts CallOpts) error {
	body, err := c.GetTextAuth(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

// appendQuery adds one key=value pair to a raw URL, preserving existing
// parameters.
func appendQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
