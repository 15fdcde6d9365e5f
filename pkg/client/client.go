package client

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gramistella/yfin/internal/endpoints"
	"github.com/gramistella/yfin/pkg/models"
)

// Endpoints holds every URL the client talks to. All fields default to the
// live Yahoo services; tests point them at local servers.
type Endpoints struct {
	Chart          string
	QuoteSummary   string
	Quote          string
	Options        string
	Search         string
	News           string
	NewsRSS        string
	Timeseries     string
	Cookie         string
	Crumb          string
	Stream         string
	QuotePage      string
	InsiderSuggest string
}

// DefaultEndpoints returns the production Yahoo endpoint set.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Chart:          endpoints.Chart,
		QuoteSummary:   endpoints.QuoteSummary,
		Quote:          endpoints.Quote,
		Options:        endpoints.Options,
		Search:         endpoints.Search,
		News:           endpoints.News,
		NewsRSS:        endpoints.NewsRSS,
		Timeseries:     endpoints.Timeseries,
		Cookie:         endpoints.Cookie,
		Crumb:          endpoints.Crumb,
		Stream:         endpoints.Stream,
		QuotePage:      endpoints.QuotePage,
		InsiderSuggest: endpoints.InsiderSuggest,
	}
}

// Client is the shared transport for every Yahoo adapter: one HTTP client
// with a cookie jar, a credential store, an optional response cache, the
// retry engine, and an optional request rate limiter. A Client is safe for
// concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	urls      Endpoints
	retry     RetryConfig
	cache     *responseCache
	creds     credentials
	limiter   *rate.Limiter
	log       zerolog.Logger

	curMu sync.RWMutex
	cur   map[string]models.Currency
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithUserAgent overrides the User-Agent sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithConnectTimeout bounds the dial phase separately from the overall
// request timeout, so a dead host fails fast while large responses may
// still stream for the full request window.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) {
		t, ok := c.http.Transport.(*http.Transport)
		if !ok {
			t = http.DefaultTransport.(*http.Transport).Clone()
		}
		t.DialContext = (&net.Dialer{Timeout: d}).DialContext
		c.http.Transport = t
	}
}

// WithRetry replaces the default retry policy.
func WithRetry(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithCacheTTL enables the response cache with the given default TTL.
// Without this option the client never caches.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newResponseCache(ttl) }
}

// WithHTTPClient swaps the underlying HTTP client. A cookie jar is attached
// if the client has none, since the crumb request must inherit the session
// cookie.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithProxy routes all requests through the given proxy URL.
func WithProxy(proxy *url.URL) Option {
	return func(c *Client) {
		t, ok := c.http.Transport.(*http.Transport)
		if !ok {
			t = http.DefaultTransport.(*http.Transport).Clone()
		}
		t.Proxy = http.ProxyURL(proxy)
		c.http.Transport = t
	}
}

// WithEndpoints overrides the endpoint set, typically for tests.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.urls = e }
}

// WithRateLimit caps outbound requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithPreauthCredentials seeds the credential store, skipping the refresh
// protocol entirely for callers that already hold a valid pair.
func WithPreauthCredentials(cookie, crumb string) Option {
	return func(c *Client) {
		c.creds.cookie = cookie
		c.creds.crumb = crumb
	}
}

// WithLogger replaces the default logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client. The zero configuration talks to live Yahoo with the
// default retry policy and no cache.
func New(opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		http: &http.Client{
			Jar:       jar,
			Timeout:   30 * time.Second,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		userAgent: endpoints.UserAgent,
		urls:      DefaultEndpoints(),
		retry:     DefaultRetryConfig(),
		log:       newLogger(),
		cur:       make(map[string]models.Currency),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.http.Jar = jar
	}
	return c
}

// URLs exposes the endpoint set so adapters can build request URLs.
func (c *Client) URLs() Endpoints { return c.urls }

// UserAgent returns the User-Agent sent on requests and on the WebSocket
// handshake.
func (c *Client) UserAgent() string { return c.userAgent }

// Logger returns the client's logger for adapters to derive from.
func (c *Client) Logger() zerolog.Logger { return c.log }

// do sends a single request: User-Agent injection, optional rate limiting,
// nothing else. Retries live in doWithRetry.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return c.http.Do(req)
}

// CachedCurrency returns the memoized trading currency for a symbol.
func (c *Client) CachedCurrency(symbol string) (models.Currency, bool) {
	c.curMu.RLock()
	cur, ok := c.cur[symbol]
	c.curMu.RUnlock()
	return cur, ok
}

// StoreCurrency memoizes a symbol's trading currency for the client's
// lifetime. Currencies do not change intraday, so there is no expiry.
func (c *Client) StoreCurrency(symbol string, cur models.Currency) {
	c.curMu.Lock()
	c.cur[symbol] = cur
	c.curMu.Unlock()
}
