package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gramistella/yfin/pkg/client"
)

// ClientOptions translates a loaded Config into client construction
// options. Invalid values (bad proxy URL, unknown retry strategy) are
// reported rather than silently ignored.
func (c *Config) ClientOptions() ([]client.Option, error) {
	var opts []client.Option

	if c.Client.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.Client.UserAgent))
	}
	if c.Client.TimeoutSec > 0 {
		opts = append(opts, client.WithTimeout(c.Timeout()))
	}
	if c.Client.ConnectTimeoutSec > 0 {
		opts = append(opts, client.WithConnectTimeout(time.Duration(c.Client.ConnectTimeoutSec)*time.Second))
	}
	if c.Client.Proxy != "" {
		u, err := url.Parse(c.Client.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", c.Client.Proxy, err)
		}
		opts = append(opts, client.WithProxy(u))
	}
	if c.Client.RateLimitRPS > 0 {
		burst := c.Client.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, client.WithRateLimit(c.Client.RateLimitRPS, burst))
	}
	if c.Cache.Enabled {
		opts = append(opts, client.WithCacheTTL(c.CacheTTL()))
	}

	rc, err := c.retryConfig()
	if err != nil {
		return nil, err
	}
	opts = append(opts, client.WithRetry(rc))
	return opts, nil
}

func (c *Config) retryConfig() (client.RetryConfig, error) {
	if !c.Retry.Enabled {
		return client.RetryConfig{}, nil
	}
	rc := client.DefaultRetryConfig()
	if c.Retry.MaxRetries > 0 {
		rc.MaxRetries = c.Retry.MaxRetries
	}
	base := time.Duration(c.Retry.BaseMs) * time.Millisecond
	switch c.Retry.Strategy {
	case "", "exponential":
		rc.Backoff = client.ExponentialBackoff{
			Base:   base,
			Factor: c.Retry.Factor,
			Max:    time.Duration(c.Retry.MaxMs) * time.Millisecond,
			Jitter: c.Retry.Jitter,
		}
	case "fixed":
		rc.Backoff = client.FixedBackoff{D: base}
	default:
		return client.RetryConfig{}, fmt.Errorf("unknown retry strategy %q", c.Retry.Strategy)
	}
	return rc, nil
}
