package client

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// Backoff yields the sleep before retry attempt n (0-based).
type Backoff interface {
	Delay(attempt int) time.Duration
}

// FixedBackoff sleeps the same duration between every attempt.
type FixedBackoff struct {
	D time.Duration
}

func (b FixedBackoff) Delay(int) time.Duration { return b.D }

// ExponentialBackoff grows the delay geometrically up to Max. With Jitter,
// the delay is perturbed by up to ±50% (pseudorandom; retry pacing does not
// need cryptographic randomness).
type ExponentialBackoff struct {
	Base   time.Duration
	Factor float64
	Max    time.Duration
	Jitter bool
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	d := float64(b.Base)
	for i := 0; i < attempt; i++ {
		d *= b.Factor
	}
	if max := float64(b.Max); d > max {
		d = max
	}
	if b.Jitter {
		d *= 0.5 + rand.Float64()
	}
	return time.Duration(d)
}

// RetryConfig controls the retry engine. A zero value disables retries;
// use DefaultRetryConfig for the standard policy.
type RetryConfig struct {
	Enabled        bool
	MaxRetries     int
	Backoff        Backoff
	RetryOnStatus  map[int]bool
	RetryOnTimeout bool
	RetryOnConnect bool
}

// DefaultRetryConfig is the standard policy: four retries with jittered
// exponential backoff on transient statuses, timeouts, and refused
// connections.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled:    true,
		MaxRetries: 4,
		Backoff: ExponentialBackoff{
			Base:   200 * time.Millisecond,
			Factor: 2.0,
			Max:    3 * time.Second,
			Jitter: true,
		},
		RetryOnStatus: map[int]bool{
			408: true, 429: true, 500: true, 502: true, 503: true, 504: true,
		},
		RetryOnTimeout: true,
		RetryOnConnect: true,
	}
}

// isTimeout reports whether err is a transport timeout.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isConnectError reports whether err happened while dialing, before any
// bytes were exchanged.
func isConnectError(err error) bool {
	var oe *net.OpError
	return errors.As(err, &oe) && oe.Op == "dial"
}

// doWithRetry runs the retry loop of the request pipeline. build is called
// once per attempt so each request carries a fresh body. Sleeps honor ctx:
// cancellation between attempts returns immediately.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error), rc RetryConfig) (*http.Response, error) {
	if !rc.Enabled {
		req, err := build()
		if err != nil {
			return nil, err
		}
		return c.do(req)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			if !rc.RetryOnStatus[resp.StatusCode] || attempt >= rc.MaxRetries {
				return resp, nil
			}
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("retrying on status")
			lastErr = classifyStatus(resp.StatusCode, req.URL.String())
		} else {
			retryable := (isTimeout(err) && rc.RetryOnTimeout) ||
				(isConnectError(err) && rc.RetryOnConnect)
			if !retryable || attempt >= rc.MaxRetries {
				return nil, err
			}
			c.log.Debug().Err(err).Int("attempt", attempt).Msg("retrying on transport error")
			lastErr = err
		}

		select {
		case <-time.After(rc.Backoff.Delay(attempt)):
		case <-ctx.Done():
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, ctx.Err()
		}
	}
}
