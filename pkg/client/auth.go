package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
)

// credentials is the cookie+crumb pair required by authenticated endpoints.
// mu guards the fields; refreshMu serializes the refresh protocol so at most
// one refresh per client is ever in flight.
type credentials struct {
	mu        sync.RWMutex
	refreshMu sync.Mutex
	cookie    string
	crumb     string
}

func (cr *credentials) snapshot() (cookie, crumb string) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.cookie, cr.crumb
}

// Crumb returns the current crumb, or "" if none has been acquired.
func (c *Client) Crumb() string {
	_, crumb := c.creds.snapshot()
	return crumb
}

// ClearCrumb drops the crumb so the next authenticated call refreshes it.
// The cookie is left intact; it usually outlives the crumb.
func (c *Client) ClearCrumb() {
	c.creds.mu.Lock()
	c.creds.crumb = ""
	c.creds.mu.Unlock()
}

// EnsureCredentials makes sure a crumb is available, acquiring the
// cookie+crumb pair if needed. Concurrent callers on a fresh client cause a
// single cookie GET and a single crumb GET; the rest wait and reuse the
// result.
func (c *Client) EnsureCredentials(ctx context.Context) error {
	if _, crumb := c.creds.snapshot(); crumb != "" {
		return nil
	}

	c.creds.refreshMu.Lock()
	defer c.creds.refreshMu.Unlock()

	// Another caller may have finished the refresh while we waited.
	if _, crumb := c.creds.snapshot(); crumb != "" {
		return nil
	}
	return c.refreshCredentials(ctx)
}

// refreshCredentials runs the two-step acquisition under refreshMu: hit the
// consent page to establish the session cookie, then exchange it for a
// crumb. The HTTP client's jar carries the cookie into the crumb request.
func (c *Client) refreshCredentials(ctx context.Context) error {
	cookie, err := c.fetchCookie(ctx)
	if err != nil {
		return err
	}
	c.creds.mu.Lock()
	c.creds.cookie = cookie
	c.creds.mu.Unlock()

	crumb, err := c.fetchCrumb(ctx)
	if err != nil {
		return err
	}
	c.creds.mu.Lock()
	c.creds.crumb = crumb
	c.creds.mu.Unlock()

	c.log.Debug().Msg("credentials refreshed")
	return nil
}

func (c *Client) fetchCookie(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urls.Cookie, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", &ErrAuth{Reason: "cookie request failed: " + err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// No Set-Cookie means Yahoo declined the session; retrying does not
	// help, so this is a hard failure.
	raw := resp.Header.Get("Set-Cookie")
	if raw == "" {
		return "", &ErrAuth{Reason: "cookie endpoint returned no Set-Cookie"}
	}
	cookie := strings.SplitN(raw, ";", 2)[0]
	if !strings.Contains(cookie, "=") {
		return "", &ErrAuth{Reason: "unparseable Set-Cookie: " + raw}
	}
	return cookie, nil
}

func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urls.Crumb, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", &ErrAuth{Reason: "crumb request failed: " + err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &ErrAuth{Reason: "crumb endpoint status " + resp.Status}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ErrAuth{Reason: "reading crumb body: " + err.Error()}
	}
	crumb := strings.TrimSpace(string(body))
	// An HTML or JSON body here is an error page, not a crumb.
	if crumb == "" || strings.ContainsAny(crumb, "{<") {
		return "", &ErrAuth{Reason: "crumb body does not look like a crumb"}
	}
	return crumb, nil
}
