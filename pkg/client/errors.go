package client

import "fmt"

// ErrNotFound is returned for HTTP 404 responses.
type ErrNotFound struct {
	URL string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.URL)
}

// ErrRateLimited is returned for HTTP 429 responses after retries are
// exhausted.
type ErrRateLimited struct {
	URL string
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limited: %s", e.URL)
}

// ErrServer is returned for 5xx responses.
type ErrServer struct {
	Status int
	URL    string
}

func (e *ErrServer) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.URL)
}

// ErrUnauthorized is returned for 401/403 responses. Adapters that support
// crumb auth catch it and retry with credentials.
type ErrUnauthorized struct {
	Status int
	URL    string
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("unauthorized (%d): %s", e.Status, e.URL)
}

// ErrStatus is returned for any other non-2xx status.
type ErrStatus struct {
	Status int
	URL    string
}

func (e *ErrStatus) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.URL)
}

// ErrAPI is a Yahoo-reported error carried inside a 2xx envelope.
type ErrAPI struct {
	Code        string
	Description string
}

func (e *ErrAPI) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("yahoo api error %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("yahoo api error: %s", e.Description)
}

// ErrAuth signals a failure of the cookie/crumb refresh protocol.
type ErrAuth struct {
	Reason string
}

func (e *ErrAuth) Error() string {
	return "auth: " + e.Reason
}

// ErrScrape signals that the HTML scrape fallback could not locate usable
// bootstrap data.
type ErrScrape struct {
	Detail string
}

func (e *ErrScrape) Error() string {
	return "scrape: " + e.Detail
}

// ErrMissingData is returned when a 2xx response carries no usable payload
// for the requested symbol.
type ErrMissingData struct {
	Symbol string
	What   string
}

func (e *ErrMissingData) Error() string {
	if e.Symbol == "" {
		return "missing data: " + e.What
	}
	return fmt.Sprintf("missing data for %s: %s", e.Symbol, e.What)
}

// ErrInvalidParams is returned before any network call when request
// parameters are malformed.
type ErrInvalidParams struct {
	Detail string
}

func (e *ErrInvalidParams) Error() string {
	return "invalid params: " + e.Detail
}

// ErrInvalidDates is returned when a period window has start >= end. No
// network call is made.
type ErrInvalidDates struct {
	Start int64
	End   int64
}

func (e *ErrInvalidDates) Error() string {
	return fmt.Sprintf("invalid dates: start %d >= end %d", e.Start, e.End)
}

// classifyStatus maps a non-2xx status code onto the error taxonomy.
func classifyStatus(status int, url string) error {
	switch {
	case status == 404:
		return &ErrNotFound{URL: url}
	case status == 429:
		return &ErrRateLimited{URL: url}
	case status == 401 || status == 403:
		return &ErrUnauthorized{Status: status, URL: url}
	case status >= 500:
		return &ErrServer{Status: status, URL: url}
	default:
		return &ErrStatus{Status: status, URL: url}
	}
}
