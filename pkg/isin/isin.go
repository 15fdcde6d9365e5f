// Package isin resolves ticker symbols to ISINs via the Business Insider
// suggest service. The service's response shape is not stable, so parsing
// runs through progressively looser passes.
package isin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gramistella/yfin/pkg/client"
)

// Resolve returns the ISIN for a symbol, or a MissingData error when the
// suggest service has no row carrying one.
func Resolve(ctx context.Context, c *client.Client, symbol string, opts client.CallOpts) (string, error) {
	if symbol == "" {
		return "", &client.ErrInvalidParams{Detail: "empty symbol"}
	}

	u := fmt.Sprintf("%s?max_results=5&query=%s", c.URLs().InsiderSuggest, url.QueryEscape(symbol))
	body, err := c.GetText(ctx, u, opts)
	if err != nil {
		return "", fmt.Errorf("isin suggest %s: %w", symbol, err)
	}

	want := NormalizeSymbol(symbol)
	if code := parseContainers(body, want); code != "" {
		return code, nil
	}
	if code := parseFlatArray(body, want); code != "" {
		return code, nil
	}
	if code := scanRaw(body); code != "" {
		return code, nil
	}
	return "", &client.ErrMissingData{Symbol: symbol, What: "isin"}
}

// parseContainers descends into the known array containers of the JSON
// response and picks an ISIN field, preferring rows whose symbol matches.
func parseContainers(body, want string) string {
	var root any
	if err := json.Unmarshal([]byte(body), &root); err != nil {
		return ""
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"Suggestions", "suggestions", "items", "results", "Result", "data"} {
			if arr, ok := v[key].([]any); ok {
				items = append(items, arr...)
			}
		}
		if len(items) == 0 {
			// Any array child will do.
			for _, child := range v {
				if arr, ok := child.([]any); ok {
					items = append(items, arr...)
				}
			}
		}
	}

	var fallback string
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code := isinField(row)
		if code == "" {
			continue
		}
		if sym := symbolField(row); sym != "" && NormalizeSymbol(sym) == want {
			return code
		}
		if fallback == "" {
			fallback = code
		}
	}
	return fallback
}

func isinField(row map[string]any) string {
	for _, key := range []string{"Isin", "isin", "ISIN"} {
		if s, ok := row[key].(string); ok && LooksLikeISIN(s) {
			return s
		}
	}
	return ""
}

func symbolField(row map[string]any) string {
	for _, key := range []string{"Symbol", "symbol"} {
		if s, ok := row[key].(string); ok {
			return s
		}
	}
	return ""
}

// parseFlatArray reads the `[{Value:"a | b | c", Symbol, Isin}]` shape,
// tokenizing Value by pipes.
func parseFlatArray(body, want string) string {
	var rows []struct {
		Value  string `json:"Value"`
		Symbol string `json:"Symbol"`
		Isin   string `json:"Isin"`
	}
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		return ""
	}

	var fallback string
	for _, row := range rows {
		if LooksLikeISIN(row.Isin) {
			if NormalizeSymbol(row.Symbol) == want {
				return row.Isin
			}
			if fallback == "" {
				fallback = row.Isin
			}
		}
		for _, tok := range strings.Split(row.Value, "|") {
			tok = strings.TrimSpace(tok)
			if !LooksLikeISIN(tok) {
				continue
			}
			if NormalizeSymbol(row.Symbol) == want {
				return tok
			}
			if fallback == "" {
				fallback = tok
			}
		}
	}
	return fallback
}

// scanRaw slides a 12-character window over the body and returns the first
// ISIN-shaped token. Last resort for non-JSON responses.
func scanRaw(body string) string {
	for i := 0; i+12 <= len(body); i++ {
		tok := body[i : i+12]
		if !LooksLikeISIN(tok) {
			continue
		}
		// The window must not sit inside a longer alphanumeric run.
		if i > 0 && isAlnum(body[i-1]) {
			continue
		}
		if i+12 < len(body) && isAlnum(body[i+12]) {
			continue
		}
		return tok
	}
	return ""
}

// NormalizeSymbol canonicalizes exchange-decorated symbols for comparison:
// trimmed, dashes become dots, truncated at the first separator, lowercase.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", ".")
	if i := strings.IndexAny(s, ".: "); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

// LooksLikeISIN reports whether s is shaped like an ISIN: 12 chars, two
// leading letters, nine alphanumerics, one trailing digit. Checksum is not
// validated.
func LooksLikeISIN(s string) bool {
	if len(s) != 12 {
		return false
	}
	for i := 0; i < 2; i++ {
		if !isAlpha(s[i]) {
			return false
		}
	}
	for i := 2; i < 11; i++ {
		if !isAlnum(s[i]) {
			return false
		}
	}
	return s[11] >= '0' && s[11] <= '9'
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isAlnum(b byte) bool {
	return isAlpha(b) || (b >= '0' && b <= '9')
}
