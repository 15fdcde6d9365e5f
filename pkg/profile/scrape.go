package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gramistella/yfin/pkg/client"
	"github.com/gramistella/yfin/pkg/models"
)

// loadScrape fetches the HTML quote page and digs the quoteSummary module
// map out of whichever bootstrap format the page currently uses.
func loadScrape(ctx context.Context, c *client.Client, symbol string, opts client.CallOpts) (models.Profile, error) {
	u := fmt.Sprintf("%s/%s?p=%s", c.URLs().QuotePage, url.PathEscape(symbol), url.QueryEscape(symbol))
	html, err := c.GetText(ctx, u, opts)
	if err != nil {
		return nil, fmt.Errorf("quote page %s: %w", symbol, err)
	}

	modules, err := extractBootstrap(html)
	if err != nil {
		return nil, err
	}

	// The page serves the asset profile under its legacy module name.
	if raw, ok := modules["assetProfile"]; ok {
		if _, exists := modules["summaryProfile"]; !exists {
			modules["summaryProfile"] = raw
		}
		delete(modules, "assetProfile")
	}
	return fromModules(symbol, modules)
}

// extractBootstrap tries the four known bootstrap formats in order of how
// specific they are. The page format has churned repeatedly; all four stay.
func extractBootstrap(html string) (map[string]json.RawMessage, error) {
	if m := tryRootAppMain(html); m != nil {
		return m, nil
	}
	if m := tryQuoteSummaryStoreLiteral(html); m != nil {
		return m, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &client.ErrScrape{Detail: "parsing quote page html: " + err.Error()}
	}
	if m := trySvelteKitScripts(doc); m != nil {
		return m, nil
	}
	if m := tryAnyJSONScript(doc); m != nil {
		return m, nil
	}
	return nil, &client.ErrScrape{Detail: "no bootstrap data found in quote page"}
}

// tryRootAppMain handles the legacy `root.App.main = {…};` assignment.
func tryRootAppMain(html string) map[string]json.RawMessage {
	const marker = "root.App.main"
	start := strings.Index(html, marker)
	if start < 0 {
		return nil
	}
	rest := html[start+len(marker):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return nil
	}
	rest = rest[eq+1:]
	end := strings.Index(rest, ";\n")
	if end < 0 {
		end = strings.LastIndex(rest, ";")
	}
	if end < 0 {
		return nil
	}

	var root any
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &root); err != nil {
		return nil
	}
	return findModuleMap(root)
}

// tryQuoteSummaryStoreLiteral brace-matches the object following a literal
// `"QuoteSummaryStore":` key anywhere in the page.
func tryQuoteSummaryStoreLiteral(html string) map[string]json.RawMessage {
	const marker = `"QuoteSummaryStore"`
	idx := strings.Index(html, marker)
	if idx < 0 {
		return nil
	}
	rest := html[idx+len(marker):]
	open := strings.Index(rest, "{")
	if open < 0 {
		return nil
	}
	obj := matchBraces(rest[open:])
	if obj == "" {
		return nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		return nil
	}
	return m
}

// matchBraces returns the balanced {…} prefix of s. The scanner is
// string-aware: braces inside quoted strings or behind escapes do not count.
func matchBraces(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1]
				}
			}
		}
	}
	return ""
}

// trySvelteKitScripts reads the data-sveltekit-fetched JSON scripts, whose
// payloads hold the quoteSummary result either directly or behind a `body`
// wrapper that is itself a JSON string.
func trySvelteKitScripts(doc *goquery.Document) map[string]json.RawMessage {
	var found map[string]json.RawMessage
	doc.Find(`script[type="application/json"][data-sveltekit-fetched]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var root any
		if err := json.Unmarshal([]byte(s.Text()), &root); err != nil {
			return true
		}
		if m := findModuleMap(root); m != nil {
			found = m
			return false
		}
		return true
	})
	return found
}

// tryAnyJSONScript is the last resort: parse every application/json script
// and search the whole tree.
func tryAnyJSONScript(doc *goquery.Document) map[string]json.RawMessage {
	var found map[string]json.RawMessage
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var root any
		if err := json.Unmarshal([]byte(s.Text()), &root); err != nil {
			return true
		}
		if m := findModuleMap(root); m != nil {
			found = m
			return false
		}
		return true
	})
	return found
}

// findModuleMap walks an arbitrary JSON tree for a QuoteSummaryStore object
// or a quoteSummary.result[0] module map, descending through `body` wrappers
// whose value is embedded JSON.
func findModuleMap(node any) map[string]json.RawMessage {
	switch v := node.(type) {
	case map[string]any:
		if store, ok := v["QuoteSummaryStore"].(map[string]any); ok {
			return toRawMap(store)
		}
		if qs, ok := v["quoteSummary"].(map[string]any); ok {
			if result, ok := qs["result"].([]any); ok && len(result) > 0 {
				if first, ok := result[0].(map[string]any); ok {
					return toRawMap(first)
				}
			}
		}
		if body, ok := v["body"]; ok {
			switch b := body.(type) {
			case string:
				var inner any
				if err := json.Unmarshal([]byte(b), &inner); err == nil {
					if m := findModuleMap(inner); m != nil {
						return m
					}
				}
			default:
				if m := findModuleMap(b); m != nil {
					return m
				}
			}
		}
		for _, child := range v {
			if m := findModuleMap(child); m != nil {
				return m
			}
		}
	case []any:
		for _, child := range v {
			if m := findModuleMap(child); m != nil {
				return m
			}
		}
	}
	return nil
}

func toRawMap(m map[string]any) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = raw
	}
	return out
}
