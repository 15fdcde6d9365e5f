// Package fixtures persists live response bodies for test replay. Recording
// is off unless YFIN_RECORD names a target directory, so normal runs never
// touch the filesystem.
package fixtures

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const envDir = "YFIN_RECORD"

// Enabled reports whether recording is switched on.
func Enabled() bool {
	return os.Getenv(envDir) != ""
}

// Record writes body under "{endpoint}_{symbol}.{ext}" in the recording
// directory. A no-op when recording is disabled.
func Record(endpoint, symbol, ext string, body []byte) error {
	dir := os.Getenv(envDir)
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating fixture dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", sanitize(endpoint), sanitize(symbol), ext)
	if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
		return fmt.Errorf("writing fixture %s: %w", name, err)
	}
	return nil
}

// RecordURL derives the endpoint and symbol from a request URL and records
// body under the standard naming scheme. Chart-style URLs carry the symbol
// as the final path segment; the v7 quote and search endpoints carry it in
// a query parameter instead.
func RecordURL(rawURL string, body []byte) error {
	if !Enabled() {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing fixture url: %w", err)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")

	q := u.Query()
	symbol := q.Get("symbols")
	if symbol == "" {
		symbol = q.Get("query")
	}
	if symbol == "" {
		symbol = q.Get("q")
	}
	endpoint := segs[len(segs)-1]
	if symbol == "" && len(segs) >= 2 {
		endpoint, symbol = segs[len(segs)-2], segs[len(segs)-1]
	}

	ext := "json"
	if strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		ext = "html"
	}
	return Record(endpoint, symbol, ext, body)
}

// Load reads a previously recorded fixture from dir. Tests use this to
// replay captured bodies through httptest servers.
func Load(dir, endpoint, symbol, ext string) ([]byte, error) {
	name := fmt.Sprintf("%s_%s.%s", sanitize(endpoint), sanitize(symbol), ext)
	return os.ReadFile(filepath.Join(dir, name))
}

// sanitize keeps fixture names filesystem-safe; symbols like "BRK.B" or
// "^GSPC" appear verbatim otherwise.
func sanitize(s string) string {
	repl := strings.NewReplacer("/", "-", "\\", "-", "^", "", "=", "-", ":", "-")
	return repl.Replace(s)
}
