package client

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the default client logger. The library stays silent
// unless YFIN_DEBUG is set, so embedding applications own their logs.
func newLogger() zerolog.Logger {
	if os.Getenv("YFIN_DEBUG") == "" {
		return zerolog.Nop()
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).With().Timestamp().Str("component", "yfin").Logger()
}
