// Package observability carries the structured logger, Prometheus metrics
// and health endpoints for the translate client.
package observability

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	loggerOnce   sync.Once
	globalLogger zerolog.Logger
)

// InitLogger configures the global structured logger. Subsequent calls are
// no-ops.
func InitLogger(level string, pretty bool) {
	loggerOnce.Do(func() {
		lvl, err := zerolog.ParseLevel(level)
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(lvl)

		var out zerolog.Logger
		if pretty {
			out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		} else {
			out = zerolog.New(os.Stderr)
		}
		globalLogger = out.With().Timestamp().Logger()
		log.Logger = globalLogger
	})
}

// GetLogger returns the global logger, initializing defaults if needed.
func GetLogger() zerolog.Logger {
	InitLogger("info", false)
	return globalLogger
}

// SessionLogger returns a logger tagged with a fresh session correlation ID.
func SessionLogger() (zerolog.Logger, string) {
	id := uuid.New().String()
	return GetLogger().With().Str("session_id", id).Logger(), id
}
