package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output instead of JSON
	Out    io.Writer
}

// New builds a zerolog logger from cfg and installs it as the global logger.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l
}

// FromContext returns the request-scoped logger stored in ctx, falling back
// to the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithSession returns ctx with a child logger that carries session_id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	l := FromContext(ctx).With().Str("session_id", sessionID).Logger()
	return l.WithContext(ctx)
}
