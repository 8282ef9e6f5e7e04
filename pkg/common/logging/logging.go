package logging

import (
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
)

// Config selects the level and output format of a logger.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, returning def for unknown names.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return def
	}
}

// Component derives a logger tagged with the primitive kind and instance name.
// A nil base yields a disabled logger.
func Component(base *zerolog.Logger, component, name string) zerolog.Logger {
	if base == nil {
		return zerolog.Nop()
	}
	ctx := base.With().Str("component", component)
	if name != "" {
		ctx = ctx.Str("name", name)
	}
	return ctx.Logger()
}

// Repanic logs a recovered panic value with its stack and panics again with
// the same value. Callers invoke it from their deferred recover so that a
// failure escaping user code is recorded and still fatal.
func Repanic(log zerolog.Logger, recovered interface{}, msg string) {
	log.Error().
		Interface("panic", recovered).
		Bytes("stack", debug.Stack()).
		Msg(msg)
	panic(recovered)
}
