package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the output format and verbosity of the service logger.
type Options struct {
	App   string
	Env   string
	Level string
}

// New builds the service logger. Production writes JSON lines; other
// environments get the console writer.
func New(opts Options) zerolog.Logger {
	return newLogger(os.Stdout, opts)
}

func newLogger(out io.Writer, opts Options) zerolog.Logger {
	if opts.Env != "production" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339Nano}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", opts.App).
		Str("env", opts.Env).
		Logger()
}

// IntoContext attaches logger to ctx.
func IntoContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the request logger attached by Middleware, or a
// disabled logger when there is none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return zerolog.Ctx(context.Background())
	}
	return zerolog.Ctx(ctx)
}
