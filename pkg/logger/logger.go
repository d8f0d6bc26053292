// Package logger holds the process-wide zerolog logger.
//
// Call Init once from the CLI before anything logs, then use Get or Component.
// Levels, lowest first: trace, debug, info, warn, error.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level. Unknown values mean "info".
	Level string
	// Pretty switches to coloured console output for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Env are attached to every event when set.
	Service string
	Env     string
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init builds the logger on first call; later calls return the same instance.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.DurationFieldUnit = time.Millisecond

		var out io.Writer = os.Stdout
		if opts.Output != nil {
			out = opts.Output
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
		}

		level := ParseLevel(opts.Level)
		zerolog.SetGlobalLevel(level)

		fields := zerolog.New(out).Level(level).With().Timestamp()
		if opts.Service != "" {
			fields = fields.Str("service", opts.Service)
		}
		if opts.Env != "" {
			fields = fields.Str("env", opts.Env)
		}
		instance = fields.Logger()
		initialized = true
	})
	return instance
}

// Get returns the process logger. It panics before Init.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Component tags the process logger with a subsystem name such as "http",
// "service" or "mail".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the logger so tests can Init again.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

// ParseLevel maps LOG_LEVEL values to zerolog levels. Anything unknown is info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
