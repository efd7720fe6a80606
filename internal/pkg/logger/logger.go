package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Service is attached to every line written by the root logger
const Service = "portfoliohub"

// Output formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

var root zerolog.Logger

// Config selects the level, format and destination of the root logger
type Config struct {
	// Level is a zerolog level name; unknown names fall back to info
	Level string
	// Format is FormatJSON or FormatText
	Format string
	// Output defaults to os.Stdout
	Output io.Writer
}

// ParseLevel maps a configured level name to a zerolog level
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Configure rebuilds the root logger and the zerolog global logger
func Configure(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, FormatText) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	root = zerolog.New(out).With().Timestamp().Str("service", Service).Logger()
	log.Logger = root
	return root
}

// Get returns the configured root logger
func Get() zerolog.Logger {
	return root
}

// Debug starts a debug event on the root logger
func Debug() *zerolog.Event { return root.Debug() }

// Info starts an info event on the root logger
func Info() *zerolog.Event { return root.Info() }

// Warn starts a warning event on the root logger
func Warn() *zerolog.Event { return root.Warn() }

// Error starts an error event on the root logger
func Error() *zerolog.Event { return root.Error() }

func init() {
	Configure(Config{Level: "info", Format: FormatText})
}
