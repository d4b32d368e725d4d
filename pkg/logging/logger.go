// Package logging provides structured logging for prodmap using zerolog.
// It supports human-readable console output when attached to a terminal and
// structured JSON output otherwise, selectable via LOG_FORMAT.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("product", "CamX").Int("images", 3).Msg("Processing item")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger zerolog.Logger

	// Nop discards all output. Handy for tests.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = NewLoggerFromConfig(&Config{
		Level:  levelFromEnv(),
		Format: os.Getenv("LOG_FORMAT"),
		Output: "stderr",
	})
}

// Config controls logger construction.
type Config struct {
	Level     string // trace, debug, info, warn, error
	Format    string // "console", "json", or "" for auto-detect
	Output    string // "stderr", "stdout", or a file path
	AddCaller bool
}

// NewLoggerFromConfig builds a zerolog logger from a Config.
func NewLoggerFromConfig(config *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}

	writer := resolveWriter(config)

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	if config.AddCaller {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// resolveWriter picks the output writer, wrapping it in a console writer for
// terminals unless JSON output was requested.
func resolveWriter(config *Config) io.Writer {
	var out *os.File
	switch config.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			out = os.Stderr
		} else {
			return zerolog.New(f) // JSON for files, no console decoration
		}
	}

	format := strings.ToLower(config.Format)
	if format == "json" {
		return out
	}
	if format == "console" || isTerminal(out) {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}
	return out
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a new debug level log event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts a new info level log event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a new warning level log event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts a new error level log event on the default logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

// isTerminal checks whether the file is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// levelFromEnv reads LOG_LEVEL, honoring DEBUG as a shortcut.
func levelFromEnv() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	if os.Getenv("DEBUG") != "" {
		return "debug"
	}
	return "info"
}
