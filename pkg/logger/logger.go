package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvVarLogLevel is the environment variable name for setting the log level.
	EnvVarLogLevel = "LOG_LEVEL"

	// EnvVarLogFormat selects "json" (default) or "text" output.
	EnvVarLogFormat = "LOG_FORMAT"
)

// Options describe a structured logger.
type Options struct {
	// Module and Version are attached to every record.
	Module  string
	Version string

	// Level is one of "debug", "info", "warn", "error". Defaults to info.
	Level string

	// Format is "json" or "text". Defaults to json.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a structured logger.
// Module name and version are included in the logger's context.
// AddSource is enabled for debug level logging only.
// Parameters:
//   - opts: Module, version, level, format and output of the logger.
//     Zero values select info level, JSON format and os.Stderr.
//
// Returns:
//   - *slog.Logger: A pointer to the configured slog.Logger instance.
func New(opts Options) *slog.Logger {
	lev := ParseLogLevel(opts.Level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	ho := &slog.HandlerOptions{
		Level:     lev,
		AddSource: lev <= slog.LevelDebug,
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		h = slog.NewTextHandler(out, ho)
	} else {
		h = slog.NewJSONHandler(out, ho)
	}

	return slog.New(h).With("module", opts.Module, "version", opts.Version)
}

// SetDefaultLogger installs a logger for module and version as the slog default,
// reading level and format from LOG_LEVEL and LOG_FORMAT.
func SetDefaultLogger(module, version string) {
	SetDefaultLoggerWithLevel(module, version, os.Getenv(EnvVarLogLevel))
}

// SetDefaultLoggerWithLevel installs a logger as the slog default with an
// explicit level. The format is still read from LOG_FORMAT.
// Parameters:
//   - module: The name of the module/application using the logger.
//   - version: The version of the module/application (e.g., "v1.0.0").
//   - level: The log level as a string (e.g., "debug", "info", "warn", "error").
func SetDefaultLoggerWithLevel(module, version, level string) {
	slog.SetDefault(New(Options{
		Module:  module,
		Version: version,
		Level:   level,
		Format:  os.Getenv(EnvVarLogFormat),
	}))
}

// NewErrorLog returns a standard library logger for net/http internal errors
// that writes through the default slog logger.
func NewErrorLog() *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), slog.LevelError)
}

// ParseLogLevel converts a level name into a slog.Level.
// Matching ignores case and surrounding space; "warning" is accepted for warn.
// Parameters:
//   - level: The log level as a string.
//
// Returns:
//   - slog.Level: The matching level, or slog.LevelInfo when unrecognized.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
