package log

import (
	"fmt"
	"io"
	"strings"
)

// Config declares how a process-wide logger is built.
type Config struct {
	Level  string   `json:"level" yaml:"level"`
	Format string   `json:"format" yaml:"format"`
	Output string   `json:"output" yaml:"output"`
	Redact []string `json:"redact,omitempty" yaml:"redact,omitempty"`
	// Writer overrides the console destination (tests).
	Writer io.Writer `json:"-" yaml:"-"`
}

// ParseLevel maps debug|info|warn|warning|error (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg. A nil cfg yields an info-level text
// logger on stderr.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	var output Output
	switch strings.ToLower(cfg.Output) {
	case "", "console", "stderr":
		if cfg.Writer != nil {
			output = newWriterOutput(cfg.Writer)
		} else {
			output = NewConsoleOutput()
		}
	case "null", "none":
		output = NullOutput{}
	default:
		return nil, fmt.Errorf("log: unknown output %q", cfg.Output)
	}

	return NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(output),
		withRedactions(cfg.Redact...),
	), nil
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return NewLogger(WithLevel(ErrorLevel+1), WithOutput(NullOutput{}))
}
