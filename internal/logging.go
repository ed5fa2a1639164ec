package internal

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the process logger from the log section.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("config: unknown log format %q", format)
}

// SetupLogger installs the configured logger as the slog default.
func SetupLogger(w io.Writer, cfg *SqlGradeConfig) error {
	level := cfg.Log.Level
	if cfg.Server.Debug {
		level = "debug"
	}
	l, err := NewLogger(w, level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(l.With("app", cfg.AppName))
	return nil
}
