package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config selects the console format and an optional JSON log file.
type Config struct {
	Level  slog.Level
	Format string
	File   string
	Output io.Writer
}

// New builds the process logger. The returned cleanup closes the log file,
// if any, and is never nil.
func New(cfg Config) (*slog.Logger, func() error, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	console := consoleHandler(out, cfg.Level, cfg.Format)
	noop := func() error { return nil }

	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return slog.New(console), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, noop, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file: %w", err)
	}

	file := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})

	return slog.New(MultiHandler(console, file)), f.Close, nil
}

func consoleHandler(out io.Writer, level slog.Level, format string) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	default:
		return tint.NewHandler(out, &tint.Options{Level: level})
	}
}
