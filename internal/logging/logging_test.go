package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	t.Parallel()

	var debugBuf, warnBuf bytes.Buffer
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warn := slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(MultiHandler(debug, nil, warn)).With("component", "test")
	logger.Info("info message")
	logger.Warn("warn message")

	if got := strings.Count(debugBuf.String(), "\n"); got != 2 {
		t.Fatalf("debug handler: expected 2 records, got %d", got)
	}
	if got := strings.Count(warnBuf.String(), "\n"); got != 1 {
		t.Fatalf("warn handler: expected 1 record, got %d", got)
	}
	if !strings.Contains(warnBuf.String(), `"component":"test"`) {
		t.Fatalf("expected attrs to propagate, got %s", warnBuf.String())
	}
}

func TestMultiHandler_Empty(t *testing.T) {
	t.Parallel()

	h := MultiHandler()
	if h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("expected empty handler to be disabled")
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	scoped := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}
	if got := FromContext(WithLogger(context.Background(), scoped), fallback); got != scoped {
		t.Fatalf("expected context logger")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Fatalf("expected discard logger, got nil")
	}
}

func TestNew_WritesJSONFile(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "emailnorm.log")

	logger, cleanup, err := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		File:   path,
		Output: &console,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	logger.Info("normalized", "email", "a@b.co")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", content, err)
	}
	if record["msg"] != "normalized" {
		t.Fatalf("unexpected record: %v", record)
	}
	if !strings.Contains(console.String(), `"msg":"normalized"`) {
		t.Fatalf("expected console output, got %q", console.String())
	}
}
