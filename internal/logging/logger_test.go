package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/jsoncomma/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warn level", "warn", log.WarnLevel},
		{"warning level", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"invalid defaults to info", "invalid", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
		{"case insensitive DEBUG", "DEBUG", log.DebugLevel},
		{"case insensitive Info", "Info", log.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(testCase.level)
			if logger == nil {
				t.Fatal("New returned nil logger")
			}

			if logger.GetLevel() != testCase.expected {
				t.Errorf("expected level %v, got %v", testCase.expected, logger.GetLevel())
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if logging.FromContext(context.Background()) != logging.Default() {
		t.Error("FromContext without a logger should return the default")
	}

	var buf bytes.Buffer
	scoped := logging.NewWithWriter(&buf, "info").With(logging.FieldAddr, "127.0.0.1:9")
	ctx := logging.WithLogger(context.Background(), scoped)

	logging.FromContext(ctx).Info("request")
	if !strings.Contains(buf.String(), "addr=127.0.0.1:9") {
		t.Errorf("scoped fields missing from %q", buf.String())
	}
}

// Mutates the process-wide logger, so not parallel.
func TestDefaultLogger(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	replacement := logging.New("info")
	logging.SetDefault(replacement)
	if logging.Default() != replacement {
		t.Fatal("SetDefault did not replace the default logger")
	}

	for _, tc := range []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.InfoLevel},
	} {
		logging.SetLevel(tc.level)
		if got := replacement.GetLevel(); got != tc.want {
			t.Errorf("SetLevel(%q): level = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	logger.Debug("repaired", logging.FieldEdits, 2)

	out := buf.String()
	if !strings.Contains(out, "repaired") || !strings.Contains(out, "edits=2") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewServer(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", logging.FieldAddr, "127.0.0.1:1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "jsoncomma") || !strings.Contains(out, "addr=127.0.0.1:1") {
		t.Errorf("unexpected log output %q", out)
	}
}
