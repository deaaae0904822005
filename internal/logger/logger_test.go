package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stecc88/roommatch/internal/config"
)

// captureOutput redirects stdout to a buffer during f()
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	return buf.String()
}

func initBuffered(c Config) *bytes.Buffer {
	var buf bytes.Buffer
	c.Output = &buf
	Init(&c)
	return &buf
}

func TestLogger_TextFormat(t *testing.T) {
	buf := initBuffered(Config{Level: "debug", Format: FormatText, Component: "test"})
	Info("hello roommatch", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello roommatch") {
		t.Errorf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected structured field, got: %s", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := initBuffered(Config{Level: "info", Format: FormatJSON, Component: "json_test"})
	Info("json log", "foo", "bar")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json log"`) {
		t.Errorf("expected JSON message, got: %s", out)
	}
	if !strings.Contains(out, `"component":"json_test"`) {
		t.Errorf("expected component in JSON, got: %s", out)
	}
	if !strings.Contains(out, `"foo":"bar"`) {
		t.Errorf("expected structured field in JSON, got: %s", out)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	buf := initBuffered(Config{Level: "error", Format: FormatText})
	Info("should not appear")
	Error("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info log should not appear, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("error log should appear, got: %s", out)
	}
}

func TestLogger_WithAddsFields(t *testing.T) {
	buf := initBuffered(Config{Level: "debug", Format: FormatText})
	log := With("req_id", "123")
	log.Info("processing request")

	if !strings.Contains(buf.String(), "req_id=123") {
		t.Errorf("expected req_id field, got: %s", buf.String())
	}
}

func TestLogger_InitFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	cfg.Log.Component = "cfg_test"
	cfg.Log.Source = true

	out := captureOutput(t, func() {
		InitFromConfig(cfg)
		Debug("cfg-based log")
	})

	if !strings.Contains(out, `"msg":"cfg-based log"`) {
		t.Errorf("expected config-based JSON log, got: %s", out)
	}
	if !strings.Contains(out, `"component":"cfg_test"`) {
		t.Errorf("expected component from config, got: %s", out)
	}
	if !strings.Contains(out, `"source"`) {
		t.Errorf("expected source location, got: %s", out)
	}
}

func TestLogger_FromContext(t *testing.T) {
	buf := initBuffered(Config{Level: "debug", Format: FormatText})

	scoped := With("req_id", "abc")
	ctx := NewContext(context.Background(), scoped)
	FromContext(ctx, nil).Info("scoped")

	if !strings.Contains(buf.String(), "req_id=abc") {
		t.Errorf("expected scoped logger from context, got: %s", buf.String())
	}

	fallback := Discard()
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger when context carries none")
	}
	if FromContext(context.Background(), nil) != L() {
		t.Error("expected global logger when no fallback is given")
	}
}
