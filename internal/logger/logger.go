package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/stecc88/roommatch/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
	Output     io.Writer // defaults to os.Stdout
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
	cfg    = Config{
		Level:  "info",
		Format: FormatText,
	}
)

// InitFromConfig initializes global logger from app config.
func InitFromConfig(c *config.Config) {
	if c == nil {
		Init(nil)
		return
	}
	Init(&Config{
		Level:      c.Log.Level,
		Format:     Format(c.Log.Format),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	})
}

// Init sets up the global logger. Safe to call multiple times.
func Init(c *Config) {
	mu.Lock()
	defer mu.Unlock()

	if c != nil {
		cfg = *c
	}
	logger = build(cfg)
}

func build(c Config) *slog.Logger {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}

	text := !strings.EqualFold(string(c.Format), string(FormatJSON))
	opts := &slog.HandlerOptions{
		Level:     parseLevel(c.Level),
		AddSource: c.WithSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && text && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
			}
			return a
		},
	}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	base := slog.New(handler)
	if c.Component != "" {
		base = base.With("component", c.Component)
	}
	return base
}

// L returns the global logger. Always returns a non-nil instance.
func L() *slog.Logger {
	mu.RLock()
	if logger != nil {
		defer mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	Init(nil)

	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// With creates a child logger with additional attributes.
func With(args ...any) *slog.Logger { return L().With(args...) }

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

type ctxKey struct{}

// NewContext returns a copy of ctx carrying log.
func NewContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the request-scoped logger, or fallback when the
// context carries none. A nil fallback means the global logger.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if fallback != nil {
		return fallback
	}
	return L()
}

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
