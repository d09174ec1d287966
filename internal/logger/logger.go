package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Level   string
	Format  string
	Service string
	Env     string
	Version string
	Output  string
}

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyRequestID
)

var (
	levelVar      slog.LevelVar
	defaultLogger *slog.Logger
)

func Default() *slog.Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}

// Init builds the process logger and installs it as the slog default.
// Only time, level and msg stay at the root; everything else lives under `data`.
func Init(cfg Config) *slog.Logger {
	levelVar.Set(parseLevel(cfg.Level, slog.LevelInfo))

	defaultLogger = New(resolveWriter(cfg.Output), cfg)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

// New builds a logger writing to w without touching the process default.
func New(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: &levelVar}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		service = defaultServiceName()
	}

	l := slog.New(h).WithGroup("data").With("service", service)
	if cfg.Env != "" {
		l = l.With("env", cfg.Env)
	}
	if cfg.Version != "" {
		l = l.With("version", cfg.Version)
	}
	return l
}

func SetLevel(level string) {
	levelVar.Set(parseLevel(level, levelVar.Level()))
}

func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyLogger, l)
}

func FromContext(ctx context.Context) *slog.Logger {
	l := Default()
	if ctx == nil {
		return l
	}
	if lg, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && lg != nil {
		l = lg
	}
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func parseLevel(level string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

func resolveWriter(output string) io.Writer {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stdout
		}
		return f
	}
}

func defaultServiceName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "shortener"
}
