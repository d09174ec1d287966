package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestNew_GroupsAttributesUnderData(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Config{Service: "api-service", Env: "test"})

	l.Info("hello", "slug", "abc123")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])

	data, ok := line["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "api-service", data["service"])
	require.Equal(t, "test", data["env"])
	require.Equal(t, "abc123", data["slug"])
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, Config{Service: "svc"})

	ctx := WithRequestID(IntoContext(context.Background(), base), "req-1")
	FromContext(ctx).Info("x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "req-1", line["data"].(map[string]any)["request_id"])
	require.Equal(t, "req-1", RequestID(ctx))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG", slog.LevelInfo))
	require.Equal(t, slog.LevelWarn, parseLevel("warning", slog.LevelInfo))
	require.Equal(t, slog.LevelInfo, parseLevel("", slog.LevelError))
	require.Equal(t, slog.LevelError, parseLevel("nonsense", slog.LevelError))
}

func TestNewGormLogger_Levels(t *testing.T) {
	require.Equal(t, logger.Silent, NewGormLogger("silent").logLevel)
	require.Equal(t, logger.Error, NewGormLogger("error").logLevel)
	require.Equal(t, logger.Info, NewGormLogger("info").logLevel)
	require.Equal(t, logger.Warn, NewGormLogger("").logLevel)
}
