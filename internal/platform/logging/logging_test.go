package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/SscSPs/general_ledger/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("chatty"))
}

func TestGetLoggerFromCtx_Default(t *testing.T) {
	assert.Same(t, slog.Default(), logging.GetLoggerFromCtx(context.Background()))
}

func TestWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.New(&buf, "info")
	ctx := logging.WithLogger(context.Background(), base)

	ctx, logger := logging.WithRequestLogger(ctx, slog.String("slug", "GL"))
	assert.Same(t, logger, logging.GetLoggerFromCtx(ctx))

	logger.Info("posted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "posted", line["msg"])
	assert.Equal(t, "GL", line["slug"])
	assert.NotEmpty(t, line["request_id"])
}

func TestWithRequestLogger_ReusesServedRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := logging.New(&buf, "info").With(slog.String("request_id", "req-7"))
	ctx := logging.WithRequestID(logging.WithLogger(context.Background(), base), "req-7")

	ctx, logger := logging.WithRequestLogger(ctx)
	logger.Info("posted")

	id, ok := logging.RequestIDFromCtx(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-7", id)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"request_id"`)))
}
