package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("slot committed", "booking_id", "b1")

		assert.Contains(t, buf.String(), "slot committed")
		assert.Contains(t, buf.String(), "booking_id=b1")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "bookwell",
			ServiceVersion: "1.2.3",
		})

		logger.Info("slot committed")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "slot committed", entry["msg"])
		assert.Equal(t, "bookwell", entry["service"])
		assert.Equal(t, "1.2.3", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

		logger.Info("info message")
		logger.Warn("warn message")

		assert.NotContains(t, buf.String(), "info message")
		assert.Contains(t, buf.String(), "warn message")
	})
}

func TestNewLogger_ContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf}).With("component", "guard")

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActorID(ctx, "user-1")
	logger.InfoContext(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-1", entry[CorrelationIDKey])
	assert.Equal(t, "req-1", entry[RequestIDKey])
	assert.Equal(t, "user-1", entry[ActorIDKey])
	assert.Equal(t, "guard", entry["component"])
}

func TestParseLevel(t *testing.T) {
	tests := map[LogLevel]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), string(in))
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	ctx = NewRequestContext(context.Background(), "given")
	assert.Equal(t, "given", CorrelationIDFromContext(ctx))
	assert.Empty(t, ActorIDFromContext(context.Background()))
}
