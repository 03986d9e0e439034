package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONCarriesServiceAndEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "finance-tracker", "info", "")

	logger.Debug("dropped")
	logger.Info("deposit completed", "account_id", "a-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "deposit completed", rec["msg"])
	assert.Equal(t, "finance-tracker", rec["service"])
	assert.Equal(t, "production", rec["env"])
	assert.Equal(t, "a-1", rec["account_id"])
}

func TestNew_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "finance-tracker", "debug", "development").Debug("lock acquired")

	line := buf.String()
	assert.True(t, strings.Contains(line, "msg=\"lock acquired\""))
	assert.True(t, strings.Contains(line, "env=development"))
}

func TestWith_ExtendsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "svc", "info", "test"))

	ctx = With(ctx, "request_id", "r-1")
	ctx = With(ctx, "user_id", "u-1")
	FromContext(ctx).Info("transfer completed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "r-1", rec["request_id"])
	assert.Equal(t, "u-1", rec["user_id"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
