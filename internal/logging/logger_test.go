package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedLogger(buf *bytes.Buffer) *Logger {
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{Logger: slog.New(handler)}
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferedLogger(&buf)

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "hello")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, slog.Default(), logger.Logger)
}

func TestWithFields_AttachesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferedLogger(&buf).WithFields(slog.String("table", "widgets"))

	logger.Debug("applying row patch")

	out := buf.String()
	assert.Contains(t, out, "table=widgets")
	assert.Contains(t, out, "applying row patch")
}
