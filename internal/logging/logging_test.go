package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(NewTextLogger(&buf, slog.LevelDebug))
	Logger().Debug("fill", "pixels", 42)

	assert.Contains(t, buf.String(), "msg=fill")
	assert.Contains(t, buf.String(), "pixels=42")
}
