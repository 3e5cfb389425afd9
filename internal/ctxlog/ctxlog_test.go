package ctxlog

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	logger := New("debug", "text", &buf)
	ctx := WithLogger(context.Background(), logger)

	require.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestMissingLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), 12))
}

func TestLevelsAndFormats(t *testing.T) {
	var buf bytes.Buffer

	New("bogus", "text", &buf).Info("hidden")
	assert.Empty(t, buf.String())

	New("info", "json", &buf).Info("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
