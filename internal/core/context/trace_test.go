package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrace_KeepsCallerIDs(t *testing.T) {
	trace := NewTrace("trace-abc", "req-123")

	assert.Equal(t, "trace-abc", trace.TraceID)
	assert.Equal(t, "req-123", trace.RequestID)
	assert.Len(t, trace.SpanID, 16)
}

func TestNewTrace_MintsMissingIDs(t *testing.T) {
	trace := NewTrace("", "")

	assert.NotEmpty(t, trace.TraceID)
	assert.NotEmpty(t, trace.RequestID)
	assert.NotEqual(t, trace.TraceID, trace.RequestID)
}

func TestTraceRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTrace(ctx))

	trace := NewTrace("t", "r")
	ctx = WithTrace(ctx, trace)

	got := GetTrace(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "t", got.TraceID)
	assert.Equal(t, "r", got.RequestID)
}
