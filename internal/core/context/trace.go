package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext holds the correlation identifiers for one inbound request.
// Every log line a report build or a lock transition emits carries these,
// so an audited period change can be tied back to the request that made it.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// NewTrace builds a TraceContext, keeping whichever identifiers the caller
// already has and minting the rest.
func NewTrace(traceID, requestID string) *TraceContext {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &TraceContext{
		TraceID:   traceID,
		SpanID:    uuid.New().String()[:16],
		RequestID: requestID,
	}
}

type traceContextKey struct{}

// WithTrace attaches the trace to a context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the trace carried by the context, or nil outside a request.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}
