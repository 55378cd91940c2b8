package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	// TraceIDKey is the log field and gin key for the trace id.
	TraceIDKey = "trace_id"
	// TraceIDHeader is the HTTP header carrying the trace id.
	TraceIDHeader = "X-Request-Id"

	traceIDCtxKey ctxKey = TraceIDKey
)

// GetTraceID gets a trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceIDCtxKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets a trace ID to the context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}

// FromGinContext extracts the request context.Context from *gin.Context.
func FromGinContext(c *gin.Context) context.Context {
	return c.Request.Context()
}

// BindTraceID stores the trace id on both the request context and the gin context.
func BindTraceID(c *gin.Context, traceID string) {
	c.Set(TraceIDKey, traceID)
	c.Request = c.Request.WithContext(SetTraceID(c.Request.Context(), traceID))
}
