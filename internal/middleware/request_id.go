package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader carries the trace ID on requests and responses.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey stores the trace ID on the echo context.
	TraceIDContextKey = "trace_id"
)

// RequestID tags every request with a trace ID. A caller-supplied
// X-Trace-ID is kept so the ID survives across service hops; otherwise a
// fresh UUID is issued. The ID lands on the echo context and the response
// header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			c.Set(TraceIDContextKey, traceID)
			c.Response().Header().Set(TraceIDHeader, traceID)
			return next(c)
		}
	}
}

// GetTraceID returns the trace ID stored by RequestID, or "" when the
// middleware did not run.
func GetTraceID(c echo.Context) string {
	if traceID, ok := c.Get(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}
