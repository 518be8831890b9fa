// Package middleware provides gin middleware shared by every route.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID is the gin.Context key holding the request id.
	ContextRequestID = "request_id"
)

// RequestLogger assigns a request id and logs the start and end of each request.
// A valid UUID sent by the client in X-Request-ID is reused.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := requestID(c.GetHeader(HeaderRequestID))
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)

		path := c.Request.URL.Path
		slog.Info(c.Request.Method+" "+path,
			"request_id", id,
			"headers", RedactHeaders(c.Request.Header),
		)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", id,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		msg := c.Request.Method + " " + path + " " + http.StatusText(status)
		if status >= http.StatusInternalServerError {
			slog.Error(msg, attrs...)
			return
		}
		slog.Info(msg, attrs...)
	}
}

func requestID(incoming string) string {
	if id, err := uuid.Parse(incoming); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// RedactHeaders flattens headers for logging, masking credentials.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "authorization"):
			scheme, _, _ := strings.Cut(strings.Join(values, ","), " ")
			out[name] = scheme + " [REDACTED]"
		case strings.Contains(lower, "token"), strings.Contains(lower, "key"), strings.Contains(lower, "cookie"):
			out[name] = "[REDACTED]"
		default:
			out[name] = strings.Join(values, ",")
		}
	}
	return out
}
