package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// routeResources maps the collection segment before ":id" to the entity it
// addresses.
var routeResources = map[string]string{
	"modules":    "module",
	"sessions":   "session",
	"timestamps": "timestamp",
	"notes":      "note",
	"profiles":   "profile",
}

// AttachTraceContext stamps request, trace and resource ids on the request
// context, the response headers and the active span.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqID := clientRequestID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}

		// A recording span wins over whatever the client sent.
		spanCtx := trace.SpanContextFromContext(ctx)
		traceID := ""
		if spanCtx.HasTraceID() {
			traceID = spanCtx.TraceID().String()
		} else {
			traceID = clientRequestID(c.GetHeader(headerTraceID))
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		td := &ctxutil.TraceData{TraceID: traceID, RequestID: reqID, Route: c.FullPath()}
		td.ResourceKind, td.ResourceID = routeResource(td.Route, c.Param("id"))

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			attrs := []attribute.KeyValue{attribute.String("request.id", reqID)}
			if td.ResourceKind != "" {
				attrs = append(attrs,
					attribute.String("learning.resource.kind", td.ResourceKind),
					attribute.String("learning.resource.id", td.ResourceID),
				)
			}
			span.SetAttributes(attrs...)
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// clientRequestID accepts an id from an untrusted header only when it is
// short and printable ASCII.
func clientRequestID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}

// routeResource reads "/api/sessions/:id/progress" as ("session", id).
func routeResource(route, id string) (string, string) {
	if route == "" || id == "" {
		return "", ""
	}
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i := 1; i < len(parts); i++ {
		if parts[i] != ":id" {
			continue
		}
		if kind, ok := routeResources[parts[i-1]]; ok {
			return kind, id
		}
	}
	return "", ""
}
