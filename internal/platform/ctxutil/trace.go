package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates one request across logs, spans and responses.
// ResourceKind and ResourceID name the learning entity the route addresses,
// e.g. "session" and its uuid, and stay empty for collection routes.
type TraceData struct {
	TraceID      string
	RequestID    string
	Route        string
	ResourceKind string
	ResourceID   string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the non-empty correlation fields as logger key/values.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	var out []interface{}
	add := func(k, v string) {
		if v != "" {
			out = append(out, k, v)
		}
	}
	add("trace_id", td.TraceID)
	add("request_id", td.RequestID)
	add("resource", td.ResourceKind)
	add("resource_id", td.ResourceID)
	return out
}
