package logging

import (
	"context"
)

type contextKey string

const (
	TraceIDKey     contextKey = "trace_id"
	RequestIDKey   contextKey = "request_id"
	MessageIDKey   contextKey = "message_id"
	ServiceNameKey contextKey = "service_name"
	RouteNameKey   contextKey = "route_name"
)

var fieldOrder = []contextKey{TraceIDKey, RequestIDKey, MessageIDKey, ServiceNameKey, RouteNameKey}

func with(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func get(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return with(ctx, TraceIDKey, traceID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, RequestIDKey, requestID)
}

func WithMessageID(ctx context.Context, messageID string) context.Context {
	return with(ctx, MessageIDKey, messageID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return with(ctx, ServiceNameKey, serviceName)
}

func WithRouteName(ctx context.Context, routeName string) context.Context {
	return with(ctx, RouteNameKey, routeName)
}

func GetTraceID(ctx context.Context) string     { return get(ctx, TraceIDKey) }
func GetRequestID(ctx context.Context) string   { return get(ctx, RequestIDKey) }
func GetMessageID(ctx context.Context) string   { return get(ctx, MessageIDKey) }
func GetServiceName(ctx context.Context) string { return get(ctx, ServiceNameKey) }
func GetRouteName(ctx context.Context) string   { return get(ctx, RouteNameKey) }

// GetLogFields returns the context values as alternating key/value pairs.
func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, len(fieldOrder)*2)
	for _, key := range fieldOrder {
		if value := get(ctx, key); value != "" {
			fields = append(fields, string(key), value)
		}
	}
	return fields
}
