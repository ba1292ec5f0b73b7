package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	passKey      contextKey = "pass"
	requestIDKey contextKey = "request_id"
)

// WithRunID annotates context with the enrichment run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPass annotates context with the 1-based iteration pass of the engine.
func WithPass(ctx context.Context, pass int) context.Context {
	if pass <= 0 {
		return ctx
	}
	return context.WithValue(ctx, passKey, pass)
}

// PassFromContext returns the iteration pass if present.
func PassFromContext(ctx context.Context) (int, bool) {
	switch val := ctx.Value(passKey).(type) {
	case int:
		return val, val > 0
	case int64:
		return int(val), val > 0
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
