package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey     contextKey = "match.request.id"
	tenantIDKey      contextKey = "match.tenant.id"
	pipelineStageKey contextKey = "match.pipeline.stage"
)

// WithRequestID adds the request ID to context for observability.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithTenantID adds the requesting tenant ID to context for observability.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// WithPipelineStage adds the pipeline stage to context for observability.
func WithPipelineStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, pipelineStageKey, stage)
}

// ContextHandler copies the pipeline business context (request ID, tenant ID,
// pipeline stage) from the context into every record, so the *Context logging
// variants carry them without each call site repeating the fields.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("request_id", v))
	}
	if v, ok := ctx.Value(tenantIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("tenant_id", v))
	}
	if v, ok := ctx.Value(pipelineStageKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("pipeline_stage", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
