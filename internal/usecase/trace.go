package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	usecaseTracer   = otel.Tracer("socli/internal/usecase")
	usecaseNoopSpan = trace.SpanFromContext(context.Background())
)

// startIntentSpan opens the root span for one orchestrated intent. Everything
// the intent calls, provider requests and store queries included, hangs off it.
func startIntentSpan(ctx context.Context, intent Intent) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("intent.id", intent.ID),
		attribute.String("intent.kind", string(intent.Kind)),
	}
	if intent.Slug != "" {
		attrs = append(attrs, attribute.String("player.slug", intent.Slug))
	}
	if len(intent.Slugs) > 0 {
		attrs = append(attrs, attribute.Int("player.count", len(intent.Slugs)))
	}
	return usecaseTracer.Start(ctx, "usecase.Orchestrator."+string(intent.Kind),
		trace.WithNewRoot(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// startUsecaseSpan opens a child span. Without a valid parent it returns a
// no-op span and leaves ctx untouched.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if name == "" || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name)
}
