package server

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("krypt.co/rpcgate/server")

var installProviderOnce sync.Once

// installTracerProvider registers a real SDK TracerProvider in place of
// otel's default no-op, the first time a Server is built by New. Nothing here
// configures an exporter: spans are still sampled and recorded, and any
// SpanProcessor registered later against this provider sees them.
func installTracerProvider() {
	installProviderOnce.Do(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
	})
}

// startInvocationSpan opens the top-level span for one request, tagged
// with the connection's correlation ID; the target class and method are
// not recorded on it. Parse and Invoke each get their own child span.
func startInvocationSpan(ctx context.Context, correlationID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "rpcgate.request", trace.WithAttributes(
		attribute.String("rpcgate.correlation_id", correlationID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func childSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
