package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("quietseed/service")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err (if any) and closes the span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// MutationRecorder counts successful content writes.
type MutationRecorder interface {
	RecordMutation(entity, action string)
}

type noopRecorder struct{}

func (noopRecorder) RecordMutation(string, string) {}

func recorderOrNoop(r MutationRecorder) MutationRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
