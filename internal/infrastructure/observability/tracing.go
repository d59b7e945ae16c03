package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "jan-server/assistant-api"
)

// GetTracer returns the tracer for the assistant-api service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ConversationAttributes returns common attributes for conversation spans.
func ConversationAttributes(conversationID, messageID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("conversation.id", conversationID),
		attribute.String("conversation.message_id", messageID),
	}
}

// StartConverseSpan starts a new span for one conversational turn. Mode is
// "text" or "audio".
func StartConverseSpan(ctx context.Context, conversationID, mode string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "chat.converse",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("converse.mode", mode),
		),
	)
	return ctx, span
}

// StartMirrorTaskSpan starts a new span for a mirror task application.
func StartMirrorTaskSpan(ctx context.Context, taskID, kind string, attempts int) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "mirror.apply",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("mirror.task_id", taskID),
			attribute.String("mirror.kind", kind),
			attribute.Int("mirror.attempts", attempts),
		),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error, severity string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.severity", severity))
}
