package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for storefront spans
const TracerName = "retail-storefront"

// Span attribute keys
const (
	SpanAttrUserID        = "user_id"
	SpanAttrOrderID       = "order_id"
	SpanAttrOrderStatus   = "order_status"
	SpanAttrProductID     = "product_id"
	SpanAttrQuantity      = "quantity"
	SpanAttrPaymentMethod = "payment_method"
	SpanAttrPaymentID     = "payment_id"
	SpanAttrTransactionID = "transaction_id"
	SpanAttrAmount        = "amount"
	SpanAttrBackendRoute  = "backend.route"
	SpanAttrAction        = "action"
	SpanAttrRejected      = "rejected"
	SpanAttrRejectReason  = "reject_reason"
)

// Span event names
const (
	EventPaymentRecorded  = "payment_recorded"
	EventPostActionFailed = "post_action_failed"
)

// SpanOption configures a span at start
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithAttribute sets an attribute when the span starts
func WithAttribute(key string, value any) SpanOption {
	return func(c *spanConfig) {
		c.attrs = append(c.attrs, attr(key, value))
	}
}

// WithSpanKind overrides the default internal span kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) {
		c.kind = kind
	}
}

// StartSpan starts a span on the storefront tracer. The caller ends it.
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	cfg := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(cfg.kind),
		trace.WithAttributes(cfg.attrs...),
	)
}

// StartServiceSpan starts a span named service.method
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttributes sets alternating key/value attributes on span
func SetAttributes(span trace.Span, kv ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs(kv)...)
}

// AddEvent records a named event with alternating key/value attributes
func AddEvent(span trace.Span, name string, kv ...any) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs(kv)...))
}

// RecordError marks span failed with err
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// MarkRejected tags a span whose request was refused before any backend
// write. The span status stays unset: a refusal is not a server fault.
func MarkRejected(span trace.Span, reason string) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool(SpanAttrRejected, true),
		attribute.String(SpanAttrRejectReason, reason),
	)
}

func attrs(kv []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			out = append(out, attr(key, kv[i+1]))
		}
	}
	return out
}

func attr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
