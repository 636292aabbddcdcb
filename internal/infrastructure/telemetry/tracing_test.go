package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "checkout.submit",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, int64(7)),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "checkout.submit", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, int64(7), attrMap(spans[0].Attributes())["user_id"].AsInt64())
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "admin_product", "create")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "admin_product.create", sr.Ended()[0].Name())
}

func TestSetAttributes_SkipsNonStringKeys(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, int64(12),
		42, "ignored",
		telemetry.SpanAttrOrderStatus, "APPROVED",
		"dangling",
	)
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Len(t, attrs, 2)
	assert.Equal(t, int64(12), attrs["order_id"].AsInt64())
	assert.Equal(t, "APPROVED", attrs["order_status"].AsString())
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, errors.New("payment rejected"))
	telemetry.RecordError(span, nil)
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "payment rejected", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
}

func TestAddEvent_PaymentRecorded(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "checkout", "place_order")
	telemetry.AddEvent(span, telemetry.EventPaymentRecorded,
		telemetry.SpanAttrPaymentID, int64(55),
		telemetry.SpanAttrTransactionID, "TXN-1")
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payment_recorded", events[0].Name)
	attrs := attrMap(events[0].Attributes)
	assert.Equal(t, int64(55), attrs["payment_id"].AsInt64())
	assert.Equal(t, "TXN-1", attrs["transaction_id"].AsString())
}

func TestMarkRejected_LeavesStatusUnset(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "checkout", "place_order")
	telemetry.MarkRejected(span, "Your cart is empty")
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Unset, ended.Status().Code)
	attrs := attrMap(ended.Attributes())
	assert.True(t, attrs["rejected"].AsBool())
	assert.Equal(t, "Your cart is empty", attrs["reject_reason"].AsString())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.AddEvent(nil, "e")
		telemetry.MarkRejected(nil, "r")
	})
}
