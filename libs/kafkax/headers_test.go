package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	meta := ExtractEventMeta(kafka.Message{
		Topic: "esd.serial.payment.status.paid",
		Key:   []byte("order-1"),
	})
	assert.Equal(t, EventMeta{EventID: "order-1", EventType: "esd.serial.payment.status.paid"}, meta)
}

func TestEventHeadersCarryTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	headers := EventHeaders(ctx, EventMeta{EventID: "evt-1", EventType: "esd.serial.payment.status.paid"})
	msg := kafka.Message{Headers: headers}

	assert.Equal(t, EventMeta{EventID: "evt-1", EventType: "esd.serial.payment.status.paid"}, ExtractEventMeta(msg))
	extracted := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), msg))
	assert.Equal(t, traceID, extracted.TraceID())
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka:9092", "kafka-2:9092"}, SplitBrokers(" kafka:9092, ,kafka-2:9092"))
	assert.Empty(t, SplitBrokers(""))
}
