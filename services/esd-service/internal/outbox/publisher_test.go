package outbox

import (
	"context"
	"testing"

	"github.com/sas-esd/esdmail/libs/kafkax"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestMessageCarriesMetaAndTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	msg := Message(context.Background(), Record{
		ID:          7,
		EventID:     "6f1c1f0e-8a3a-4f0e-9d55-0c4f3c1c2b11",
		AggregateID: "order-1",
		EventType:   "esd.serial.payment.status.paid",
		Payload:     []byte(`{}`),
		Traceparent: traceparent,
	})

	assert.Equal(t, "esd.serial.payment.status.paid", msg.Topic)
	assert.Equal(t, []byte("order-1"), msg.Key)
	meta := kafkax.ExtractEventMeta(msg)
	assert.Equal(t, "6f1c1f0e-8a3a-4f0e-9d55-0c4f3c1c2b11", meta.EventID)
	assert.Equal(t, "esd.serial.payment.status.paid", meta.EventType)
	assert.Equal(t, traceparent, kafkax.HeaderValue(msg.Headers, "traceparent"))
}

func TestMessageWithoutTrace(t *testing.T) {
	msg := Message(context.Background(), Record{EventID: "e1", EventType: "t1"})
	assert.Empty(t, kafkax.HeaderValue(msg.Headers, "traceparent"))
	assert.Equal(t, "e1", kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventID))
}
