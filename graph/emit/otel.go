package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns events into OpenTelemetry spans.
//
// Each event becomes a span named after event.Msg, carrying run_id, step,
// node_id and all Meta fields as attributes. If Meta contains an "error"
// key the span status is set to Error.
//
// Setup:
//
//	tracer := otel.Tracer("blogsmith/graph")
//	emitter := emit.NewOTelEmitter(tracer)
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter using the given tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit records the event as a completed span.
func (o *OTelEmitter) Emit(event Event) {
	if o.tracer == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("run_id", event.RunID),
		attribute.Int("step", event.Step),
		attribute.String("node_id", event.NodeID),
	}
	for k, v := range event.Meta {
		attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", v)))
	}

	_, span := o.tracer.Start(context.Background(), event.Msg, trace.WithAttributes(attrs...))
	if errVal, ok := event.Meta["error"]; ok {
		span.SetStatus(codes.Error, fmt.Sprintf("%v", errVal))
	}
	span.End()
}
