package observability

import (
	"context"
	"time"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/aretw0/statemap"

// Converter decorates a ports.Converter with spans and metrics.
type Converter struct {
	next    ports.Converter
	tracer  trace.Tracer
	metrics *Metrics
}

// Option configures a Converter.
type Option func(*Converter)

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Converter) {
		c.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMetrics records every operation into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// NewConverter wraps next.
func NewConverter(next ports.Converter, opts ...Option) *Converter {
	c := &Converter{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Converter) Project(ctx context.Context, g ports.GraphView) *domain.Document {
	ctx, span := c.tracer.Start(ctx, "statemap.project", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	start := time.Now()
	doc := c.next.Project(ctx, g)

	result := "document"
	if doc == nil {
		result = "absent"
		span.AddEvent("no entry point")
	} else {
		span.SetAttributes(entityAttributes(doc)...)
	}
	span.SetAttributes(attribute.String("statemap.result", result))
	span.SetStatus(codes.Ok, "")

	if c.metrics != nil {
		c.metrics.observe("project", result, time.Since(start))
	}
	return doc
}

func (c *Converter) Hydrate(ctx context.Context, doc *domain.Document) (*domain.Graph, error) {
	ctx, span := c.tracer.Start(ctx, "statemap.hydrate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	start := time.Now()
	g, err := c.next.Hydrate(ctx, doc)

	result := "ok"
	if err != nil {
		result = "rejected"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if c.metrics != nil {
			c.metrics.observeErrors(schema.ValidationErrors(err))
		}
	} else {
		span.SetAttributes(
			attribute.Int("statemap.nodes", g.Len()),
			attribute.Int("statemap.links", len(g.Links())),
		)
		span.SetStatus(codes.Ok, "")
	}

	if c.metrics != nil {
		c.metrics.observe("hydrate", result, time.Since(start))
	}
	return g, err
}

func (c *Converter) Validate(ctx context.Context, doc *domain.Document) []error {
	ctx, span := c.tracer.Start(ctx, "statemap.validate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	start := time.Now()
	errs := c.next.Validate(ctx, doc)

	span.SetAttributes(attribute.Int("statemap.errors", len(errs)))
	for _, err := range errs {
		span.AddEvent("validation error", trace.WithAttributes(
			attribute.String("kind", ErrorKind(err)),
			attribute.String("message", err.Error()),
		))
	}
	span.SetStatus(codes.Ok, "")

	if c.metrics != nil {
		result := "valid"
		if len(errs) > 0 {
			result = "invalid"
		}
		c.metrics.observe("validate", result, time.Since(start))
		c.metrics.observeErrors(errs)
	}
	return errs
}

func entityAttributes(doc *domain.Document) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("statemap.states", len(doc.States)),
		attribute.Int("statemap.decisions", len(doc.Decisions)),
		attribute.Int("statemap.super_states", len(doc.SuperStates)),
	}
}
