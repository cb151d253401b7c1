package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

// Logger is a thin structured-logging port; vendors stay hidden behind it.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type Counter interface {
	Add(delta float64, labels ...Label)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
}

// Metrics creates (or returns already-registered) named instruments.
type Metrics interface {
	Counter(name, help string, labelKeys ...string) Counter
	Histogram(name, help string, buckets []float64, labelKeys ...string) Histogram
}

// Tracer starts spans without binding callers to a concrete provider.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// Observability bundles the three ports handed to services via DI.
type Observability interface {
	Logger() Logger
	Metrics() Metrics
	Tracer() Tracer
}

type bundle struct {
	log Logger
	met Metrics
	tr  Tracer
}

func (b bundle) Logger() Logger   { return b.log }
func (b bundle) Metrics() Metrics { return b.met }
func (b bundle) Tracer() Tracer   { return b.tr }

// New builds an Observability bundle; nil components fall back to no-ops.
func New(log Logger, met Metrics, tr Tracer) Observability {
	if log == nil {
		log = NopLogger()
	}
	if met == nil {
		met = NopMetrics()
	}
	if tr == nil {
		tr = NopTracer()
	}
	return bundle{log: log, met: met, tr: tr}
}

// Nop returns a bundle that discards everything; safe default for tests.
func Nop() Observability { return New(nil, nil, nil) }
