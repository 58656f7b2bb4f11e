// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wptrace is the tracing side of the ambient stack: a
// functional-options wrapper over an OpenTelemetry TracerProvider that
// opens one span per Transition with a child span per phase, the way
// the teacher's tracing package opens one span per HTTP request with
// child spans per middleware stage.
package wptrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps a configured trace.Tracer plus the sampling/resource
// options every Transition span derives its attributes from.
type Tracer struct {
	tracer trace.Tracer

	provider       *sdktrace.TracerProvider
	customProvider bool
}

// Option configures a Tracer at construction time.
type Option func(*config)

type config struct {
	tracerProvider trace.TracerProvider
	customProvider bool
	sampleRatio    float64
}

func defaultConfig() *config {
	return &config{sampleRatio: 1.0}
}

// WithTracerProvider installs a caller-constructed TracerProvider,
// skipping the built-in ratio-based sampler entirely.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = provider; c.customProvider = true }
}

// WithSampleRatio sets the built-in TracerProvider's sampling ratio
// (default 1.0, ignored when WithTracerProvider is used).
func WithSampleRatio(ratio float64) Option {
	return func(c *config) { c.sampleRatio = ratio }
}

// New builds a Tracer. Absent WithTracerProvider, it constructs an
// in-process sdktrace.TracerProvider with a ratio-based sampler and no
// exporter wired (a host adds one via WithTracerProvider if spans need
// to leave the process).
func New(opts ...Option) *Tracer {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	t := &Tracer{}
	if c.customProvider {
		t.tracer = c.tracerProvider.Tracer("rivaas.dev/waypoint")
		t.customProvider = true
		return t
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(c.sampleRatio)),
	)
	t.tracer = t.provider.Tracer("rivaas.dev/waypoint")
	return t
}

// StartTransition opens the root span for one Transition, tagged with
// its correlation id and from/to state names.
func (t *Tracer) StartTransition(ctx context.Context, correlationID, from, to string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "waypoint.transition",
		trace.WithAttributes(
			attribute.String("correlation_id", correlationID),
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

// StartPhase opens a child span for one lifecycle phase (onBefore,
// onEnter, etc.) of the transition tracked by ctx.
func (t *Tracer) StartPhase(ctx context.Context, phase string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "waypoint.transition.phase", trace.WithAttributes(attribute.String("phase", phase)))
}

// EndRejected marks span as failed with rejType/detail and ends it.
func EndRejected(span trace.Span, rejType string, detail error) {
	span.SetAttributes(attribute.String("rejection", rejType))
	if detail != nil {
		span.RecordError(detail)
	}
	span.SetStatus(codes.Error, rejType)
	span.End()
}

// EndOK marks span as successful and ends it.
func EndOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
	span.End()
}

// Shutdown flushes and releases the built-in TracerProvider, a no-op
// when a custom provider was supplied (the caller owns its lifecycle).
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
