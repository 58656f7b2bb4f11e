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

// Package wpmetrics is the metrics side of the ambient stack: a
// functional-options wrapper over an OpenTelemetry MeterProvider
// (defaulting to an in-process Prometheus exporter) that records
// transition durations/outcomes and resolve cache hit/miss counts,
// the way the teacher's metrics package records HTTP request
// duration/outcome counters.
package wpmetrics

import (
	"context"
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultDurationBuckets are histogram boundaries for transition
// duration in seconds, covering sub-millisecond to 10 second runs.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Recorder holds the instruments every transition phase and resolve
// lookup reports through.
type Recorder struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider

	transitionDuration metric.Float64Histogram
	transitionCount    metric.Int64Counter
	resolveCacheHits   metric.Int64Counter
	resolveCacheMisses metric.Int64Counter

	prometheusRegistry *promclient.Registry
}

// Option configures a Recorder at construction time.
type Option func(*config)

type config struct {
	meterProvider   metric.MeterProvider
	customProvider  bool
	serviceName     string
	durationBuckets []float64
}

func defaultConfig() *config {
	return &config{durationBuckets: DefaultDurationBuckets}
}

// WithMeterProvider installs a caller-constructed MeterProvider,
// skipping the built-in Prometheus exporter entirely.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = provider; c.customProvider = true }
}

// WithServiceName records name in the Recorder's configuration; New does
// not apply it to any instrument or resource.
func WithServiceName(name string) Option { return func(c *config) { c.serviceName = name } }

// WithDurationBuckets overrides the transition-duration histogram
// boundaries (default DefaultDurationBuckets).
func WithDurationBuckets(buckets ...float64) Option {
	return func(c *config) { c.durationBuckets = buckets }
}

// New builds a Recorder. Absent WithMeterProvider, it wires an
// in-process Prometheus exporter on a private registry (never the
// global one, to avoid collisions when multiple Routers share a
// process).
func New(opts ...Option) (*Recorder, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	r := &Recorder{}

	if c.customProvider {
		r.meter = c.meterProvider.Meter("rivaas.dev/waypoint")
	} else {
		r.prometheusRegistry = promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
		if err != nil {
			return nil, fmt.Errorf("wpmetrics: creating prometheus exporter: %w", err)
		}
		r.provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		r.meter = r.provider.Meter("rivaas.dev/waypoint")
	}

	var err error
	r.transitionDuration, err = r.meter.Float64Histogram(
		"waypoint.transition.duration",
		metric.WithDescription("Duration of a Transition from the start of its run to settlement"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(c.durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("wpmetrics: creating transition duration histogram: %w", err)
	}
	r.transitionCount, err = r.meter.Int64Counter(
		"waypoint.transition.count",
		metric.WithDescription("Count of settled Transitions by rejection type (empty = success)"),
	)
	if err != nil {
		return nil, fmt.Errorf("wpmetrics: creating transition count counter: %w", err)
	}
	r.resolveCacheHits, err = r.meter.Int64Counter(
		"waypoint.resolve.cache_hits",
		metric.WithDescription("Count of Resolvable lookups served from an already-resolved value"),
	)
	if err != nil {
		return nil, fmt.Errorf("wpmetrics: creating resolve cache hit counter: %w", err)
	}
	r.resolveCacheMisses, err = r.meter.Int64Counter(
		"waypoint.resolve.cache_misses",
		metric.WithDescription("Count of Resolvable lookups that triggered a fresh resolveFn call"),
	)
	if err != nil {
		return nil, fmt.Errorf("wpmetrics: creating resolve cache miss counter: %w", err)
	}

	return r, nil
}

// PrometheusGatherer returns the private Prometheus registry backing
// this Recorder, or nil if a custom MeterProvider was supplied. A host
// can mount it under its own /metrics handler via promhttp.
func (r *Recorder) PrometheusGatherer() promclient.Gatherer { return r.prometheusRegistry }

// RecordTransition records one settled Transition's duration and
// outcome. rejType is "" for a successful Transition.
func (r *Recorder) RecordTransition(ctx context.Context, durationSeconds float64, rejType string) {
	if r == nil {
		return
	}
	r.transitionDuration.Record(ctx, durationSeconds)
	r.transitionCount.Add(ctx, 1, metric.WithAttributes(rejectionAttr(rejType)))
}

// RecordResolveHit increments the resolve cache hit counter.
func (r *Recorder) RecordResolveHit(ctx context.Context) {
	if r == nil {
		return
	}
	r.resolveCacheHits.Add(ctx, 1)
}

// RecordResolveMiss increments the resolve cache miss counter.
func (r *Recorder) RecordResolveMiss(ctx context.Context) {
	if r == nil {
		return
	}
	r.resolveCacheMisses.Add(ctx, 1)
}

// Shutdown flushes and releases the built-in MeterProvider, a no-op
// when a custom provider was supplied (the caller owns its lifecycle).
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Shutdown(ctx)
}
