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

package wpmetrics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewDefaultsToPrivatePrometheusRegistry(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	require.NotNil(t, r.PrometheusGatherer())

	r.RecordTransition(context.Background(), 0.01, "")
	r.RecordResolveMiss(context.Background())
	r.RecordResolveHit(context.Background())

	families, err := r.PrometheusGatherer().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	var joined strings.Builder
	for _, f := range families {
		joined.WriteString(f.GetName())
		joined.WriteString(" ")
	}
	names := joined.String()
	assert.Contains(t, names, "waypoint_transition_duration")
	assert.Contains(t, names, "waypoint_transition_count")
	assert.Contains(t, names, "waypoint_resolve_cache_hits")
	assert.Contains(t, names, "waypoint_resolve_cache_misses")
}

func TestNilRecorderMethodsAreNoOps(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordTransition(context.Background(), 1, "ERROR")
		r.RecordResolveHit(context.Background())
		r.RecordResolveMiss(context.Background())
		assert.NoError(t, r.Shutdown(context.Background()))
	})
}

func TestShutdownIsNoOpForCustomProvider(t *testing.T) {
	r, err := New(WithMeterProvider(noop.MeterProvider{}))
	require.NoError(t, err)
	assert.Nil(t, r.PrometheusGatherer())
	assert.NoError(t, r.Shutdown(context.Background()))
}

func TestWithDurationBucketsAndServiceNameDoNotError(t *testing.T) {
	_, err := New(WithServiceName("waypoint-test"), WithDurationBuckets(0.01, 0.1, 1))
	require.NoError(t, err)
}
