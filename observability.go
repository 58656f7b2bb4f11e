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

package waypoint

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/rivaas-dev/waypoint/navpath"
	"github.com/rivaas-dev/waypoint/transition"
	"github.com/rivaas-dev/waypoint/waypointerr"
	"github.com/rivaas-dev/waypoint/wplog"
	"github.com/rivaas-dev/waypoint/wpmetrics"
	"github.com/rivaas-dev/waypoint/wptrace"
)

// observability fans Service.Started/Settled out to whichever of the
// three ambient-stack packages a host wired in with WithLogger/
// WithMetrics/WithTracing. Any of the three may be nil; every method
// below tolerates that (the wrapped packages' own nil-receiver methods
// are no-ops).
type observability struct {
	log     *wplog.Logger
	metrics *wpmetrics.Recorder
	tracer  *wptrace.Tracer

	mu     sync.Mutex
	starts map[int64]time.Time
	spans  map[int64]trace.Span
}

func newObservability(log *wplog.Logger, metrics *wpmetrics.Recorder, tracer *wptrace.Tracer) *observability {
	if log == nil && metrics == nil && tracer == nil {
		return nil
	}
	return &observability{
		log:     log,
		metrics: metrics,
		tracer:  tracer,
		starts:  make(map[int64]time.Time),
		spans:   make(map[int64]trace.Span),
	}
}

func (o *observability) onStarted(tr *transition.Transition) {
	if o == nil {
		return
	}
	from, to := pathLeafName(tr.From), pathLeafName(tr.To)

	o.mu.Lock()
	o.starts[tr.ID] = time.Now()
	o.mu.Unlock()

	if o.tracer != nil {
		_, span := o.tracer.StartTransition(context.Background(), tr.CorrelationID.String(), from, to)
		o.mu.Lock()
		o.spans[tr.ID] = span
		o.mu.Unlock()
	}
	if o.log != nil {
		o.log.LogPhase(context.Background(), "onStart", tr.CorrelationID.String(), from, to)
	}
}

func (o *observability) onSettled(tr *transition.Transition, rej *waypointerr.Rejection) {
	if o == nil {
		return
	}
	from, to := pathLeafName(tr.From), pathLeafName(tr.To)

	o.mu.Lock()
	start, hadStart := o.starts[tr.ID]
	delete(o.starts, tr.ID)
	span, hadSpan := o.spans[tr.ID]
	delete(o.spans, tr.ID)
	o.mu.Unlock()

	var rejType string
	var detail error
	if rej != nil {
		rejType = rej.Type.String()
		if err, ok := rej.Detail.(error); ok {
			detail = err
		}
	}

	if o.metrics != nil {
		var seconds float64
		if hadStart {
			seconds = time.Since(start).Seconds()
		}
		o.metrics.RecordTransition(context.Background(), seconds, rejType)
	}
	if o.log != nil {
		if rej == nil {
			o.log.LogPhase(context.Background(), "onSuccess", tr.CorrelationID.String(), from, to)
		} else {
			o.log.LogRejection(context.Background(), rejType, tr.CorrelationID.String(), from, to)
		}
	}
	if hadSpan {
		if rej == nil {
			wptrace.EndOK(span)
		} else {
			wptrace.EndRejected(span, rejType, detail)
		}
	}
}

func pathLeafName(p navpath.Path) string {
	leaf := p.Leaf()
	if leaf == nil {
		return ""
	}
	return leaf.StateName()
}
