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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/waypoint/paramtype"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/transition"
	"github.com/rivaas-dev/waypoint/urlmatcher"
	"github.com/rivaas-dev/waypoint/waypointerr"
	"github.com/rivaas-dev/waypoint/wplog"
	"github.com/rivaas-dev/waypoint/wpmetrics"
	"github.com/rivaas-dev/waypoint/wptrace"
)

func newTestRouter(t *testing.T, opts ...Option) *Router {
	t.Helper()
	r := New(opts...)
	require.NoError(t, r.Register(&state.Declaration{Name: "home", URL: "/home"}))
	require.NoError(t, r.Register(&state.Declaration{Name: "contacts", URL: "/contacts"}))
	require.NoError(t, r.Register(&state.Declaration{
		Name: "contacts.detail",
		URL:  "/:id",
		Params: map[string]state.ParamDecl{
			"id": {Param: urlmatcher.Param{Name: "id", Type: paramtype.NewRegistry().MustGet(paramtype.String)}},
		},
	}))
	return r
}

func TestRouterGoNavigatesAndUpdatesGlobals(t *testing.T) {
	r := newTestRouter(t)

	tr, rej := r.States.Go(context.Background(), "home", nil, transition.Options{})
	require.Nil(t, rej)
	require.NotNil(t, tr)

	assert.Equal(t, "home", r.States.Current().Leaf().StateName())
	assert.Len(t, r.Globals.History(), 1)
}

func TestRouterGoWithParamsAndURLWriteBack(t *testing.T) {
	r := newTestRouter(t)

	_, rej := r.States.Go(context.Background(), "contacts.detail", map[string]any{"id": "42"}, transition.Options{})
	require.Nil(t, rej)

	assert.Equal(t, "42", r.States.Params()["id"])
	assert.True(t, strings.HasSuffix(r.URL.Path(), "/contacts/42"))
}

func TestRouterDisposeRejectsPendingWithDisposedReason(t *testing.T) {
	r := newTestRouter(t)

	hooks := r.Hooks()
	started := make(chan struct{})
	release := make(chan struct{})
	hooks.On(transition.OnBefore, transition.Criteria{}, func(tr *transition.Transition) (any, error) {
		close(started)
		<-release
		return nil, nil
	}, transition.HookOptions{})

	resultCh := make(chan *waypointerr.Rejection, 1)
	go func() {
		_, rej := r.States.Go(context.Background(), "home", nil, transition.Options{})
		resultCh <- rej
	}()

	<-started
	r.Dispose()
	close(release)

	rej := <-resultCh
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Aborted, rej.Type)
	assert.Contains(t, rej.Message, "disposed")

	_, rej2 := r.States.Go(context.Background(), "contacts", nil, transition.Options{})
	require.NotNil(t, rej2)
	assert.Equal(t, waypointerr.Errored, rej2.Type)
}

func TestRouterDefaultErrorHandlerSkipsBenignRejections(t *testing.T) {
	r := newTestRouter(t)

	var reported []waypointerr.RejectionType
	r.States.DefaultErrorHandler(func(rej *waypointerr.Rejection) {
		reported = append(reported, rej.Type)
	})

	_, rej := r.States.Go(context.Background(), "missing-state", nil, transition.Options{})
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Invalid, rej.Type)
	assert.Equal(t, []waypointerr.RejectionType{waypointerr.Invalid}, reported)

	_, rej = r.States.Go(context.Background(), "home", nil, transition.Options{})
	require.Nil(t, rej)
	_, rej = r.States.Go(context.Background(), "home", nil, transition.Options{})
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Ignored, rej.Type)
	assert.Equal(t, []waypointerr.RejectionType{waypointerr.Invalid}, reported, "IGNORED must not reach the default error handler")
}

func TestRouterWiresLoggerMetricsAndTracingWithoutPanicking(t *testing.T) {
	metrics, err := wpmetrics.New()
	require.NoError(t, err)
	tracer := wptrace.New()
	logger := wplog.New()

	r := newTestRouter(t, WithLogger(logger), WithMetrics(metrics), WithTracing(tracer))

	_, rej := r.States.Go(context.Background(), "home", nil, transition.Options{})
	require.Nil(t, rej)

	assert.NotPanics(t, func() { r.Dispose() })
}
