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

package transition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/waypoint/paramtype"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/urlmatcher"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

func newTestRegistry(t *testing.T) *state.Registry {
	t.Helper()
	reg := state.NewRegistry()
	require.NoError(t, reg.Register(&state.Declaration{Name: "home"}))
	require.NoError(t, reg.Register(&state.Declaration{
		Name: "contacts",
		Params: map[string]state.ParamDecl{
			"id": {Param: urlmatcher.Param{Name: "id", Type: paramtype.NewRegistry().MustGet(paramtype.String)}},
		},
	}))
	require.NoError(t, reg.Register(&state.Declaration{Name: "contacts.detail"}))
	return reg
}

func target(name string, params map[string]any) *TargetState {
	return NewTargetState(name, params, Options{})
}

func TestTransitionHappyPathRunsPhasesInOrder(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()

	var order []string
	record := func(name string) HookFn {
		return func(tr *Transition) (any, error) {
			order = append(order, name)
			return nil, nil
		}
	}
	hooks.On(OnBefore, Criteria{}, record("before"), HookOptions{})
	hooks.On(OnStart, Criteria{}, record("start"), HookOptions{})
	hooks.OnState(OnEnter, Criteria{}, func(tr *Transition, s *state.State) (any, error) {
		order = append(order, "enter:"+s.Name)
		return nil, nil
	}, HookOptions{})
	hooks.On(OnFinish, Criteria{}, record("finish"), HookOptions{})
	hooks.On(OnSuccess, Criteria{}, record("success"), HookOptions{})

	tr, err := New(reg, hooks, nil, target("home", nil))
	require.NoError(t, err)
	rej := tr.Run(context.Background())
	require.Nil(t, rej)

	assert.Equal(t, []string{"before", "start", "enter:home", "finish", "success"}, order)
}

func TestTransitionAbortedHookRejectsAndStopsPipeline(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()

	entered := false
	hooks.On(OnBefore, Criteria{}, func(tr *Transition) (any, error) { return false, nil }, HookOptions{})
	hooks.OnState(OnEnter, Criteria{}, func(tr *Transition, s *state.State) (any, error) {
		entered = true
		return nil, nil
	}, HookOptions{})

	tr, err := New(reg, hooks, nil, target("home", nil))
	require.NoError(t, err)
	rej := tr.Run(context.Background())
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Aborted, rej.Type)
	assert.False(t, entered, "onEnter must not fire once onBefore aborts")
}

func TestTransitionRedirectFromHookIsSuperseded(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()

	hooks.On(OnBefore, Criteria{}, func(tr *Transition) (any, error) {
		return target("contacts", nil), nil
	}, HookOptions{})

	tr, err := New(reg, hooks, nil, target("home", nil))
	require.NoError(t, err)
	rej := tr.Run(context.Background())
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Superseded, rej.Type)
	redirected, ok := rej.RedirectTo.(*TargetState)
	require.True(t, ok)
	assert.Equal(t, "contacts", redirected.Name)
}

func TestTransitionInvalidTargetRejectsImmediately(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()

	tr, err := New(reg, hooks, nil, target("nonexistent", nil))
	require.NoError(t, err)
	rej := tr.Run(context.Background())
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Invalid, rej.Type)
}

func TestTransitionHookErrorProducesErroredRejection(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()
	hooks.On(OnStart, Criteria{}, func(tr *Transition) (any, error) {
		return nil, assert.AnError
	}, HookOptions{})

	tr, err := New(reg, hooks, nil, target("home", nil))
	require.NoError(t, err)
	rej := tr.Run(context.Background())
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Errored, rej.Type)
	assert.ErrorIs(t, rej.Detail.(error), assert.AnError)
}

func TestTransitionIgnoredWhenTargetEqualsCurrent(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()

	first, err := New(reg, hooks, nil, target("home", nil))
	require.NoError(t, err)
	require.Nil(t, first.Run(context.Background()))

	second, err := New(reg, hooks, first.To, target("home", nil))
	require.NoError(t, err)
	rej := second.Run(context.Background())
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Ignored, rej.Type)
}

func TestTransitionReloadBypassesIgnored(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()

	first, err := New(reg, hooks, nil, target("home", nil))
	require.NoError(t, err)
	require.Nil(t, first.Run(context.Background()))

	second, err := New(reg, hooks, first.To, NewTargetState("home", nil, Options{Reload: true}))
	require.NoError(t, err)
	rej := second.Run(context.Background())
	assert.Nil(t, rej)
}

func TestDynamicParamChangeSkipsExitEnter(t *testing.T) {
	reg := state.NewRegistry()
	reg.Register(&state.Declaration{Name: "home"})
	require.NoError(t, reg.Register(&state.Declaration{
		Name: "contacts",
		Params: map[string]state.ParamDecl{
			"page": {
				Param:   urlmatcher.Param{Name: "page", Type: paramtype.NewRegistry().MustGet(paramtype.String)},
				Dynamic: true,
			},
		},
	}))
	hooks := NewRegistry()

	var retained, exited, entered bool
	hooks.OnState(OnRetain, Criteria{}, func(tr *Transition, s *state.State) (any, error) {
		retained = true
		return nil, nil
	}, HookOptions{})
	hooks.OnState(OnExit, Criteria{}, func(tr *Transition, s *state.State) (any, error) {
		exited = true
		return nil, nil
	}, HookOptions{})
	hooks.OnState(OnEnter, Criteria{}, func(tr *Transition, s *state.State) (any, error) {
		entered = true
		return nil, nil
	}, HookOptions{})

	first, err := New(reg, hooks, nil, target("contacts", map[string]any{"page": "1"}))
	require.NoError(t, err)
	require.Nil(t, first.Run(context.Background()))
	retained, exited, entered = false, false, false

	second, err := New(reg, hooks, first.To, target("contacts", map[string]any{"page": "2"}))
	require.NoError(t, err)
	assert.True(t, second.Dynamic)
	rej := second.Run(context.Background())
	require.Nil(t, rej)
	assert.True(t, retained)
	assert.False(t, exited)
	assert.False(t, entered)
}

func TestTooManyRedirectsFails(t *testing.T) {
	reg := newTestRegistry(t)
	hooks := NewRegistry()
	hooks.On(OnBefore, Criteria{}, func(tr *Transition) (any, error) {
		if tr.Target.Name == "home" {
			return target("contacts", nil), nil
		}
		return target("home", nil), nil
	}, HookOptions{})

	svc := NewService(reg)
	svc.Hooks = hooks
	_, rej := svc.Go(context.Background(), target("home", nil))
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Errored, rej.Type)
	assert.Contains(t, rej.Message, "redirects")
}

func TestStateRedirectToIsFollowed(t *testing.T) {
	reg := state.NewRegistry()
	require.NoError(t, reg.Register(&state.Declaration{Name: "home"}))
	require.NoError(t, reg.Register(&state.Declaration{
		Name:       "old",
		RedirectTo: target("home", nil),
	}))
	hooks := NewRegistry()

	tr, err := New(reg, hooks, nil, target("old", nil))
	require.NoError(t, err)
	rej := tr.Run(context.Background())
	require.NotNil(t, rej)
	assert.Equal(t, waypointerr.Superseded, rej.Type)
}
