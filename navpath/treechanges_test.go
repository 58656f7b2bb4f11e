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

package navpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/waypoint/paramtype"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/urlmatcher"
)

func buildStates(t *testing.T) (a, ab, abc *state.State) {
	t.Helper()
	reg := state.NewRegistry()
	require.NoError(t, reg.Register(&state.Declaration{Name: "a"}))
	require.NoError(t, reg.Register(&state.Declaration{
		Name: "a.b",
		Params: map[string]state.ParamDecl{
			"id": {Param: urlmatcher.Param{Name: "id", Type: paramtype.NewRegistry().MustGet(paramtype.String)}},
		},
	}))
	require.NoError(t, reg.Register(&state.Declaration{Name: "a.b.c"}))
	sa, _ := reg.Get("a")
	sab, _ := reg.Get("a.b")
	sabc, _ := reg.Get("a.b.c")
	return sa, sab, sabc
}

func node(s *state.State, params map[string]any) *PathNode {
	return &PathNode{State: s, Params: params}
}

func TestDiffKeepsCommonPrefix(t *testing.T) {
	a, ab, abc := buildStates(t)

	from := Path{node(a, nil), node(ab, map[string]any{"id": "1"}), node(abc, nil)}
	to := Path{node(a, nil), node(ab, map[string]any{"id": "1"}), node(abc, nil)}

	changes := Diff(from, to)
	assert.Len(t, changes.Kept, 3)
	assert.Empty(t, changes.Entering)
	assert.Empty(t, changes.Exiting)
}

func TestDiffParamChangeBreaksKept(t *testing.T) {
	a, ab, abc := buildStates(t)

	from := Path{node(a, nil), node(ab, map[string]any{"id": "1"}), node(abc, nil)}
	to := Path{node(a, nil), node(ab, map[string]any{"id": "2"}), node(abc, nil)}

	changes := Diff(from, to)
	assert.Len(t, changes.Kept, 1, "only the root-ish 'a' node matches; a.b's param changed")
	require.Len(t, changes.Exiting, 2)
	assert.Equal(t, abc.Name, changes.Exiting[0].State.Name, "exiting is deepest-first")
	assert.Equal(t, ab.Name, changes.Exiting[1].State.Name)
	require.Len(t, changes.Entering, 2)
	assert.Equal(t, ab.Name, changes.Entering[0].State.Name, "entering is shallowest-first")
	assert.Equal(t, abc.Name, changes.Entering[1].State.Name)
}

func TestFullyEqualDetectsNoOpVsDynamicChange(t *testing.T) {
	a, ab, abc := buildStates(t)

	from := Path{node(a, nil), node(ab, map[string]any{"id": "1"}), node(abc, nil)}
	sameParams := Path{node(a, nil), node(ab, map[string]any{"id": "1"}), node(abc, nil)}
	assert.True(t, SameChain(from, sameParams))
	assert.True(t, FullyEqual(from, sameParams))

	changedParams := Path{node(a, nil), node(ab, map[string]any{"id": "2"}), node(abc, nil)}
	assert.True(t, SameChain(from, changedParams), "same states visited, only a param value differs")
	assert.False(t, FullyEqual(from, changedParams))
}

func TestDiffDifferentLeafState(t *testing.T) {
	a, ab, abc := buildStates(t)

	from := Path{node(a, nil), node(ab, map[string]any{"id": "1"})}
	to := Path{node(a, nil), node(ab, map[string]any{"id": "1"}), node(abc, nil)}

	changes := Diff(from, to)
	assert.Len(t, changes.Kept, 2)
	assert.Empty(t, changes.Exiting)
	require.Len(t, changes.Entering, 1)
	assert.Equal(t, abc.Name, changes.Entering[0].State.Name)
}
