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

package resolve

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// testNode is a minimal Node implementation for exercising Context
// without depending on package navpath.
type testNode struct {
	name string
	rs   []*Resolvable
}

func (n *testNode) StateName() string          { return n.name }
func (n *testNode) Resolvables() []*Resolvable { return n.rs }

func TestGetWalksLeafToRoot(t *testing.T) {
	root := &Resolvable{Token: "user", Fn: func([]any) (any, error) { return "root-user", nil }}
	leaf := &Resolvable{Token: "user", Fn: func([]any) (any, error) { return "leaf-user", nil }}

	ctx := NewContext([]Node{
		&testNode{name: "a", rs: []*Resolvable{root}},
		&testNode{name: "a.b", rs: []*Resolvable{leaf}},
	})

	r, ok := ctx.Get("user")
	require.True(t, ok)
	assert.Same(t, leaf, r, "the nearer (leaf) resolvable must shadow the ancestor's")
}

func TestResolvePathResolvesDependenciesFirst(t *testing.T) {
	tenant := &Resolvable{Token: "tenant", Fn: func([]any) (any, error) { return "acme", nil }}
	user := &Resolvable{
		Token: "user", Deps: []string{"tenant"},
		Fn: func(deps []any) (any, error) { return "user-of-" + deps[0].(string), nil },
	}

	ctx := NewContext([]Node{&testNode{name: "a", rs: []*Resolvable{tenant, user}}})
	require.NoError(t, ctx.ResolvePath(nil))

	v, ok := ctx.Value("user")
	require.True(t, ok)
	assert.Equal(t, "user-of-acme", v)
}

func TestResolveDeduplicatesConcurrentRequests(t *testing.T) {
	var calls int32
	shared := &Resolvable{Token: "shared", Fn: func([]any) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}}
	a := &Resolvable{Token: "a", Deps: []string{"shared"}, Fn: func(deps []any) (any, error) { return deps[0], nil }}
	b := &Resolvable{Token: "b", Deps: []string{"shared"}, Fn: func(deps []any) (any, error) { return deps[0], nil }}

	ctx := NewContext([]Node{&testNode{name: "x", rs: []*Resolvable{shared, a, b}}})
	require.NoError(t, ctx.ResolvePath(nil))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "shared dependency must resolve exactly once")
}

func TestCyclicResolveDetected(t *testing.T) {
	var a, b *Resolvable
	a = &Resolvable{Token: "a", Deps: []string{"b"}, Fn: func([]any) (any, error) { return nil, nil }}
	b = &Resolvable{Token: "b", Deps: []string{"a"}, Fn: func([]any) (any, error) { return nil, nil }}

	ctx := NewContext([]Node{&testNode{name: "x", rs: []*Resolvable{a, b}}})
	err := ctx.ResolvePath(nil)
	require.Error(t, err)
	var cyc *waypointerr.CyclicResolveError
	assert.ErrorAs(t, err, &cyc)
}

func TestFailedResolveCanBeRetried(t *testing.T) {
	attempt := 0
	flaky := &Resolvable{Token: "flaky", Fn: func([]any) (any, error) {
		attempt++
		if attempt == 1 {
			return nil, assert.AnError
		}
		return "ok", nil
	}}
	ctx := NewContext([]Node{&testNode{name: "x", rs: []*Resolvable{flaky}}})

	err := ctx.ResolvePath(nil)
	assert.Error(t, err)

	err = ctx.ResolvePath(nil)
	require.NoError(t, err)
	v, _ := ctx.Value("flaky")
	assert.Equal(t, "ok", v)
}

func TestEagernessFilter(t *testing.T) {
	eager := &Resolvable{Token: "eager", Policy: state.ResolvePolicy{When: state.Eager}, Fn: func([]any) (any, error) { return "e", nil }}
	lazy := &Resolvable{Token: "lazy", Policy: state.ResolvePolicy{When: state.Lazy}, Fn: func([]any) (any, error) { return "l", nil }}

	ctx := NewContext([]Node{&testNode{name: "x", rs: []*Resolvable{eager, lazy}}})
	eagerOnly := state.Eager
	require.NoError(t, ctx.ResolvePath(&eagerOnly))

	_, ok := ctx.Value("eager")
	assert.True(t, ok)
	_, ok = ctx.Value("lazy")
	assert.False(t, ok, "lazy resolvable should not resolve under an eager-only filter")
}
