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

// Package resolve implements the dependency-injection resolve graph: a
// Resolvable wraps a state.ResolveSpec with cached-value/in-flight/error
// tracking, and a Context walks a path of Resolvable-owning Nodes to
// resolve a target token, deduplicating concurrent requests for the same
// token and detecting dependency cycles.
package resolve

import (
	"sync"

	"github.com/rivaas-dev/waypoint/state"
)

// Resolvable is the runtime counterpart of a state.ResolveSpec: the spec
// plus whatever resolution state (cached value, in-flight promise) has
// accumulated so far. navpath.NewPath builds fresh Resolvables for every
// state of a new Path; transition.New then gives each kept state the
// Resolvables of the previous Path, so they carry over between
// transitions while that state stays active.
type Resolvable struct {
	Token     string
	Deps      []string
	Fn        state.ResolveFn
	Policy    state.ResolvePolicy
	StateName string

	mu       sync.Mutex
	resolved bool
	value    any
	err      error
	inflight chan struct{}
}

// NewResolvable wraps spec as a Resolvable owned by stateName, resolving
// spec's own Policy against defaultPolicy (the owning state's
// ResolvePolicy) when spec didn't set one.
func NewResolvable(spec state.ResolveSpec, stateName string, defaultPolicy state.ResolvePolicy) *Resolvable {
	policy := defaultPolicy
	if spec.Policy != nil {
		policy = *spec.Policy
	}
	return &Resolvable{
		Token:     spec.Token,
		Deps:      spec.Deps,
		Fn:        spec.Fn,
		Policy:    policy,
		StateName: stateName,
	}
}

// Value returns the cached value of a Resolvable that has already
// resolved successfully, for synchronous injector-style access.
func (r *Resolvable) Value() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resolved {
		return nil, false
	}
	return r.value, true
}
