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
	"sync"

	"github.com/rivaas-dev/waypoint/navpath"
	"github.com/rivaas-dev/waypoint/transition"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// Globals replaces the source library's process-wide mutable globals
// object (spec §9's "Global mutable current") with state owned by one
// Router instance. Hooks never reach it directly; they read it off the
// Transition they are given, or a host reads it off the Router.
//
// Current/Params/Pending delegate straight to the transition.Service,
// which is the single writer of that state; Globals only adds the
// bounded transition History the Service itself has no opinion on.
type Globals struct {
	svc *transition.Service

	mu           sync.Mutex
	history      []*transition.Transition
	historyLimit int
}

func newGlobals(svc *transition.Service, historyLimit int) *Globals {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	g := &Globals{svc: svc, historyLimit: historyLimit}
	svc.Settled = g.onSettled
	return g
}

// Current returns the Path of the last successfully completed
// Transition.
func (g *Globals) Current() navpath.Path { return g.svc.Current() }

// Params returns the flat parameter map of the current Path's leaf
// state, or nil before any Transition has succeeded.
func (g *Globals) Params() map[string]any {
	leaf := g.Current().Leaf()
	if leaf == nil {
		return nil
	}
	return leaf.Params
}

// Pending returns the currently in-flight Transition, or nil if none.
func (g *Globals) Pending() *transition.Transition { return g.svc.Pending() }

// History returns a snapshot of the bounded ring of past Transitions,
// oldest first, for diagnostics and tests; it is never consulted by the
// pipeline itself.
func (g *Globals) History() []*transition.Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*transition.Transition, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Globals) onSettled(tr *transition.Transition, _ *waypointerr.Rejection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, tr)
	if len(g.history) > g.historyLimit {
		g.history = g.history[len(g.history)-g.historyLimit:]
	}
}
