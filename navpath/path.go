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

// Package navpath builds the ordered PathNode sequences a Transition
// compares: a Path pairs each State on the route from the implicit root
// to the target leaf with its resolved parameter values and Resolvables,
// and TreeChanges diffs two Paths into kept/entering/exiting/retained
// slices.
package navpath

import (
	"github.com/rivaas-dev/waypoint/resolve"
	"github.com/rivaas-dev/waypoint/state"
)

// PathNode pairs a State with the parameter values resolved for it on
// one particular Path, plus its own Resolvables. It implements
// resolve.Node so a Path can be wrapped directly in a resolve.Context.
type PathNode struct {
	State    *state.State
	Params   map[string]any
	Resolves []*resolve.Resolvable
}

// StateName implements resolve.Node.
func (n *PathNode) StateName() string { return n.State.Name }

// Resolvables implements resolve.Node.
func (n *PathNode) Resolvables() []*resolve.Resolvable { return n.Resolves }

// Path is an ordered sequence of PathNodes rooted at the implicit root
// state (Path[0].State.IsRoot()) through a target leaf
// (Path[len(Path)-1]).
type Path []*PathNode

// Nodes adapts p for use as a resolve.Context's node list.
func (p Path) Nodes() []resolve.Node {
	out := make([]resolve.Node, len(p))
	for i, n := range p {
		out[i] = n
	}
	return out
}

// Leaf returns the last node in p, or nil if p is empty.
func (p Path) Leaf() *PathNode {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// NewPath builds a Path for target (and its ancestors, via
// target.Path) with the given resolved params. paramsByState supplies
// each state's own param values by name; Resolvables are built fresh
// from each state's declared ResolveSpecs.
func NewPath(target *state.State, paramsByState map[string]map[string]any) Path {
	chain := append(append([]*state.State{}, target.Path...), target)
	path := make(Path, len(chain))
	for i, s := range chain {
		resolvables := make([]*resolve.Resolvable, len(s.Resolve))
		for j, spec := range s.Resolve {
			resolvables[j] = resolve.NewResolvable(spec, s.Name, s.ResolvePolicy)
		}
		path[i] = &PathNode{State: s, Params: paramsByState[s.Name], Resolves: resolvables}
	}
	return path
}
