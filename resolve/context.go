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
	"fmt"
	"sync"

	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// Node is the minimal shape Context needs from a path element. package
// navpath's PathNode implements it; Context itself never imports navpath,
// keeping the dependency order state -> resolve -> navpath acyclic.
type Node interface {
	StateName() string
	Resolvables() []*Resolvable
}

// Context is a slice of Nodes ordered root-to-leaf, matching a State
// path. It resolves resolve tokens against the nearest owning node.
type Context struct {
	nodes []Node

	// OnResolve, if set, is called once per resolveOne invocation with
	// whether the value was already cached (hit) or freshly computed
	// (miss). It exists purely for instrumentation (see package
	// wpmetrics) and is never consulted for control flow.
	OnResolve func(token string, cached bool)
}

// NewContext wraps nodes (root-to-leaf order) as a Context.
func NewContext(nodes []Node) *Context {
	return &Context{nodes: nodes}
}

// Get walks the path leaf-to-root and returns the first Resolvable that
// owns token.
func (c *Context) Get(token string) (*Resolvable, bool) {
	for i := len(c.nodes) - 1; i >= 0; i-- {
		for _, r := range c.nodes[i].Resolvables() {
			if r.Token == token {
				return r, true
			}
		}
	}
	return nil, false
}

// Value returns the already-resolved value of token, for synchronous
// injector-style access. ok is false if token has no owning Resolvable,
// or that Resolvable hasn't resolved yet.
func (c *Context) Value(token string) (any, bool) {
	r, ok := c.Get(token)
	if !ok {
		return nil, false
	}
	return r.Value()
}

// ResolvePath resolves every Resolvable reachable from the path whose
// When policy matches filter (pass nil to resolve everything,
// regardless of eagerness). WAIT and RXWAIT resolvables are awaited;
// NOWAIT resolvables are started but not waited on. The first error
// among the awaited resolvables is returned.
func (c *Context) ResolvePath(filter *state.ResolveWhen) error {
	var all []*Resolvable
	for _, n := range c.nodes {
		all = append(all, n.Resolvables()...)
	}
	return c.resolveMany(all, filter)
}

// ResolveNode resolves only n's own Resolvables (not the rest of the
// path), still resolving their dependencies wherever in the path those
// live. Used by the transition pipeline to satisfy one entering state's
// LAZY/WAIT resolves before running that state's onEnter hooks.
func (c *Context) ResolveNode(n Node, filter *state.ResolveWhen) error {
	return c.resolveMany(n.Resolvables(), filter)
}

func (c *Context) resolveMany(resolvables []*Resolvable, filter *state.ResolveWhen) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, r := range resolvables {
		if filter != nil && r.Policy.When != *filter {
			continue
		}
		r := r
		if r.Policy.Async == state.NoWait {
			go func() { _, _ = c.resolveOne(r, map[string]bool{}) }()
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.resolveOne(r, map[string]bool{}); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// resolveOne resolves r, recursively resolving its dependencies first.
// stack tracks the chain of tokens currently being resolved by this call
// path, to detect cycles.
func (c *Context) resolveOne(r *Resolvable, stack map[string]bool) (any, error) {
	r.mu.Lock()
	if r.resolved {
		v, err := r.value, r.err
		r.mu.Unlock()
		c.reportResolve(r.Token, true)
		return v, err
	}
	if stack[r.Token] {
		r.mu.Unlock()
		return nil, &waypointerr.CyclicResolveError{Chain: append(keys(stack), r.Token)}
	}
	if r.inflight != nil {
		ch := r.inflight
		r.mu.Unlock()
		<-ch
		r.mu.Lock()
		v, err := r.value, r.err
		r.mu.Unlock()
		c.reportResolve(r.Token, true)
		return v, err
	}
	ch := make(chan struct{})
	r.inflight = ch
	r.mu.Unlock()

	nextStack := make(map[string]bool, len(stack)+1)
	for k := range stack {
		nextStack[k] = true
	}
	nextStack[r.Token] = true

	depVals, err := c.resolveDeps(r.Deps, nextStack)
	var val any
	if err == nil {
		val, err = r.Fn(depVals)
	}

	r.mu.Lock()
	r.err = err
	if err == nil {
		r.resolved = true
		r.value = val
	} else {
		// allow a subsequent transition to retry a failed resolve.
		r.inflight = nil
	}
	r.mu.Unlock()
	close(ch)
	c.reportResolve(r.Token, false)
	return val, err
}

func (c *Context) reportResolve(token string, cached bool) {
	if c.OnResolve != nil {
		c.OnResolve(token, cached)
	}
}

func (c *Context) resolveDeps(deps []string, stack map[string]bool) ([]any, error) {
	vals := make([]any, len(deps))
	for i, dep := range deps {
		depR, ok := c.Get(dep)
		if !ok {
			return nil, fmt.Errorf("%w: %s", waypointerr.ErrUnknownToken, dep)
		}
		v, err := c.resolveOne(depR, stack)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
