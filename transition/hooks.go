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
	"sort"
	"sync"

	"github.com/rivaas-dev/waypoint/state"
)

// Phase identifies one of the strictly ordered lifecycle phases a
// Transition runs through.
type Phase int

const (
	OnCreate Phase = iota
	OnBefore
	OnStart
	OnExit
	OnRetain
	OnEnter
	OnFinish
	OnSuccess
	OnError
)

// StateMatcher matches a glob string ("a.b.*", "**") or a predicate
// against a *state.State. Criteria fields accept either form, or a
// slice of either, via Matches.
type StateMatcher interface {
	Matches(s *state.State) bool
}

// Glob is a StateMatcher backed by a dotted glob pattern understood by
// the state package's own name matching ("*' one segment, "**" any
// number, including the bare state itself when not trailing).
type Glob string

// Matches reports whether s's name matches the glob pattern g.
func (g Glob) Matches(s *state.State) bool {
	return state.MatchesGlob(string(g), s.Name)
}

// Predicate is a StateMatcher backed by an arbitrary function.
type Predicate func(s *state.State) bool

// Matches calls p.
func (p Predicate) Matches(s *state.State) bool { return p(s) }

// Criteria selects which transitions and, for state-scoped phases,
// which individual entering/exiting/retained states a hook fires for.
// A nil field means "matches anything" for that dimension.
type Criteria struct {
	To       []StateMatcher
	From     []StateMatcher
	Entering []StateMatcher
	Exiting  []StateMatcher
	Retained []StateMatcher
}

func anyMatches(matchers []StateMatcher, s *state.State) bool {
	if len(matchers) == 0 {
		return true
	}
	if s == nil {
		return false
	}
	for _, m := range matchers {
		if m.Matches(s) {
			return true
		}
	}
	return false
}

// matchesTransition reports whether c's To/From criteria match tr's
// target/source leaf states. It does not check Entering/Exiting/Retained
// — those are evaluated per-state by the phase runner.
func (c Criteria) matchesTransition(tr *Transition) bool {
	var toState, fromState *state.State
	if leaf := tr.To.Leaf(); leaf != nil {
		toState = leaf.State
	}
	if leaf := tr.From.Leaf(); leaf != nil {
		fromState = leaf.State
	}
	return anyMatches(c.To, toState) && anyMatches(c.From, fromState)
}

// HookFn is the signature of a global hook. StateHookFn is the signature
// of a state-scoped hook, which additionally receives the bound
// *state.State as a second argument (see Transition.runStatePhase).
type HookFn func(tr *Transition) (any, error)
type StateHookFn func(tr *Transition, s *state.State) (any, error)

// HookOptions configures one hook registration.
type HookOptions struct {
	Priority float64
	// InvokeLimit caps how many times the hook fires; zero means
	// unlimited.
	InvokeLimit int
}

type registration struct {
	id       int64
	criteria Criteria
	global   HookFn
	state    StateHookFn
	opts     HookOptions
	invoked  int
}

// Registry holds every hook registered across all phases and resolves,
// for a given phase and transition, the ordered list of hooks that
// should fire.
type Registry struct {
	mu     sync.Mutex
	nextID int64
	hooks  map[Phase][]*registration
}

// NewRegistry returns an empty hook Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[Phase][]*registration)}
}

// On registers a global (non-state-scoped) hook for phase and returns a
// deregistration function. Valid for OnCreate, OnBefore, OnStart,
// OnFinish, OnSuccess, OnError.
func (r *Registry) On(phase Phase, criteria Criteria, fn HookFn, opts HookOptions) func() {
	return r.add(phase, &registration{criteria: criteria, global: fn, opts: opts})
}

// OnState registers a state-scoped hook for phase and returns a
// deregistration function. Valid for OnExit, OnRetain, OnEnter.
func (r *Registry) OnState(phase Phase, criteria Criteria, fn StateHookFn, opts HookOptions) func() {
	return r.add(phase, &registration{criteria: criteria, state: fn, opts: opts})
}

func (r *Registry) add(phase Phase, reg *registration) func() {
	r.mu.Lock()
	r.nextID++
	reg.id = r.nextID
	r.hooks[phase] = append(r.hooks[phase], reg)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.hooks[phase]
		for i, h := range list {
			if h.id == reg.id {
				r.hooks[phase] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// globalHooksFor returns the global hooks registered for phase whose
// criteria match tr, sorted by priority descending, ties by
// registration order (stable sort over the already-registration-order
// slice).
func (r *Registry) globalHooksFor(phase Phase, tr *Transition) []*registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*registration
	for _, h := range r.hooks[phase] {
		if h.opts.InvokeLimit > 0 && h.invoked >= h.opts.InvokeLimit {
			continue
		}
		if !h.criteria.matchesTransition(tr) {
			continue
		}
		matched = append(matched, h)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].opts.Priority > matched[j].opts.Priority
	})
	return matched
}

// stateInvocation pairs one state-scoped hook with the State it fires
// for, in the order stateHooksFor decided it should run.
type stateInvocation struct {
	state *state.State
	hook  *registration
}

// stateHooksFor returns, for each state tr.statesForPhase(phase) yields
// (already ordered by the caller per phase semantics: shallow->deep for
// onEnter, deep->shallow for onExit), the state-scoped hooks whose
// criteria select that state, sorted by priority descending within each
// state's slot.
func (r *Registry) stateHooksFor(phase Phase, tr *Transition, field func(Criteria) []StateMatcher) []stateInvocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	var invocations []stateInvocation
	for _, node := range tr.statesForPhase(phase) {
		var forState []stateInvocation
		for _, h := range r.hooks[phase] {
			if h.opts.InvokeLimit > 0 && h.invoked >= h.opts.InvokeLimit {
				continue
			}
			if !h.criteria.matchesTransition(tr) {
				continue
			}
			if !anyMatches(field(h.criteria), node) {
				continue
			}
			forState = append(forState, stateInvocation{state: node, hook: h})
		}
		sort.SliceStable(forState, func(i, j int) bool {
			return forState[i].hook.opts.Priority > forState[j].hook.opts.Priority
		})
		invocations = append(invocations, forState...)
	}
	return invocations
}
