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

package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rivaas-dev/waypoint/paramtype"
	"github.com/rivaas-dev/waypoint/urlmatcher"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// RuleSink lets the Registry attach and detach a STATE-typed URL rule
// when a concrete, non-abstract state with a URL is registered or
// deregistered, without the state package importing urlrule.
type RuleSink interface {
	AddStateRule(s *State) (deregister func(), err error)
}

// Listener is notified after a batch of states is registered or
// deregistered.
type Listener func(event string, states []*State)

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithBuilder overrides the default per-property Builder.
func WithBuilder(b *Builder) Option {
	return func(r *Registry) { r.builder = b }
}

// WithParamTypes supplies the ParamType registry used to resolve
// {name:typeName} URL fragments. Defaults to paramtype.NewRegistry().
func WithParamTypes(types *paramtype.Registry) Option {
	return func(r *Registry) { r.paramTypes = types }
}

// WithMatcherConfig supplies the urlmatcher.Config (case sensitivity,
// strict mode, default squash) every state's URL fragment compiles
// with.
func WithMatcherConfig(cfg urlmatcher.Config) Option {
	return func(r *Registry) { r.matcherConfig = cfg }
}

// WithRuleSink attaches a RuleSink so registering a concrete state with
// a URL also adds a STATE-typed rule to the URL rules engine.
func WithRuleSink(sink RuleSink) Option {
	return func(r *Registry) { r.ruleSink = sink }
}

// Registry holds the state tree: a FIFO queue of not-yet-built
// declarations, and the name -> State map of everything that has been
// successfully built.
type Registry struct {
	mu sync.Mutex

	root *State

	byName map[string]*State
	queue  []*Declaration

	ruleDeregister map[string]func()

	builder       *Builder
	paramTypes    *paramtype.Registry
	matcherConfig urlmatcher.Config
	ruleSink      RuleSink
	validate      *validator.Validate

	listeners  []Listener
	decorators map[string][]DecoratorFn
}

// DecoratorFn is one stage of a per-property builder pipeline: given the
// State under construction and the value the previous stage (or the
// default builder) produced for property, it returns the value the next
// stage sees. The final stage's return value is what lands in the
// State's field.
type DecoratorFn func(s *State, previous any) any

// Decorator registers fn as an additional stage in property's builder
// pipeline, run after the default builder and any previously registered
// decorators for the same property. Supported properties are "data",
// "views" and "params" — the three fields spec'd as host-extensible
// bags; unrecognized property names are accepted but never invoked,
// matching a host registering a decorator for a property this core
// doesn't special-case.
func (r *Registry) Decorator(property string, fn DecoratorFn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decorators == nil {
		r.decorators = make(map[string][]DecoratorFn)
	}
	r.decorators[property] = append(r.decorators[property], fn)
}

// applyDecorators runs every registered decorator for s's extensible
// properties, in registration order, each seeing the previous stage's
// result.
func (r *Registry) applyDecorators(s *State) {
	for _, fn := range r.decorators["data"] {
		if v, ok := fn(s, s.Data).(map[string]any); ok {
			s.Data = v
		}
	}
	for _, fn := range r.decorators["views"] {
		if v, ok := fn(s, s.Views).(map[string]any); ok {
			s.Views = v
		}
	}
	for _, fn := range r.decorators["params"] {
		if v, ok := fn(s, s.Params).(map[string]ParamDecl); ok {
			s.Params = v
		}
	}
}

// NewRegistry builds a Registry seeded with the implicit root state: an
// abstract state with empty name, owning the built-in "#" parameter.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName:         make(map[string]*State),
		ruleDeregister: make(map[string]func()),
		builder:        NewBuilder(),
		paramTypes:     paramtype.NewRegistry(),
		validate:       validator.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	hashParam := ParamDecl{Param: urlmatcher.Param{
		Name: "#", Type: r.paramTypes.MustGet(paramtype.Hash),
		Location: urlmatcher.LocationConfig, Raw: true, IsOptional: true,
	}}
	root := &State{
		Name:     "",
		Abstract: true,
		Params:   map[string]ParamDecl{"#": hashParam},
		Data:     map[string]any{},
		Includes: map[string]bool{"": true},
	}
	r.root = root
	r.byName[""] = root
	return r
}

// Root returns the implicit root state.
func (r *Registry) Root() *State { return r.root }

// OnChange registers l to be notified after each successful Register or
// Deregister batch.
func (r *Registry) OnChange(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Register validates decl, appends it to the FIFO orphan queue, and
// flushes the queue. It returns a *waypointerr.ConfigError if decl's name
// is empty or already taken by a registered or queued state, or if its
// URL pattern does not compile.
func (r *Registry) Register(decl *Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validate.Struct(decl); err != nil {
		return waypointerr.NewConfigError("state.Register", fmt.Errorf("%w: %v", waypointerr.ErrEmptyName, err))
	}
	if err := r.checkNameFree(decl.Name); err != nil {
		return err
	}
	if decl.URL != "" {
		if _, err := urlmatcher.New(decl.URL, r.matcherConfig, r.paramTypes); err != nil {
			return waypointerr.NewConfigError("state.Register", err)
		}
	}

	r.queue = append(r.queue, decl)
	r.flush()
	return nil
}

// checkNameFree fails if name is already registered or queued. A
// concrete name colliding with an existing *future* state (stored under
// the distinct key "name.**") is not a collision here; that promotion
// is handled by insert when the build succeeds.
func (r *Registry) checkNameFree(name string) error {
	if _, exists := r.byName[name]; exists {
		return waypointerr.NewConfigError("state.Register", fmt.Errorf("%w: %s", waypointerr.ErrDuplicateState, name))
	}
	for _, d := range r.queue {
		if d.Name == name {
			return waypointerr.NewConfigError("state.Register", fmt.Errorf("%w: %s", waypointerr.ErrDuplicateState, name))
		}
	}
	return nil
}

// flush repeatedly attempts to build every queued declaration. Progress
// is tracked by queue length: if a full pass over the queue makes no
// progress, the remaining entries are orphans and stay queued.
func (r *Registry) flush() {
	var registered []*State
	for {
		progressed := false
		var stillQueued []*Declaration
		for _, decl := range r.queue {
			s, err := r.builder.buildState(r, decl)
			if err != nil {
				if _, isOrphan := err.(*orphanErr); isOrphan {
					stillQueued = append(stillQueued, decl)
					continue
				}
				// A non-orphan build error (bad URL pattern, etc.) drops
				// the declaration; Register() already validated names and
				// URL patterns, so this is unexpected but
				// must not wedge the queue.
				continue
			}
			r.applyDecorators(s)
			r.insert(s)
			registered = append(registered, s)
			progressed = true
		}
		r.queue = stillQueued
		if !progressed || len(r.queue) == 0 {
			break
		}
	}
	if len(registered) > 0 {
		r.notify("registered", registered)
	}
}

func (r *Registry) insert(s *State) {
	if future, ok := r.byName[s.Name+futureSuffix]; ok {
		r.deregisterOne(future)
	}
	r.byName[s.Name] = s
	if s.URL != nil && !s.Abstract && r.ruleSink != nil {
		if dereg, err := r.ruleSink.AddStateRule(s); err == nil {
			r.ruleDeregister[s.Name] = dereg
		}
	}
}

func (r *Registry) notify(event string, states []*State) {
	for _, l := range r.listeners {
		l(event, states)
	}
}

// Get returns the registered state named name, if any.
func (r *Registry) Get(name string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byName[name]
	return s, ok
}

// All returns every registered state (including the root), in an
// unspecified order.
func (r *Registry) All() []*State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*State, 0, len(r.byName))
	for _, s := range r.byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Match returns every registered state whose name matches pattern
// ("a.*" one more segment, "a.**" any depth).
func (r *Registry) Match(pattern string) []*State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*State
	for name, s := range r.byName {
		if matchesGlob(pattern, name) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Find resolves a relative state reference against base: "^" is base's
// parent, "^.foo" is a sibling-of-parent named foo, ".bar" is a child of
// base named bar, and any other string is looked up as an absolute name.
func (r *Registry) Find(base *State, ref string) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, err := resolveRelative(base, ref)
	if err != nil {
		return nil, waypointerr.NewConfigError("state.Find", err)
	}
	s, ok := r.byName[name]
	if !ok {
		return nil, waypointerr.NewConfigError("state.Find", fmt.Errorf("%w: %s", waypointerr.ErrUnresolvedRelative, ref))
	}
	return s, nil
}

func resolveRelative(base *State, ref string) (string, error) {
	switch {
	case ref == "^":
		if base == nil || base.Parent == nil {
			return "", waypointerr.ErrUnresolvedRelative
		}
		return base.Parent.Name, nil
	case len(ref) > 1 && ref[0] == '^' && ref[1] == '.':
		if base == nil || base.Parent == nil {
			return "", waypointerr.ErrUnresolvedRelative
		}
		return joinName(base.Parent.Name, ref[2:]), nil
	case len(ref) > 0 && ref[0] == '.':
		if base == nil {
			return "", waypointerr.ErrUnresolvedRelative
		}
		return joinName(base.Name, ref[1:]), nil
	default:
		return ref, nil
	}
}

func joinName(base, suffix string) string {
	if base == "" {
		return suffix
	}
	return base + "." + suffix
}

// Deregister removes the state named name and all of its descendants
// (post-order: descendants first), detaching any STATE URL rules and
// firing a "deregistered" notification. It returns the removed states.
func (r *Registry) Deregister(name string) ([]*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byName[name]
	if !ok {
		return nil, waypointerr.NewConfigError("state.Deregister", fmt.Errorf("state not found: %s", name))
	}

	var descendants []*State
	r.collectDescendants(s, &descendants)
	removed := append(descendants, s)

	for _, d := range removed {
		r.deregisterOne(d)
	}
	r.notify("deregistered", removed)
	return removed, nil
}

func (r *Registry) collectDescendants(s *State, out *[]*State) {
	for _, child := range r.byName {
		if child.Parent == s {
			r.collectDescendants(child, out)
			*out = append(*out, child)
		}
	}
}

func (r *Registry) deregisterOne(s *State) {
	if dereg, ok := r.ruleDeregister[s.Name]; ok {
		dereg()
		delete(r.ruleDeregister, s.Name)
	}
	delete(r.byName, s.Name)
}
