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

import "github.com/rivaas-dev/waypoint/urlmatcher"

// ResolveWhen is the eagerness policy of a Resolvable.
type ResolveWhen int

const (
	// Lazy resolves a value just before the owning state is entered.
	// This is the default.
	Lazy ResolveWhen = iota
	// Eager resolves a value during the onStart phase of every
	// transition, whether or not the owning state is entering.
	Eager
)

// ResolveAsync is the async-wait policy of a Resolvable.
type ResolveAsync int

const (
	// Wait blocks transition progress on the resolve's promise. This is
	// the default.
	Wait ResolveAsync = iota
	// NoWait fires the resolve but lets the transition proceed without
	// it.
	NoWait
	// RXWait waits for the first emission of a pushed stream; treated
	// identically to Wait when the resolved value is not a stream.
	RXWait
)

// ResolvePolicy is the eagerness/async-wait pair governing a Resolvable.
// A State's ResolvePolicy field supplies the default for any of its own
// Resolve entries that don't set their own Policy explicitly.
type ResolvePolicy struct {
	When  ResolveWhen
	Async ResolveAsync
}

// ResolveFn computes a Resolvable's value from its already-resolved
// dependency values, in the same order as ResolveSpec.Deps. It receives
// the raw dependency values (caller-defined types, opaque to this
// package) and returns the resolved value or an error.
type ResolveFn func(deps []any) (any, error)

// ResolveSpec declares one Resolvable owned by a state: a token other
// resolvables and hooks can request by name, the tokens it itself
// depends on, the function that produces its value, and its eagerness
// policy. The runtime object that tracks resolution state (cached
// value, in-flight promise) lives in package resolve, which wraps a
// ResolveSpec rather than this package importing it, keeping the
// dependency graph state -> resolve acyclic.
type ResolveSpec struct {
	Token  string
	Deps   []string
	Fn     ResolveFn
	Policy *ResolvePolicy // nil means "use the owning state's default"
}

// ParamDecl is a state's declaration of one of its parameters. It
// embeds the URL-matcher-level description (type, squash, array mode)
// and adds the two properties that only make sense at the state level.
type ParamDecl struct {
	urlmatcher.Param
	// Dynamic params don't force a state transition when their value
	// changes; see the transition package's dynamic-transition handling.
	Dynamic bool
	// Inherit params are copied down from the matching ancestor
	// parameter declaration of the same name unless overridden.
	Inherit bool
}

// HookFn is a state-scoped onEnter/onRetain/onExit hook. It receives an
// opaque transition context (a *transition.Transition in practice; left
// as `any` here to avoid an import cycle) and the State it is bound to.
// The Builder copies these onto the State, but the transition pipeline
// does not call them: state-scoped hooks run only when registered
// through transition.Registry.OnState.
type HookFn func(ctx any, self *State) (any, error)

// LazyLoadFn produces additional state Declarations the first time a
// future state is navigated to. It is removed from the state after its
// first successful call.
type LazyLoadFn func() ([]*Declaration, error)

// Declaration is the host-authored description of a state, as passed to
// Registry.Register. The Builder turns a Declaration into a State.
type Declaration struct {
	// Name is the dotted, globally unique state name. A trailing ".**"
	// marks a future state.
	Name string `validate:"required"`

	// Parent explicitly names this state's parent, overriding the
	// default dotted-prefix inference. Most declarations leave this
	// empty and rely on the name "a.b.c" implying parent "a.b".
	Parent string

	// URL is an optional URL matcher pattern fragment, concatenated
	// onto the parent's compiled matcher.
	URL string

	// Params declares this state's own parameters, keyed by name. It is
	// merged with inherited ancestor params at build time, with this
	// state's entries overriding same-named ancestor entries.
	Params map[string]ParamDecl

	// Resolve lists this state's own Resolvables, in declaration order.
	Resolve []ResolveSpec

	// ResolvePolicy supplies the default eagerness/async-wait policy
	// for any entry in Resolve that doesn't set its own Policy.
	ResolvePolicy ResolvePolicy

	// Views maps view-slot names to opaque, host-interpreted view
	// configuration. The core never looks inside these values.
	Views map[string]any

	// Data is host-provided metadata, prototypally inherited down the
	// tree: a descendant's Data overlays (not replaces) its ancestors'.
	Data map[string]any

	OnEnter  HookFn
	OnRetain HookFn
	OnExit   HookFn

	// RedirectTo, if set, is consulted by the transition pipeline
	// before this state would otherwise become part of a target path.
	// It is left as `any` (a TargetState, a function returning one, or
	// nil) to avoid an import cycle with the transition package.
	RedirectTo any

	// LazyLoad produces further Declarations the first time this
	// future state is targeted; only meaningful when Name ends in
	// ".**".
	LazyLoad LazyLoadFn

	Abstract bool
}
