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

// Package state implements the hierarchical state registry and builder:
// State declarations are accepted in any order, queued until their parent
// is registered, and built into a rooted tree of States with derived
// fields (path, includes, merged params, concatenated URL matcher).
package state

import "github.com/rivaas-dev/waypoint/urlmatcher"

// State is a single node in the rooted state tree. It is always built
// from a Declaration by a Builder; host code never constructs one
// directly.
type State struct {
	Name   string
	Parent *State // nil for the implicit root

	URL *urlmatcher.Matcher // nil if this state declares no URL of its own (see Navigable)

	// Params is the merged parameter set: self's declarations override
	// same-named ancestor declarations.
	Params map[string]ParamDecl

	Resolve       []ResolveSpec
	ResolvePolicy ResolvePolicy

	Views map[string]any
	Data  map[string]any

	OnEnter  HookFn
	OnRetain HookFn
	OnExit   HookFn

	RedirectTo any
	LazyLoad   LazyLoadFn
	Abstract   bool
	Future     bool

	// Navigable is the nearest self-or-ancestor State with a non-nil
	// URL, or nil if none exists in the path to root.
	Navigable *State

	// Path is the ordered ancestor chain from the root (Path[0]) to
	// this state's parent (Path[len(Path)-1]); it does not include this
	// state itself. navpath.NewPath appends the target state to get the
	// full root-to-leaf chain the spec calls "state.path".
	Path []*State

	// Includes is the set of this state's own name and all ancestor
	// names, for fast subtree membership tests.
	Includes map[string]bool

	decl *Declaration
}

// IsRoot reports whether s is the implicit root state.
func (s *State) IsRoot() bool { return s.Parent == nil && s.Name == "" }

// IncludesName reports whether name is s itself or one of its ancestors.
func (s *State) IncludesName(name string) bool {
	return s.Includes[name]
}

// Self returns s; it exists so PathNode and similar wrappers can expose
// a uniform ".State()"-shaped accessor without reflection.
func (s *State) Self() *State { return s }
