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

	"github.com/rivaas-dev/waypoint/urlmatcher"
)

// Builder turns a Declaration into a State, one property at a time. Each
// BuildX field is independently pluggable; a Registry that wants, say, a
// custom Data-inheritance rule can replace just BuildData and leave the
// rest at their defaults via NewBuilder.
type Builder struct {
	BuildParent    func(reg *Registry, decl *Declaration) (*State, error)
	BuildParams    func(parent *State, decl *Declaration) map[string]ParamDecl
	BuildURL       func(reg *Registry, parent *State, decl *Declaration) (*urlmatcher.Matcher, error)
	BuildData      func(parent *State, decl *Declaration) map[string]any
	BuildNavigable func(parent *State, url *urlmatcher.Matcher) *State
}

// NewBuilder returns a Builder with the default property builders
// described in the registry's registration protocol.
func NewBuilder() *Builder {
	return &Builder{
		BuildParent:    defaultBuildParent,
		BuildParams:    defaultBuildParams,
		BuildURL:       defaultBuildURL,
		BuildData:      defaultBuildData,
		BuildNavigable: defaultBuildNavigable,
	}
}

// orphanErr is returned by BuildParent when decl's parent isn't
// registered yet; Registry.flush recognizes it and re-queues decl.
type orphanErr struct{ parentName string }

func (e *orphanErr) Error() string { return fmt.Sprintf("parent %q not yet registered", e.parentName) }

func defaultBuildParent(reg *Registry, decl *Declaration) (*State, error) {
	name := decl.Parent
	if name == "" {
		name = ParentName(decl.Name)
	}
	if name == "" {
		return reg.root, nil
	}
	parent, ok := reg.byName[name]
	if !ok {
		return nil, &orphanErr{parentName: name}
	}
	return parent, nil
}

func defaultBuildParams(parent *State, decl *Declaration) map[string]ParamDecl {
	merged := make(map[string]ParamDecl, len(decl.Params))
	if parent != nil {
		for name, p := range parent.Params {
			if p.Inherit {
				merged[name] = p
			}
		}
	}
	for name, p := range decl.Params {
		merged[name] = p
	}
	return merged
}

func defaultBuildURL(reg *Registry, parent *State, decl *Declaration) (*urlmatcher.Matcher, error) {
	if decl.URL == "" {
		return nil, nil
	}
	cfg := reg.matcherConfig
	own, err := urlmatcher.New(decl.URL, cfg, reg.paramTypes)
	if err != nil {
		return nil, fmt.Errorf("state %q: %w", decl.Name, err)
	}
	if parent == nil || parent.URL == nil {
		return own, nil
	}
	return parent.URL.Append(own)
}

func defaultBuildData(parent *State, decl *Declaration) map[string]any {
	merged := make(map[string]any)
	if parent != nil {
		for k, v := range parent.Data {
			merged[k] = v
		}
	}
	for k, v := range decl.Data {
		merged[k] = v
	}
	return merged
}

func defaultBuildNavigable(parent *State, url *urlmatcher.Matcher) *State {
	if url != nil {
		// the state being built is navigable by itself; callers set
		// this to the state itself after construction when its own URL
		// is non-nil. Here we only compute the ancestor fallback.
		return nil
	}
	if parent == nil {
		return nil
	}
	return parent.Navigable
}

func buildPath(parent *State) []*State {
	if parent == nil {
		return nil
	}
	path := make([]*State, 0, len(parent.Path)+1)
	path = append(path, parent.Path...)
	path = append(path, parent)
	return path
}

func buildIncludes(path []*State, name string) map[string]bool {
	includes := make(map[string]bool, len(path)+1)
	for _, s := range path {
		includes[s.Name] = true
	}
	includes[name] = true
	return includes
}

// buildState runs the full default construction pipeline for decl, given
// its already-resolved parent. It is the single place that assembles a
// State from a Builder's individual BuildX outputs.
func (b *Builder) buildState(reg *Registry, decl *Declaration) (*State, error) {
	parent, err := b.BuildParent(reg, decl)
	if err != nil {
		return nil, err
	}

	url, err := b.BuildURL(reg, parent, decl)
	if err != nil {
		return nil, err
	}

	s := &State{
		Name:          decl.Name,
		Parent:        parent,
		URL:           url,
		Params:        b.BuildParams(parent, decl),
		Resolve:       decl.Resolve,
		ResolvePolicy: decl.ResolvePolicy,
		Views:         decl.Views,
		Data:          b.BuildData(parent, decl),
		OnEnter:       decl.OnEnter,
		OnRetain:      decl.OnRetain,
		OnExit:        decl.OnExit,
		RedirectTo:    decl.RedirectTo,
		LazyLoad:      decl.LazyLoad,
		Abstract:      decl.Abstract,
		Future:        IsFuture(decl.Name),
		decl:          decl,
	}
	s.Path = buildPath(parent)
	s.Includes = buildIncludes(s.Path, s.Name)
	if url != nil {
		s.Navigable = s
	} else {
		s.Navigable = b.BuildNavigable(parent, url)
	}
	return s, nil
}
