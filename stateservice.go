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
	"context"
	"fmt"
	"sync"

	"github.com/rivaas-dev/waypoint/navpath"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/transition"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// StateService is the host-facing navigation surface (spec §6's
// produced StateService): go/target/href plus the current path and
// params, lazy-loading of future states, and the single default error
// handler sink.
type StateService struct {
	reg *state.Registry
	svc *transition.Service
	url *UrlService // set by Router after both are constructed

	mu         sync.Mutex
	errHandler func(rej *waypointerr.Rejection)
}

func newStateService(reg *state.Registry, svc *transition.Service) *StateService {
	return &StateService{reg: reg, svc: svc}
}

// Current returns the Path of the last successfully completed
// Transition.
func (s *StateService) Current() navpath.Path { return s.svc.Current() }

// Params returns the current Path's leaf parameter map, or nil before
// any Transition has succeeded.
func (s *StateService) Params() map[string]any {
	leaf := s.svc.Current().Leaf()
	if leaf == nil {
		return nil
	}
	return leaf.Params
}

// Go starts a navigation to name/params/opts, lazy-loading name first if
// it currently names a future state. The returned Rejection is nil on
// success.
func (s *StateService) Go(ctx context.Context, name string, params map[string]any, opts transition.Options) (*transition.Transition, *waypointerr.Rejection) {
	if err := s.ensureLoaded(name); err != nil {
		return nil, &waypointerr.Rejection{Type: waypointerr.Errored, Detail: err}
	}
	target := transition.NewTargetState(name, params, opts)
	tr, rej := s.svc.Go(ctx, target)
	s.afterGo(tr, rej)
	return tr, rej
}

// TransitionTo is an alias for Go kept to match the produced
// StateService's two-name surface in spec §6 (`go` and `transitionTo`
// are the same operation under two names in the source library).
func (s *StateService) TransitionTo(ctx context.Context, name string, params map[string]any, opts transition.Options) (*transition.Transition, *waypointerr.Rejection) {
	return s.Go(ctx, name, params, opts)
}

// Target builds a TargetState for name/params/opts without starting a
// navigation, validating it against the registry first.
func (s *StateService) Target(name string, params map[string]any, opts transition.Options) *transition.TargetState {
	t := transition.NewTargetState(name, params, opts)
	t.Validate(s.reg)
	return t
}

// Href formats the URL for name/params, or ("", false) if name is not
// navigable or params fail the matcher's validation.
func (s *StateService) Href(name string, params map[string]any) (string, bool) {
	st, ok := s.reg.Get(name)
	if !ok || st.Navigable == nil || st.Navigable.URL == nil {
		return "", false
	}
	if s.url != nil {
		return s.url.format(st.Navigable.URL, params)
	}
	path, search, hash, ok := st.Navigable.URL.Format(params)
	if !ok {
		return "", false
	}
	out := path
	if len(search) > 0 {
		out += "?" + search.Encode()
	}
	if hash != "" {
		out += "#" + hash
	}
	return out, true
}

// LazyLoad runs the future state named name's LazyLoad function (a
// no-op, returning nil, if it has none or has already run), registering
// every Declaration it returns.
func (s *StateService) LazyLoad(name string) error {
	st, ok := s.reg.Get(name)
	if !ok {
		return waypointerr.NewConfigError("state.LazyLoad", fmt.Errorf("state not found: %s", name))
	}
	if st.LazyLoad == nil {
		return nil
	}
	decls, err := st.LazyLoad()
	if err != nil {
		return err
	}
	for _, d := range decls {
		if err := s.reg.Register(d); err != nil {
			return err
		}
	}
	st.LazyLoad = nil
	return nil
}

// ensureLoaded lazy-loads name if it (or its "name.**" future form)
// names a future state with an unexpired LazyLoad function; any other
// name is left for TargetState.Validate to judge.
func (s *StateService) ensureLoaded(name string) error {
	st, ok := s.reg.Get(name)
	if !ok {
		st, ok = s.reg.Get(name + ".**")
	}
	if !ok || st.LazyLoad == nil {
		return nil
	}
	return s.LazyLoad(st.Name)
}

// DefaultErrorHandler installs the single sink that every Rejection
// returned from Go reaches, whether or not an onError hook also saw it.
// SUPERSEDED, ABORTED and IGNORED rejections never reach it (spec §7).
func (s *StateService) DefaultErrorHandler(cb func(rej *waypointerr.Rejection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errHandler = cb
}

func (s *StateService) afterGo(tr *transition.Transition, rej *waypointerr.Rejection) {
	if rej != nil {
		s.reportError(rej)
	}
	if rej == nil && s.url != nil && tr != nil {
		s.url.writeBack(tr)
	}
}

func (s *StateService) reportError(rej *waypointerr.Rejection) {
	if rej.Type == waypointerr.Superseded || rej.Type == waypointerr.Aborted || rej.Type == waypointerr.Ignored {
		return
	}
	s.mu.Lock()
	cb := s.errHandler
	s.mu.Unlock()
	if cb != nil {
		cb(rej)
	}
}
