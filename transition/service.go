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
	"context"
	"sync"

	"github.com/rivaas-dev/waypoint/navpath"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// Service owns the Registry, the currently-pending Transition (if any),
// and the supersession/redirect-chain logic below. It is the piece
// router.Router embeds to implement the StateService's go()/target().
type Service struct {
	Hooks *Registry

	stateReg *state.Registry

	// Settled, if set, is called once per Transition that finishes
	// running (successfully, rejected, or superseded), after Current
	// has already been updated on success. It exists so a host (see the
	// root waypoint.Globals) can maintain a bounded transition history
	// without this package needing to know about history-retention
	// policy itself.
	Settled func(tr *Transition, rej *waypointerr.Rejection)

	// Started, if set, is called once per Transition just before it
	// begins running (after supersession of any prior pending
	// Transition). It exists so a host can open a log/metrics/trace
	// span keyed by the Transition without this package depending on
	// any ambient-stack package.
	Started func(tr *Transition)

	// OnResolve, if set, is threaded onto every Transition's
	// resolve.Context (see resolve.Context.OnResolve) for cache
	// hit/miss instrumentation.
	OnResolve func(token string, cached bool)

	mu       sync.Mutex
	current  navpath.Path
	pending  *Transition
	disposed bool
}

// NewService builds a Service bound to stateReg, with an empty current
// path (the implicit root with no params) and a fresh hook Registry.
func NewService(stateReg *state.Registry) *Service {
	return &Service{Hooks: NewRegistry(), stateReg: stateReg}
}

// Current returns the Path of the last successfully completed
// Transition.
func (s *Service) Current() navpath.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending returns the currently in-flight Transition, or nil if none.
func (s *Service) Pending() *Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Go starts a navigation to target. If an equivalent Transition is
// already pending, it returns that pending Transition together with an
// IGNORED Rejection, without starting a new one. If a non-equivalent Transition
// is pending, that one is superseded (aborted with SUPERSEDED) before
// this one begins. Go follows any redirect chain up to MaxRedirects.
func (s *Service) Go(ctx context.Context, target *TargetState) (*Transition, *waypointerr.Rejection) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, &waypointerr.Rejection{Type: waypointerr.Errored, Message: "router disposed"}
	}
	if s.pending != nil && s.pending.Target.Equivalent(target) {
		pending := s.pending
		s.mu.Unlock()
		return pending, &waypointerr.Rejection{Type: waypointerr.Ignored}
	}
	if s.pending != nil {
		s.pending.Abort()
	}
	s.mu.Unlock()

	return s.run(ctx, s.Current(), target, nil, 0)
}

func (s *Service) run(ctx context.Context, from navpath.Path, target *TargetState, redirectedFrom *Transition, redirectCount int) (*Transition, *waypointerr.Rejection) {
	tr, err := NewWithResolveObserver(s.stateReg, s.Hooks, from, target, s.OnResolve)
	if err != nil {
		return nil, &waypointerr.Rejection{Type: waypointerr.Errored, Detail: err}
	}
	tr.RedirectedFrom = redirectedFrom
	tr.redirectCount = redirectCount

	s.mu.Lock()
	s.pending = tr
	s.mu.Unlock()

	if s.Started != nil {
		s.Started(tr)
	}

	rej := tr.Run(ctx)

	s.mu.Lock()
	if s.pending == tr {
		s.pending = nil
	}
	s.mu.Unlock()

	if rej == nil {
		s.mu.Lock()
		s.current = tr.To
		s.mu.Unlock()
		if s.Settled != nil {
			s.Settled(tr, nil)
		}
		return tr, nil
	}

	if s.Settled != nil {
		s.Settled(tr, rej)
	}

	if rej.Type == waypointerr.Superseded && tr.Redirect() != nil {
		if redirectCount+1 > MaxRedirects {
			return tr, &waypointerr.Rejection{Type: waypointerr.Errored, Message: waypointerr.ErrTooManyRedirects.Error()}
		}
		return s.run(ctx, from, tr.Redirect(), tr, redirectCount+1)
	}

	return tr, rej
}

// Dispose marks s disposed: further Go calls fail immediately, and the
// currently pending Transition (if any) is aborted.
func (s *Service) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	if s.pending != nil {
		s.pending.abortWithReason("router disposed")
	}
}
