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

// Package transition runs the phased navigation pipeline: a Transition
// carries an immutable from/to Path pair and TreeChanges through
// onCreate, onBefore, onStart, onExit, onRetain, onEnter, onFinish,
// onSuccess and onError, consulting a Registry of criteria-matched hooks
// at each phase and interpreting their return values as continue/abort/
// redirect/error per the hook return-value contract.
package transition

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rivaas-dev/waypoint/navpath"
	"github.com/rivaas-dev/waypoint/resolve"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/waypointerr"
)

// MaxRedirects caps the number of consecutive redirects one navigation
// chain may produce before it fails with ErrTooManyRedirects.
const MaxRedirects = 20

var nextTransitionID int64

// Transition is one navigation attempt, from an immutable From Path to a
// Target/To Path, through the phased hook lifecycle.
type Transition struct {
	// ID is a globally monotonic, process-lifetime identifier assigned
	// at creation; used for ordering and equality, never reused.
	ID int64
	// CorrelationID tags this transition for logs and traces; distinct
	// from ID, which must stay a plain monotonic integer for ordering.
	CorrelationID uuid.UUID

	From    navpath.Path
	To      navpath.Path
	Changes navpath.TreeChanges
	Target  *TargetState
	Options Options
	Dynamic bool

	// RedirectedFrom is the Transition that produced this one by
	// returning a TargetState from a hook, or nil for a root-level
	// navigation.
	RedirectedFrom *Transition
	redirectCount  int

	stateReg   *state.Registry
	hooks      *Registry
	resolveCtx *resolve.Context

	mu          sync.Mutex
	aborted     bool
	abortReason string
	rejection   *waypointerr.Rejection
	redirect    *TargetState
}

// New builds a Transition from from to target, validates target against
// stateReg, and synchronously runs onCreate hooks. A non-nil error here
// means onCreate itself failed (or target's param shape made it
// impossible to build a Path at all); it is a creation-time failure, not
// a Rejection: an onCreate hook throwing aborts creation outright (no
// Transition is returned in that case).
func New(stateReg *state.Registry, hooks *Registry, from navpath.Path, target *TargetState) (*Transition, error) {
	return NewWithResolveObserver(stateReg, hooks, from, target, nil)
}

// NewWithResolveObserver is New with onResolve wired onto the
// Transition's resolve.Context (see resolve.Context.OnResolve), so a
// host's metrics recorder can be notified of every resolve cache
// hit/miss without this package importing an ambient-stack package.
func NewWithResolveObserver(stateReg *state.Registry, hooks *Registry, from navpath.Path, target *TargetState, onResolve func(token string, cached bool)) (*Transition, error) {
	if len(from) == 0 {
		// An empty from stands for the implicit root alone, so the root
		// is kept rather than entered by the first navigation.
		from = navpath.NewPath(stateReg.Root(), nil)
	}
	tr := &Transition{
		ID:            atomic.AddInt64(&nextTransitionID, 1),
		CorrelationID: uuid.New(),
		From:          from,
		Target:        target,
		Options:       target.Options,
		stateReg:      stateReg,
		hooks:         hooks,
	}

	if target.Validate(stateReg) {
		tr.To = navpath.NewPath(target.State(), flatParams(target.State(), target.Params))
		tr.Changes = navpath.Diff(from, tr.To)
		// Kept states share the from path's Resolvables, so values already
		// resolved there are not fetched again.
		for i, n := range tr.Changes.Kept {
			tr.To[i].Resolves = n.Resolves
		}
		tr.Dynamic = navpath.SameChain(from, tr.To) && !navpath.FullyEqual(from, tr.To) && len(tr.Changes.Exiting) == 0
		tr.resolveCtx = resolve.NewContext(tr.To.Nodes())
		tr.resolveCtx.OnResolve = onResolve
	} else {
		// invalid target: keep To empty so Run() rejects with Invalid
		// at onBefore without ever entering a phase that assumes a
		// resolved path.
		tr.resolveCtx = resolve.NewContext(nil)
	}

	for _, h := range hooks.globalHooksFor(OnCreate, tr) {
		h.invoked++
		if _, err := h.global(tr); err != nil {
			return nil, fmt.Errorf("onCreate hook failed: %w", err)
		}
	}
	return tr, nil
}

// flatParams gives every state in the chain the same flat params map;
// each State's own merged Params (including inherited declarations)
// picks out the names it cares about, mirroring a single global params
// object rather than one map per state. The resulting map is rebuilt
// per-state by navpath.NewPath, which indexes it by state name; since
// every state shares the same underlying params, every name maps to
// the identical map here.
func flatParams(target *state.State, params map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(target.Path)+1)
	for _, s := range target.Path {
		out[s.Name] = params
	}
	out[target.Name] = params
	return out
}

// Abort cooperatively cancels tr: the currently running hook completes,
// but no further hook in the pipeline runs, and onError hooks still
// fire with an ABORTED rejection.
func (tr *Transition) Abort() {
	tr.abortWithReason("")
}

// abortWithReason is Abort plus a Message to stamp onto the resulting
// ABORTED Rejection; used by Service.Dispose so a disposed router's
// in-flight Transition settles with a Rejection whose detail mentions
// "disposed" (spec §5), distinct from a host calling Abort() directly.
func (tr *Transition) abortWithReason(reason string) {
	tr.mu.Lock()
	tr.aborted = true
	tr.abortReason = reason
	tr.mu.Unlock()
}

// StateRegistry returns the state.Registry this Transition was created
// against, so a hook can look up or validate other states mid-pipeline.
func (tr *Transition) StateRegistry() *state.Registry { return tr.stateReg }

func (tr *Transition) isAborted() bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.aborted
}

func (tr *Transition) abortRejection() *waypointerr.Rejection {
	tr.mu.Lock()
	reason := tr.abortReason
	tr.mu.Unlock()
	return &waypointerr.Rejection{Type: waypointerr.Aborted, Message: reason}
}

// statesForPhase returns the ordered State list hook criteria are
// matched and invoked against for a state-scoped phase.
func (tr *Transition) statesForPhase(phase Phase) []*state.State {
	var nodes navpath.Path
	switch phase {
	case OnExit:
		nodes = tr.Changes.Exiting
	case OnRetain:
		nodes = tr.Changes.Retained
	case OnEnter:
		nodes = tr.Changes.Entering
	default:
		return nil
	}
	out := make([]*state.State, len(nodes))
	for i, n := range nodes {
		out[i] = n.State
	}
	return out
}

// nodeFor returns the Path node matching s in tr.To (for onEnter's
// per-state resolve gate) or tr.From (for onExit/onRetain, where the
// relevant node is the one already visited).
func (tr *Transition) nodeFor(path navpath.Path, s *state.State) *navpath.PathNode {
	for _, n := range path {
		if n.State == s {
			return n
		}
	}
	return nil
}

// result is the normalized outcome of interpreting one hook's return
// value per the hook return-value contract below.
type result int

const (
	resultContinue result = iota
	resultAbort
	resultRedirect
	resultError
)

func interpret(v any, err error) (result, *waypointerr.Rejection, *TargetState) {
	if err != nil {
		return resultError, &waypointerr.Rejection{Type: waypointerr.Errored, Detail: err}, nil
	}
	switch val := v.(type) {
	case nil:
		return resultContinue, nil, nil
	case bool:
		if val {
			return resultContinue, nil, nil
		}
		return resultAbort, &waypointerr.Rejection{Type: waypointerr.Aborted}, nil
	case *TargetState:
		return resultRedirect, &waypointerr.Rejection{Type: waypointerr.Superseded, RedirectTo: val}, val
	default:
		return resultContinue, nil, nil
	}
}

// Run executes every remaining phase in order and returns the
// Rejection the transition failed with, or nil on success. ctx is checked
// once, after onBefore: if it is cancelled by then, the transition
// rejects with ABORTED; a later cancellation is not observed. Abort, by
// contrast, is checked before every hook.
func (tr *Transition) Run(ctx context.Context) *waypointerr.Rejection {
	if !tr.Target.Valid() {
		rej := &waypointerr.Rejection{Type: waypointerr.Invalid, Message: "target state failed validation"}
		tr.finishWithRejection(rej)
		return rej
	}

	if redirectTo := stateRedirect(tr.Target.State()); redirectTo != nil {
		rej := &waypointerr.Rejection{Type: waypointerr.Superseded, RedirectTo: redirectTo}
		tr.redirect = redirectTo
		tr.finishWithRejection(rej)
		return rej
	}

	if tr.redirectCount > MaxRedirects {
		rej := &waypointerr.Rejection{Type: waypointerr.Errored, Message: waypointerr.ErrTooManyRedirects.Error()}
		tr.finishWithRejection(rej)
		return rej
	}

	if rej := tr.runBefore(); rej != nil {
		tr.finishWithRejection(rej)
		return rej
	}
	if tr.checkCancelled(ctx) {
		rej := &waypointerr.Rejection{Type: waypointerr.Aborted, Message: "context cancelled"}
		if tr.isAborted() {
			rej = tr.abortRejection()
		}
		tr.finishWithRejection(rej)
		return rej
	}

	if rej := tr.resolveEager(); rej != nil {
		tr.finishWithRejection(rej)
		return rej
	}

	if rej := tr.runGlobalPhase(OnStart); rej != nil {
		tr.finishWithRejection(rej)
		return rej
	}

	if tr.Dynamic {
		if rej := tr.runStatePhase(OnRetain, func(c Criteria) []StateMatcher { return c.Retained }); rej != nil {
			tr.finishWithRejection(rej)
			return rej
		}
	} else {
		if rej := tr.runStatePhase(OnExit, func(c Criteria) []StateMatcher { return c.Exiting }); rej != nil {
			tr.finishWithRejection(rej)
			return rej
		}
		if rej := tr.runStatePhase(OnRetain, func(c Criteria) []StateMatcher { return c.Retained }); rej != nil {
			tr.finishWithRejection(rej)
			return rej
		}
		if rej := tr.runEnterPhase(); rej != nil {
			tr.finishWithRejection(rej)
			return rej
		}
	}

	if rej := tr.runGlobalPhase(OnFinish); rej != nil {
		tr.finishWithRejection(rej)
		return rej
	}

	tr.runSuccess()
	return nil
}

func (tr *Transition) checkCancelled(ctx context.Context) bool {
	if tr.isAborted() {
		return true
	}
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// runBefore runs onBefore, plus the IGNORED short-circuit: a target
// equal to the current state with no meaningful (non-dynamic) change is
// dropped unless Options.Reload is set or a hook already mutated
// Changes.Entering/Exiting away from empty.
func (tr *Transition) runBefore() *waypointerr.Rejection {
	if !tr.Options.Reload && navpath.FullyEqual(tr.From, tr.To) {
		return &waypointerr.Rejection{Type: waypointerr.Ignored}
	}
	return tr.runGlobalPhase(OnBefore)
}

// resolveEager resolves every EAGER resolvable reachable from tr.To,
// regardless of whether its owning state is entering, before onStart's
// hooks run. Per spec §4.4 this happens "during the onStart phase of
// every transition"; it runs just ahead of onStart's own hooks rather
// than as one of them since it is not itself a hook invocation.
func (tr *Transition) resolveEager() *waypointerr.Rejection {
	if tr.resolveCtx == nil {
		return nil
	}
	eager := state.Eager
	if err := tr.resolveCtx.ResolvePath(&eager); err != nil {
		return &waypointerr.Rejection{Type: waypointerr.Errored, Detail: err}
	}
	return nil
}

// runGlobalPhase runs every global hook registered for phase, in
// priority order, short-circuiting on abort/redirect/error.
func (tr *Transition) runGlobalPhase(phase Phase) *waypointerr.Rejection {
	for _, h := range tr.hooks.globalHooksFor(phase, tr) {
		if tr.isAborted() {
			return tr.abortRejection()
		}
		h.invoked++
		res, rej, target := interpret(h.global(tr))
		switch res {
		case resultContinue:
			continue
		case resultAbort, resultError:
			return rej
		case resultRedirect:
			tr.redirect = target
			return rej
		}
	}
	return nil
}

// runStatePhase runs every state-scoped hook matching phase, per state
// in the order tr.statesForPhase(phase) dictates.
func (tr *Transition) runStatePhase(phase Phase, field func(Criteria) []StateMatcher) *waypointerr.Rejection {
	for _, inv := range tr.hooks.stateHooksFor(phase, tr, field) {
		if tr.isAborted() {
			return tr.abortRejection()
		}
		inv.hook.invoked++
		res, rej, target := interpret(inv.hook.state(tr, inv.state))
		switch res {
		case resultContinue:
			continue
		case resultAbort, resultError:
			return rej
		case resultRedirect:
			tr.redirect = target
			return rej
		}
	}
	return nil
}

// runEnterPhase runs onEnter shallow to deep, resolving each entering
// state's own LAZY/WAIT resolvables just before that state's hooks run.
func (tr *Transition) runEnterPhase() *waypointerr.Rejection {
	lazy := state.Lazy
	for _, s := range tr.statesForPhase(OnEnter) {
		node := tr.nodeFor(tr.To, s)
		if node != nil && tr.resolveCtx != nil {
			if err := tr.resolveCtx.ResolveNode(node, &lazy); err != nil {
				return &waypointerr.Rejection{Type: waypointerr.Errored, Detail: err}
			}
		}
	}
	return tr.runStatePhase(OnEnter, func(c Criteria) []StateMatcher { return c.Entering })
}

// runSuccess runs every onSuccess hook, continuing even if one errors
// (the error is swallowed here; a host-level default error handler, not
// modeled in this package, is the place to surface it). Redirections
// returned from onSuccess are ignored.
func (tr *Transition) runSuccess() {
	for _, h := range tr.hooks.globalHooksFor(OnSuccess, tr) {
		h.invoked++
		_, _ = h.global(tr)
	}
}

// finishWithRejection records rej and runs every onError hook,
// continuing even if one panics' worth of error is returned.
func (tr *Transition) finishWithRejection(rej *waypointerr.Rejection) {
	tr.mu.Lock()
	tr.rejection = rej
	tr.mu.Unlock()
	for _, h := range tr.hooks.globalHooksFor(OnError, tr) {
		h.invoked++
		_, _ = h.global(tr)
	}
}

// Rejection returns the Rejection tr finished with, or nil if it has
// not finished or finished successfully.
func (tr *Transition) Rejection() *waypointerr.Rejection {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.rejection
}

// Redirect returns the TargetState a hook redirected tr to, or nil if
// tr did not redirect.
func (tr *Transition) Redirect() *TargetState {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.redirect
}

// stateRedirect evaluates s.RedirectTo (set via its Declaration) into a
// TargetState, or nil if s declares none. RedirectTo may be a
// *TargetState literal or a func() *TargetState computed at navigation
// time.
func stateRedirect(s *state.State) *TargetState {
	if s == nil {
		return nil
	}
	switch v := s.RedirectTo.(type) {
	case nil:
		return nil
	case *TargetState:
		return v
	case func() *TargetState:
		return v()
	default:
		return nil
	}
}
