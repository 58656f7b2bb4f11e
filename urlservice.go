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
	"sync"

	"github.com/rivaas-dev/waypoint/location"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/transition"
	"github.com/rivaas-dev/waypoint/urlmatcher"
	"github.com/rivaas-dev/waypoint/urlrule"
)

// TargetDescriptor is the `{state, params?, options?}` handler return
// shape spec §4.3 allows a rule handler to produce in place of a bare
// *transition.TargetState.
type TargetDescriptor struct {
	State   string
	Params  map[string]any
	Options transition.Options
}

// UrlService is the produced UrlService facade of spec §6: the URL
// rules Engine plus the location.Services/Config pair it resolves
// against, wired to dispatch a matched URL into the StateService.
type UrlService struct {
	loc    location.Services
	cfg    location.Config
	Rules  *urlrule.Engine
	states *StateService

	mu         sync.Mutex
	listening  bool
	deferred   bool
	unregister func()
}

func newURLService(loc location.Services, cfg location.Config) *UrlService {
	return &UrlService{loc: loc, cfg: cfg, Rules: urlrule.NewEngine()}
}

// URL reads the current URL (newURL == "") or writes newURL.
func (u *UrlService) URL(newURL string, replace bool) string { return u.loc.URL(newURL, replace) }

// Path, Search and Hash read the decomposed current URL.
func (u *UrlService) Path() string               { return u.loc.Path() }
func (u *UrlService) Search() map[string][]string { return u.loc.Search() }
func (u *UrlService) Hash() string                { return u.loc.Hash() }

// Config returns the LocationConfig this service was built with.
func (u *UrlService) Config() location.Config { return u.cfg }

// Match resolves parts against Rules without dispatching the result,
// matching spec's `match(urlParts) → MatchResult|null`.
func (u *UrlService) Match(parts urlrule.UrlParts) (urlrule.Result, bool) {
	return u.Rules.Resolve(parts, u)
}

// Sync re-evaluates the current location against Rules and dispatches
// whatever the winning rule's handler produced: a string rewrites the
// URL (as a history replace, since the source was the URL itself); a
// *transition.TargetState or *TargetDescriptor starts a navigation
// tagged Source: "url" so the resulting Transition's URL write-back is
// suppressed (the URL is already correct, having driven the match).
func (u *UrlService) Sync(ctx context.Context) {
	parts := urlrule.UrlParts{Path: u.loc.Path(), Search: u.loc.Search(), Hash: u.loc.Hash()}
	result, ok := u.Match(parts)
	if !ok {
		return
	}
	u.dispatch(ctx, result.Outcome)
}

func (u *UrlService) dispatch(ctx context.Context, outcome urlrule.HandlerResult) {
	switch v := outcome.(type) {
	case nil:
		return
	case string:
		u.loc.URL(v, true)
	case *transition.TargetState:
		v.Options.Source = "url"
		u.states.Go(ctx, v.Name, v.Params, v.Options)
	case *TargetDescriptor:
		opts := v.Options
		opts.Source = "url"
		u.states.Go(ctx, v.State, v.Params, opts)
	}
}

// Listen subscribes Sync to externally driven location changes when
// enabled is true, or unsubscribes when false. Enabling twice is a
// no-op; unless DeferIntercept(true) was called first, enabling also
// runs one immediate Sync for the URL already in place at startup.
func (u *UrlService) Listen(ctx context.Context, enabled bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if enabled {
		if u.listening {
			return
		}
		u.listening = true
		u.unregister = u.loc.OnChange(func(string) { u.Sync(ctx) })
		if !u.deferred {
			go u.Sync(ctx)
		}
		return
	}
	if u.listening {
		u.unregister()
		u.unregister = nil
		u.listening = false
	}
}

// DeferIntercept controls whether Listen(ctx, true) runs an immediate
// initial Sync; a host that wants to finish its own startup sequencing
// before the first URL evaluation fires sets this to true beforehand.
func (u *UrlService) DeferIntercept(deferred bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deferred = deferred
}

// writeBack issues the post-success URL rewrite spec §4.5's onSuccess
// phase calls for, formatting tr.To's leaf state's URL and writing it
// unless the Transition's own Options suppress it.
func (u *UrlService) writeBack(tr *transition.Transition) {
	if tr.Options.Source == "url" || tr.Options.NoLocation {
		return
	}
	leaf := tr.To.Leaf()
	if leaf == nil || leaf.State.Navigable == nil || leaf.State.Navigable.URL == nil {
		return
	}
	if formatted, ok := u.format(leaf.State.Navigable.URL, leaf.Params); ok {
		u.loc.URL(formatted, false)
	}
}

func (u *UrlService) format(m *urlmatcher.Matcher, params map[string]any) (string, bool) {
	path, search, hash, ok := m.Format(params)
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

// ruleFactory bridges state.Registry registration events into url rules,
// implementing state.RuleSink (the "URL Rule Factory" in the spec's
// dependency order). A concrete, non-abstract state with a URL gets a
// STATE-kind rule; a future state's rule lazy-loads and re-resolves
// before producing a target, realizing spec §8 scenario S3.
type ruleFactory struct {
	engine *urlrule.Engine
	urlSvc *UrlService
	states *StateService
}

func (f *ruleFactory) AddStateRule(s *state.State) (func(), error) {
	matcher := s.URL
	rule := &urlrule.Rule{
		Kind:    urlrule.State,
		Matcher: matcher,
		Match: func(parts urlrule.UrlParts, _ any) urlrule.Match {
			params, ok := matcher.Exec(parts.Path, parts.Search, parts.Hash)
			if !ok {
				return urlrule.Match{}
			}
			return urlrule.Match{Matched: params, MatchPriority: float64(len(matcher.PathParams()))}
		},
		Handler: func(m urlrule.Match, parts urlrule.UrlParts, _ any) urlrule.HandlerResult {
			params, _ := m.Matched.(map[string]any)
			return f.resolve(s, params, parts)
		},
	}
	dereg := f.engine.Add(rule)
	return dereg, nil
}

func (f *ruleFactory) resolve(s *state.State, params map[string]any, parts urlrule.UrlParts) urlrule.HandlerResult {
	if s.Future && s.LazyLoad != nil {
		if err := f.states.LazyLoad(s.Name); err != nil {
			return nil
		}
		if result, ok := f.engine.Resolve(parts, f.urlSvc); ok {
			return result.Outcome
		}
		return nil
	}
	return transition.NewTargetState(s.Name, params, transition.Options{})
}
