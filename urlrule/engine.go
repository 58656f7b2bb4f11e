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

package urlrule

import (
	"sort"
	"sync"

	"github.com/rivaas-dev/waypoint/urlmatcher"
)

// Engine holds the registered rules plus the special otherwise/initial
// rules, and resolves an incoming URL against them.
type Engine struct {
	mu sync.Mutex

	rules     []*Rule
	otherwise *Rule
	initial   *Rule

	nextID     int64
	sortedDirty bool
	sorted     []*Rule

	initialFired bool
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{sortedDirty: true}
}

// Add registers r, assigns it an $id in insertion order, defaults its
// Priority to 0, and returns a deregistration closure.
func (e *Engine) Add(r *Rule) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	r.ID = e.nextID
	e.rules = append(e.rules, r)
	e.sortedDirty = true

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, existing := range e.rules {
			if existing == r {
				e.rules = append(e.rules[:i], e.rules[i+1:]...)
				e.sortedDirty = true
				return
			}
		}
	}
}

// When constructs and adds a URLMatcher or Regexp rule (the caller picks
// the Kind and Match/Handler) with an optional priority override.
func (e *Engine) When(r *Rule, priority *float64) func() {
	if priority != nil {
		r.Priority = *priority
	}
	return e.Add(r)
}

// Otherwise stores handler separately; it is consulted only after every
// other rule has failed to match.
func (e *Engine) Otherwise(r *Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.otherwise = r
}

// Initial stores handler to fire only on the first URL evaluation, and
// only when that URL is empty or "/".
func (e *Engine) Initial(r *Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initial = r
}

// ensureSorted stably sorts rules by (a) priority desc, (b) type weight
// desc, (c) matcher specificity for STATE/URLMatcher rules, (d) $id asc
// for everything else.
func (e *Engine) ensureSorted() {
	if !e.sortedDirty {
		return
	}
	sorted := make([]*Rule, len(e.rules))
	copy(sorted, e.rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if aw, bw := a.Kind.typeWeight(), b.Kind.typeWeight(); aw != bw {
			return aw > bw
		}
		if a.Matcher != nil && b.Matcher != nil {
			if c := urlmatcher.Compare(a.Matcher, b.Matcher); c != 0 {
				return c < 0
			}
		}
		return a.ID < b.ID
	})
	e.sorted = sorted
	e.sortedDirty = false
}

// sameGroup reports whether two rules belong to the same sort-equal
// group: same priority, same type weight, and (for matcher rules) equal
// specificity.
func sameGroup(a, b *Rule) bool {
	if a.Priority != b.Priority {
		return false
	}
	if a.Kind.typeWeight() != b.Kind.typeWeight() {
		return false
	}
	if a.Matcher != nil && b.Matcher != nil {
		return urlmatcher.Compare(a.Matcher, b.Matcher) == 0
	}
	return a.Matcher == nil && b.Matcher == nil
}

// Result is what Engine.Resolve returns: the winning rule, its Match,
// and the HandlerResult from invoking Handler.
type Result struct {
	Rule    *Rule
	Match   Match
	Outcome HandlerResult
}

// Resolve walks the sorted rule list for parts, consulting Otherwise if
// nothing matches, and Initial on the very first call if parts is the
// empty path. It returns ok=false only when no rule (including
// otherwise) produced a result.
func (e *Engine) Resolve(parts UrlParts, router any) (Result, bool) {
	e.mu.Lock()
	e.ensureSorted()
	sorted := e.sorted
	initial := e.initial
	firstCall := !e.initialFired
	e.initialFired = true
	otherwise := e.otherwise
	e.mu.Unlock()

	if firstCall && initial != nil && (parts.Path == "" || parts.Path == "/") {
		if m := initial.Match(parts, router); m.Matched != nil {
			return Result{Rule: initial, Match: m, Outcome: initial.Handler(m, parts, router)}, true
		}
	}

	var best *Rule
	var bestMatch Match
	var groupBest *Rule
	var groupBestMatch Match
	haveGroupBest := false

	flushGroup := func() {
		if haveGroupBest {
			best, bestMatch = groupBest, groupBestMatch
		}
	}

	for i, r := range sorted {
		if i > 0 && !sameGroup(sorted[i-1], r) {
			flushGroup()
			if best != nil {
				break
			}
			haveGroupBest = false
		}
		m := r.Match(parts, router)
		if m.Matched == nil {
			continue
		}
		if !haveGroupBest || m.MatchPriority > groupBestMatch.MatchPriority {
			groupBest, groupBestMatch, haveGroupBest = r, m, true
		}
	}
	flushGroup()

	if best != nil {
		return Result{Rule: best, Match: bestMatch, Outcome: best.Handler(bestMatch, parts, router)}, true
	}

	if otherwise != nil {
		m := otherwise.Match(parts, router)
		return Result{Rule: otherwise, Match: m, Outcome: otherwise.Handler(m, parts, router)}, true
	}
	return Result{}, false
}
