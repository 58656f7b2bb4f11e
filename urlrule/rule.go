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

// Package urlrule implements the URL rules engine: a priority-and-
// specificity-ordered set of rules that turn an incoming URL into either
// a rewrite or a navigation target.
package urlrule

import "github.com/rivaas-dev/waypoint/urlmatcher"

// Kind discriminates the five UrlRule variants.
type Kind int

const (
	// State rules are generated automatically from a registered state's
	// URL matcher.
	State Kind = iota
	// URLMatcher rules wrap a urlmatcher.Matcher directly.
	URLMatcher
	// Regexp rules match against a compiled Go regexp.
	Regexp
	// Raw rules run an arbitrary Match function with no structured
	// matcher at all.
	Raw
	// Other is the catch-all kind for host-defined rule shapes.
	Other
)

// typeWeight is the per-Kind contribution to the sort key described in
// STATE and URLMatcher share the highest weight, Regexp
// next, then Raw, then Other.
func (k Kind) typeWeight() int {
	switch k {
	case State, URLMatcher:
		return 4
	case Regexp:
		return 3
	case Raw:
		return 2
	default:
		return 1
	}
}

// UrlParts is the parsed incoming URL a rule's Match function inspects.
type UrlParts struct {
	Path   string
	Search map[string][]string
	Hash   string
}

// Match is the result of a successful MatchFn call; its zero value
// (nil Matched) means no match. MatchPriority is consulted to break
// ties within a sort-equal group of rules.
type Match struct {
	Matched       any
	MatchPriority float64
}

// MatchFn reports whether a rule applies to parts, returning a Match
// with Matched == nil if not.
type MatchFn func(parts UrlParts, router any) Match

// HandlerResult is the value a Rule's Handler returns: a rewritten URL
// string, a target descriptor/TargetState (opaque to this package, so
// left as `any`), or nil for no action.
type HandlerResult any

// HandlerFn runs once a rule's MatchFn wins; it receives the Match and
// the same UrlParts/router passed to MatchFn.
type HandlerFn func(match Match, parts UrlParts, router any) HandlerResult

// Rule is one entry in the URL rules engine.
type Rule struct {
	ID       int64 // monotonic registration order, assigned by Engine.Add
	Priority float64
	Kind     Kind
	Match    MatchFn
	Handler  HandlerFn

	// Matcher is set for State/URLMatcher rules so the engine can use
	// urlmatcher.Compare for specificity ordering; nil for Regexp/Raw/
	// Other rules.
	Matcher *urlmatcher.Matcher
}
