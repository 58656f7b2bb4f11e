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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literalMatch(path string) MatchFn {
	return func(parts UrlParts, router any) Match {
		if parts.Path == path {
			return Match{Matched: path, MatchPriority: 0}
		}
		return Match{}
	}
}

func constHandler(result HandlerResult) HandlerFn {
	return func(Match, UrlParts, any) HandlerResult { return result }
}

func TestHigherPriorityWins(t *testing.T) {
	e := NewEngine()
	e.Add(&Rule{Kind: Other, Priority: 0, Match: literalMatch("/x"), Handler: constHandler("low")})
	e.Add(&Rule{Kind: Other, Priority: 10, Match: literalMatch("/x"), Handler: constHandler("high")})

	res, ok := e.Resolve(UrlParts{Path: "/x"}, nil)
	require.True(t, ok)
	assert.Equal(t, "high", res.Outcome)
}

func TestGroupHighestMatchPriorityWins(t *testing.T) {
	e := NewEngine()
	e.Add(&Rule{Kind: Other, Priority: 0, Handler: constHandler("a"), Match: func(UrlParts, any) Match {
		return Match{Matched: true, MatchPriority: 1}
	}})
	e.Add(&Rule{Kind: Other, Priority: 0, Handler: constHandler("b"), Match: func(UrlParts, any) Match {
		return Match{Matched: true, MatchPriority: 5}
	}})

	res, ok := e.Resolve(UrlParts{Path: "/x"}, nil)
	require.True(t, ok)
	assert.Equal(t, "b", res.Outcome)
}

func TestFallsThroughToLowerGroupWhenHigherGroupMisses(t *testing.T) {
	e := NewEngine()
	e.Add(&Rule{Kind: Other, Priority: 0, Match: literalMatch("/y"), Handler: constHandler("low")})
	e.Add(&Rule{Kind: State, Priority: 0, Match: literalMatch("/x"), Handler: constHandler("high")})

	res, ok := e.Resolve(UrlParts{Path: "/y"}, nil)
	require.True(t, ok, "the low-priority rule should still be reached since the high-priority group had no match")
	assert.Equal(t, "low", res.Outcome)
}

func TestHigherGroupMatchStopsLowerGroupFromBeingConsulted(t *testing.T) {
	e := NewEngine()
	lowerCalled := false
	e.Add(&Rule{Kind: Other, Priority: 0, Handler: constHandler("low"), Match: func(UrlParts, any) Match {
		lowerCalled = true
		return Match{Matched: true}
	}})
	e.Add(&Rule{Kind: State, Priority: 0, Match: literalMatch("/x"), Handler: constHandler("high")})

	res, ok := e.Resolve(UrlParts{Path: "/x"}, nil)
	require.True(t, ok)
	assert.Equal(t, "high", res.Outcome)
	assert.False(t, lowerCalled, "the lower-weight group must not even be evaluated once the higher one matches")
}

func TestOtherwiseConsultedLast(t *testing.T) {
	e := NewEngine()
	e.Add(&Rule{Kind: Other, Match: literalMatch("/known"), Handler: constHandler("known")})
	e.Otherwise(&Rule{Match: func(UrlParts, any) Match { return Match{Matched: true} }, Handler: constHandler("fallback")})

	res, ok := e.Resolve(UrlParts{Path: "/unknown"}, nil)
	require.True(t, ok)
	assert.Equal(t, "fallback", res.Outcome)
}

func TestInitialFiresOnlyOnceAndOnlyForEmptyPath(t *testing.T) {
	e := NewEngine()
	calls := 0
	e.Initial(&Rule{
		Match:   func(UrlParts, any) Match { calls++; return Match{Matched: true} },
		Handler: constHandler("initial"),
	})

	res, ok := e.Resolve(UrlParts{Path: "/"}, nil)
	require.True(t, ok)
	assert.Equal(t, "initial", res.Outcome)

	_, ok = e.Resolve(UrlParts{Path: "/"}, nil)
	assert.False(t, ok, "second resolve with no other rules and no otherwise should miss")
	assert.Equal(t, 1, calls, "initial must only fire on the first evaluation")
}

func TestDeregisterRemovesRule(t *testing.T) {
	e := NewEngine()
	dereg := e.Add(&Rule{Kind: Other, Match: literalMatch("/x"), Handler: constHandler("x")})
	dereg()

	_, ok := e.Resolve(UrlParts{Path: "/x"}, nil)
	assert.False(t, ok)
}
