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

package urlmatcher

import (
	"testing"

	"github.com/rivaas-dev/waypoint/paramtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T, pattern string, cfg Config) *Matcher {
	t.Helper()
	m, err := New(pattern, cfg, paramtype.NewRegistry())
	require.NoError(t, err)
	return m
}

// S1: Register /users/:id, exec('/users/100%25') -> {id: '100%'};
// format({id:'100%'}) -> '/users/100%25'.
func TestS1PercentRoundTrip(t *testing.T) {
	m := newTestMatcher(t, "/users/:id", Config{StrictMode: true})

	params, ok := m.Exec("/users/100%25", nil, "")
	require.True(t, ok)
	assert.Equal(t, "100%", params["id"])

	path, _, _, ok := m.Format(map[string]any{"id": "100%"})
	require.True(t, ok)
	assert.Equal(t, "/users/100%25", path)
}

func TestExecNoMatch(t *testing.T) {
	m := newTestMatcher(t, "/users/:id", Config{StrictMode: true})
	_, ok := m.Exec("/accounts/1", nil, "")
	assert.False(t, ok)
}

func TestTypedParam(t *testing.T) {
	m := newTestMatcher(t, "/users/{id:int}", Config{StrictMode: true})
	params, ok := m.Exec("/users/42", nil, "")
	require.True(t, ok)
	assert.Equal(t, 42, params["id"])

	_, ok = m.Exec("/users/not-a-number", nil, "")
	assert.False(t, ok)
}

func TestInlineRegexpParam(t *testing.T) {
	m := newTestMatcher(t, "/foo/{repeat:[0-9]+}", Config{StrictMode: true})
	_, ok := m.Exec("/foo/123", nil, "")
	assert.True(t, ok)
	_, ok = m.Exec("/foo/abc", nil, "")
	assert.False(t, ok)
}

func TestUnbalancedParensFails(t *testing.T) {
	_, err := New("/foo/{bad:(abc}", Config{}, paramtype.NewRegistry())
	assert.Error(t, err)
}

func TestSearchParams(t *testing.T) {
	m := newTestMatcher(t, "/search?from&to", Config{StrictMode: true})
	params, ok := m.Exec("/search", map[string][]string{"from": {"1"}, "to": {"2"}}, "")
	require.True(t, ok)
	assert.Equal(t, "1", params["from"])
	assert.Equal(t, "2", params["to"])
}

func TestArrayModeQuery(t *testing.T) {
	m := newTestMatcher(t, "/items?ids[]", Config{StrictMode: true})
	params, ok := m.Exec("/items", map[string][]string{"ids": {"1", "2", "3"}}, "")
	require.True(t, ok)
	assert.Equal(t, []any{"1", "2", "3"}, params["ids"])

	// a single value in an explicit array-mode param stays a list.
	params, ok = m.Exec("/items", map[string][]string{"ids": {"1"}}, "")
	require.True(t, ok)
	assert.Equal(t, []any{"1"}, params["ids"])
}

func TestArrayModeAutoUnwrapsSingleton(t *testing.T) {
	m := newTestMatcher(t, "/items?tag", Config{StrictMode: true})
	params, ok := m.Exec("/items", map[string][]string{"tag": {"only"}}, "")
	require.True(t, ok)
	assert.Equal(t, "only", params["tag"])
}

func TestHashParam(t *testing.T) {
	m := newTestMatcher(t, "/foo#bar", Config{StrictMode: true})
	params, ok := m.Exec("/foo", nil, "section1")
	require.True(t, ok)
	assert.Equal(t, "section1", params["bar"])
}

func TestStrictModeTrailingSlash(t *testing.T) {
	strict := newTestMatcher(t, "/foo", Config{StrictMode: true})
	_, ok := strict.Exec("/foo/", nil, "")
	assert.False(t, ok)

	lenient := newTestMatcher(t, "/foo", Config{StrictMode: false})
	_, ok = lenient.Exec("/foo/", nil, "")
	assert.True(t, ok)
	_, ok = lenient.Exec("/foo//", nil, "")
	assert.False(t, ok, "multiple trailing slashes are never tolerated")
}

func TestCaseInsensitive(t *testing.T) {
	m := newTestMatcher(t, "/Foo", Config{StrictMode: true, CaseInsensitive: true})
	_, ok := m.Exec("/foo", nil, "")
	assert.True(t, ok)
}

func TestCatchallArrayRoundTrip(t *testing.T) {
	m := newTestMatcher(t, "/files/*path[]", Config{StrictMode: true})
	path, _, _, ok := m.Format(map[string]any{"path": []any{"a", "b-c", "d"}})
	require.True(t, ok)

	params, ok := m.Exec(path, nil, "")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b-c", "d"}, params["path"])
}

func TestPlainCatchallRoundTrip(t *testing.T) {
	m := newTestMatcher(t, "/files/*path", Config{StrictMode: true})
	path, _, _, ok := m.Format(map[string]any{"path": "a/b/c"})
	require.True(t, ok)
	assert.Equal(t, "/files/a/b/c", path)

	params, ok := m.Exec(path, nil, "")
	require.True(t, ok)
	assert.Equal(t, "a/b/c", params["path"])
}

func TestAppendAssociativity(t *testing.T) {
	reg := paramtype.NewRegistry()
	a, _ := New("/a", Config{StrictMode: true}, reg)
	b, _ := New("/:b", Config{StrictMode: true}, reg)
	c, _ := New("/c/:c", Config{StrictMode: true}, reg)

	ab, err := a.Append(b)
	require.NoError(t, err)
	abc, err := ab.Append(c)
	require.NoError(t, err)

	bc, err := b.Append(c)
	require.NoError(t, err)
	a_bc, err := a.Append(bc)
	require.NoError(t, err)

	params1, ok1 := abc.Exec("/a/xyz/c/42", nil, "")
	params2, ok2 := a_bc.Exec("/a/xyz/c/42", nil, "")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, params1, params2)
}

func TestOrderingStaticBeatsParam(t *testing.T) {
	reg := paramtype.NewRegistry()
	withParams, _ := New("/foo/:p1/:p2", Config{StrictMode: true}, reg)
	withStatic, _ := New("/foo/:p1/AAA", Config{StrictMode: true}, reg)

	assert.Negative(t, Compare(withStatic, withParams), "static-tailed matcher should sort before the all-param one")
}

func TestOrderingDeeperWins(t *testing.T) {
	reg := paramtype.NewRegistry()
	shallow, _ := New("/a", Config{StrictMode: true}, reg)
	deep, _ := New("/a/b", Config{StrictMode: true}, reg)
	assert.Negative(t, Compare(deep, shallow))
}

func TestOrderingMoreQueryParamsWins(t *testing.T) {
	reg := paramtype.NewRegistry()
	few, _ := New("/a?x", Config{StrictMode: true}, reg)
	many, _ := New("/a?x&y", Config{StrictMode: true}, reg)
	assert.Negative(t, Compare(many, few))
}
