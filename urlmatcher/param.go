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

// Package urlmatcher compiles URL patterns such as
// "/users/:id/details/{type}/{repeat:[0-9]+}?from&to" into a matcher that
// can execute a path+search against the pattern, format params back into a
// URL, and be concatenated with other matchers to build a full state URL
// from a tree of parent matchers.
package urlmatcher

import "github.com/rivaas-dev/waypoint/paramtype"

// Location identifies where a Param's value comes from in a URL.
type Location int

const (
	// LocationPath params come from the path portion of the URL.
	LocationPath Location = iota
	// LocationSearch params come from the query string.
	LocationSearch
	// LocationConfig params are read from neither the path nor the query
	// string. The hash param uses this location; its value comes from the
	// URL fragment.
	LocationConfig
)

// ArrayMode controls how a Param's value is wrapped as a list.
type ArrayMode int

const (
	// ArrayAuto unwraps a length-1 list to a scalar and wraps anything
	// else (0 or 2+ values) as a list. This is the default for search
	// params that did not explicitly request "[]".
	ArrayAuto ArrayMode = iota
	// ArrayAlways always represents the value as a []any, even with 0 or
	// 1 members.
	ArrayAlways
	// ArrayNever always represents the value as a scalar; only the first
	// occurrence of a search parameter is kept.
	ArrayNever
)

// SquashKind is the tag of a Squash policy.
type SquashKind int

const (
	// SquashNone never collapses a default value; the parameter is
	// always rendered in full.
	SquashNone SquashKind = iota
	// SquashTrue collapses a default value to the empty string.
	SquashTrue
	// SquashLiteral collapses a default value to a fixed literal token.
	SquashLiteral
)

// Squash is the policy for collapsing a parameter's default value when
// formatting a URL. It is a tagged union over SquashKind; Token is only
// meaningful when Kind is SquashLiteral.
type Squash struct {
	Kind  SquashKind
	Token string
}

// DefaultProvider supplies a Param's default value. A nil DefaultProvider
// means the parameter has no default and therefore cannot be squashed and
// must always be supplied.
type DefaultProvider func() any

// Param is a single path or search parameter parsed out of a URL pattern.
// State-level parameter declarations (squash policy aside, which lives
// here because Format needs it) add Dynamic/Inherit semantics on top of
// this matcher-level description.
type Param struct {
	Name     string
	Type     *paramtype.Type
	Location Location
	Array    ArrayMode
	Raw      bool
	// Catchall marks a "*name" greedy path param that can span multiple
	// path segments.
	Catchall bool
	Squash   Squash
	Default  DefaultProvider
	// IsOptional is true for search params (never required to be
	// present in the URL) and for path params with a Default.
	IsOptional bool
}

// HasDefault reports whether p carries a default value provider.
func (p *Param) HasDefault() bool {
	return p.Default != nil
}

// DefaultValue evaluates the Param's default, or nil if none is set.
func (p *Param) DefaultValue() any {
	if p.Default == nil {
		return nil
	}
	return p.Default()
}

// effectiveArray resolves ArrayAuto against a concrete value length,
// matching the "'auto' unwraps length-1 lists" rule.
func effectiveArray(mode ArrayMode, n int) bool {
	switch mode {
	case ArrayAlways:
		return true
	case ArrayNever:
		return false
	default: // ArrayAuto
		return n != 1
	}
}
