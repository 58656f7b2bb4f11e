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
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rivaas-dev/waypoint/paramtype"
)

// Config controls pattern-compile-time behavior shared by a whole tree of
// matchers (a parent's Config flows into children via Append).
type Config struct {
	// CaseInsensitive makes literal path segments match regardless of
	// case.
	CaseInsensitive bool
	// StrictMode, when true, requires an exact trailing-slash match.
	// When false, a single optional trailing slash is tolerated but
	// repeated trailing slashes are not.
	StrictMode bool
	// DefaultSquashPolicy is applied to any Param that does not specify
	// its own Squash explicitly (Squash.Kind == SquashNone with no
	// Token is ambiguous with "explicitly none", so New always
	// resolves unset-looking squash to this default, whether or not the
	// param declares a Default).
	DefaultSquashPolicy Squash
}

// Matcher is a compiled URL pattern: an ordered list of literal segments
// interleaved with path Params, a set of search Params, one hash Param,
// a regexp with one capture group per path param, and a formatter that
// reverses the process.
type Matcher struct {
	cfg          Config
	pattern      string
	segments     []segment
	pathParams   []*Param
	searchParams []*Param
	hashParam    *Param
	explicitHash bool
	re           *regexp.Regexp
}

// Types is the parameter-type registry a Matcher resolves named types
// against ({name:typeName} segments and defaults).
type Types = paramtype.Registry

// New compiles pattern into a Matcher using cfg and the given type
// registry.
func New(pattern string, cfg Config, types *Types) (*Matcher, error) {
	p, err := parsePattern(pattern, types)
	if err != nil {
		return nil, fmt.Errorf("urlmatcher: %w", err)
	}
	m := &Matcher{cfg: cfg, pattern: pattern, segments: p.segments, searchParams: p.searchParams, hashParam: p.hashParam, explicitHash: p.explicitHash}
	for _, s := range m.segments {
		if s.param != nil {
			applyDefaultSquash(s.param, cfg)
			m.pathParams = append(m.pathParams, s.param)
		}
	}
	for _, s := range m.searchParams {
		applyDefaultSquash(s, cfg)
	}
	re, err := compileRegex(m.segments, cfg)
	if err != nil {
		return nil, fmt.Errorf("urlmatcher: %w", err)
	}
	m.re = re
	return m, nil
}

func applyDefaultSquash(p *Param, cfg Config) {
	if p.Squash.Kind == SquashNone && cfg.DefaultSquashPolicy.Kind != SquashNone {
		p.Squash = cfg.DefaultSquashPolicy
	}
}

func compileRegex(segments []segment, cfg Config) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	if cfg.CaseInsensitive {
		b.WriteString("(?i)")
	}
	for _, s := range segments {
		if s.param == nil {
			b.WriteString(regexp.QuoteMeta(s.literal))
			continue
		}
		pattern := s.param.Type.Pattern
		if s.param.Catchall {
			b.WriteString("((?s:.*))")
		} else if pattern == "" {
			b.WriteString("([^/]*)")
		} else {
			b.WriteString("(" + pattern + ")")
		}
	}
	if !cfg.StrictMode {
		b.WriteString("/?")
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Pattern returns the raw pattern string the Matcher was compiled from.
func (m *Matcher) Pattern() string { return m.pattern }

// PathParams returns the path Params in declaration order.
func (m *Matcher) PathParams() []*Param { return m.pathParams }

// SearchParams returns the search (query) Params.
func (m *Matcher) SearchParams() []*Param { return m.searchParams }

// HashParam returns the matcher's hash Param (always non-nil; defaults
// to a Param named "#").
func (m *Matcher) HashParam() *Param { return m.hashParam }

// Exec matches path and search against the compiled pattern. It returns
// (params, true) on a match, or (nil, false) if the path doesn't match
// the regexp, or if a captured segment fails its type's Is() check.
func (m *Matcher) Exec(path string, search map[string][]string, hash string) (map[string]any, bool) {
	matches := m.re.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}
	params := make(map[string]any, len(m.pathParams)+len(m.searchParams)+1)
	for i, p := range m.pathParams {
		val, ok := decodePathValue(p, matches[i+1])
		if !ok {
			return nil, false
		}
		params[p.Name] = val
	}
	for _, p := range m.searchParams {
		raw, present := search[p.Name]
		if !present || len(raw) == 0 {
			if p.HasDefault() {
				params[p.Name] = p.DefaultValue()
			}
			continue
		}
		vals := make([]any, 0, len(raw))
		for _, rv := range raw {
			dv, err := p.Type.Decode(rv)
			if err != nil || !p.Type.Is(dv) {
				return nil, false
			}
			vals = append(vals, dv)
		}
		if effectiveArray(p.Array, len(vals)) {
			params[p.Name] = vals
		} else {
			params[p.Name] = vals[0]
		}
	}
	params[m.hashParam.Name] = hash
	return params, true
}

func decodePathValue(p *Param, raw string) (any, bool) {
	if isSquashed(p, raw) {
		if p.HasDefault() {
			return p.DefaultValue(), true
		}
		if raw == "" {
			return nil, false
		}
	}

	if p.Array == ArrayAlways {
		// Explicit array mode (including an array-mode catch-all):
		// members are "-"-joined, regardless of whether
		// the param is also a catch-all.
		members := splitArrayPath(raw)
		vals := make([]any, 0, len(members))
		for _, mem := range members {
			decoded := mem
			if !p.Raw {
				if unescaped, err := url.PathUnescape(mem); err == nil {
					decoded = unescaped
				}
			}
			v, err := p.Type.Decode(decoded)
			if err != nil || !p.Type.Is(v) {
				return nil, false
			}
			vals = append(vals, v)
		}
		return vals, true
	}

	// Plain scalar (including a non-array catch-all, whose captured span
	// may itself contain literal "/" separators).
	decoded := raw
	if !p.Raw {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			decoded = unescaped
		}
	}
	v, err := p.Type.Decode(decoded)
	if err != nil || !p.Type.Is(v) {
		return nil, false
	}
	return v, true
}

func isSquashed(p *Param, raw string) bool {
	if raw == "" {
		return true
	}
	switch p.Squash.Kind {
	case SquashTrue:
		return raw == ""
	case SquashLiteral:
		return raw == p.Squash.Token
	default:
		return false
	}
}

// Validates reports whether every declared param in params (falling back
// to defaults for absent ones) passes its type's Is() check.
func (m *Matcher) Validates(params map[string]any) bool {
	check := func(p *Param) bool {
		v, ok := params[p.Name]
		if !ok {
			if !p.HasDefault() {
				return !p.IsOptional
			}
			v = p.DefaultValue()
		}
		return p.Type.Is(v) || isArrayMember(p, v)
	}
	for _, p := range m.pathParams {
		if !check(p) {
			return false
		}
	}
	for _, p := range m.searchParams {
		if !check(p) {
			return false
		}
	}
	return true
}

func isArrayMember(p *Param, v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if !p.Type.Is(item) {
			return false
		}
	}
	return true
}

// Format renders params back into a path, a set of search values and a
// hash fragment. It returns ok=false if any declared value fails its
// type's Is() check (the "format(params) -> null" case).
func (m *Matcher) Format(params map[string]any) (path string, search url.Values, hash string, ok bool) {
	if !m.Validates(params) {
		return "", nil, "", false
	}

	var b strings.Builder
	for _, s := range m.segments {
		if s.param == nil {
			b.WriteString(s.literal)
			continue
		}
		v, present := params[s.param.Name]
		if !present {
			v = s.param.DefaultValue()
		}
		if s.param.HasDefault() && s.param.Type.Equals(v, s.param.DefaultValue()) && s.param.Squash.Kind != SquashNone {
			switch s.param.Squash.Kind {
			case SquashTrue:
				// emit nothing for this param
			case SquashLiteral:
				b.WriteString(s.param.Squash.Token)
			}
			continue
		}
		rendered, err := renderPathParam(s.param, v)
		if err != nil {
			return "", nil, "", false
		}
		b.WriteString(rendered)
	}
	path = b.String()

	search = url.Values{}
	for _, p := range m.searchParams {
		v, present := params[p.Name]
		if !present {
			continue
		}
		if p.HasDefault() && p.Type.Equals(v, p.DefaultValue()) {
			continue
		}
		if list, isList := v.([]any); isList {
			for _, item := range list {
				enc, err := p.Type.Encode(item)
				if err != nil {
					return "", nil, "", false
				}
				search.Add(p.Name, enc)
			}
			continue
		}
		enc, err := p.Type.Encode(v)
		if err != nil {
			return "", nil, "", false
		}
		search.Add(p.Name, enc)
	}

	if hv, present := params[m.hashParam.Name]; present {
		hash, _ = hv.(string)
	}
	return path, search, hash, true
}

func renderPathParam(p *Param, v any) (string, error) {
	if p.Array == ArrayAlways {
		list, isList := v.([]any)
		if !isList {
			list = []any{v}
		}
		members := make([]string, 0, len(list))
		for _, item := range list {
			s, err := p.Type.Encode(item)
			if err != nil {
				return "", err
			}
			members = append(members, s)
		}
		if p.Raw {
			return strings.Join(members, "-"), nil
		}
		return joinArrayPath(members), nil
	}

	s, err := p.Type.Encode(v)
	if err != nil {
		return "", err
	}
	if p.Raw {
		return s, nil
	}
	if p.Catchall {
		// A plain (non-array) catch-all's value may itself contain "/":
		// those are left unescaped rather than percent-encoded, matching
		// the raw "(?s:.*)" capture decodePathValue reads back.
		return encodeCatchallComponent(s), nil
	}
	return encodePathComponent(s), nil
}
