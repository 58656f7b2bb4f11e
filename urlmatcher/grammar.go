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
	"strings"

	"github.com/rivaas-dev/waypoint/paramtype"
)

// segment is one element of a compiled path: either a literal run of
// characters or a path Param (possibly a catch-all). Every "/" is a
// literal segment of its own, so deeper paths have more segments.
type segment struct {
	literal string
	param   *Param // nil for a literal segment
}

// parsed is the result of splitting a raw pattern into its three
// grammar regions: path, search and hash.
type parsed struct {
	segments       []segment
	searchParams   []*Param
	hashParam      *Param // always non-nil; defaults to the implicit "#" param
	explicitHash   bool
}

// parsePattern implements the URL pattern grammar:
//
//	/literal                 literal segment
//	:name                    named path param, default type "path"
//	{name}                   same, alternate syntax
//	{name:regexp}            name with inline subpattern
//	{name:typeName}          name with a named ParamType
//	*name                    catch-all (greedy) path param
//	?q1&q2&{q3:type}         query parameters
//	#name                    hash fragment (always present as "#")
//	name[]                   array mode suffix
func parsePattern(pattern string, types *paramtype.Registry) (*parsed, error) {
	pathPart, searchPart, hashName := splitRegions(pattern)

	segs, err := parsePath(pathPart, types)
	if err != nil {
		return nil, err
	}
	search, err := parseSearch(searchPart, types)
	if err != nil {
		return nil, err
	}

	hashParam := &Param{Name: "#", Type: types.MustGet(paramtype.Hash), Location: LocationConfig, Raw: true, IsOptional: true}
	explicitHash := hashName != ""
	if explicitHash {
		name, array := stripArraySuffix(hashName)
		hashParam = &Param{Name: name, Type: types.MustGet(paramtype.Hash), Location: LocationConfig, Array: arrayModeOf(array), Raw: true, IsOptional: true}
	}

	return &parsed{segments: segs, searchParams: search, hashParam: hashParam, explicitHash: explicitHash}, nil
}

// splitRegions finds the top-level (brace-depth 0) '#' and '?' characters
// that divide a pattern into path, search and hash regions.
func splitRegions(pattern string) (path, search, hash string) {
	depth := 0
	hashIdx, qIdx := -1, -1
	for i, r := range pattern {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '#':
			if depth == 0 && hashIdx == -1 {
				hashIdx = i
			}
		case '?':
			if depth == 0 && qIdx == -1 {
				qIdx = i
			}
		}
	}

	end := len(pattern)
	if hashIdx != -1 {
		hash = pattern[hashIdx+1:]
		end = hashIdx
	}
	if qIdx != -1 && qIdx < end {
		search = pattern[qIdx+1 : end]
		end = qIdx
	}
	path = pattern[:end]
	return path, search, hash
}

func stripArraySuffix(name string) (string, bool) {
	if strings.HasSuffix(name, "[]") {
		return strings.TrimSuffix(name, "[]"), true
	}
	return name, false
}

func arrayModeOf(declared bool) ArrayMode {
	if declared {
		return ArrayAlways
	}
	return ArrayAuto
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func parsePath(path string, types *paramtype.Registry) ([]segment, error) {
	var segs []segment
	var lit strings.Builder

	flushLiteral := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(path) {
		c := path[i]
		switch c {
		case ':':
			flushLiteral()
			j := i + 1
			for j < len(path) && isIdentByte(path[j]) {
				j++
			}
			if strings.HasPrefix(path[j:], "[]") {
				j += 2
			}
			name, array := stripArraySuffix(path[i+1 : j])
			segs = append(segs, segment{param: &Param{
				Name: name, Type: types.MustGet(paramtype.Path),
				Location: LocationPath, Array: arrayModeOf(array),
			}})
			i = j

		case '*':
			flushLiteral()
			j := i + 1
			for j < len(path) && isIdentByte(path[j]) {
				j++
			}
			if strings.HasPrefix(path[j:], "[]") {
				j += 2
			}
			name, array := stripArraySuffix(path[i+1 : j])
			segs = append(segs, segment{param: &Param{
				Name: name, Type: types.MustGet(paramtype.Path),
				Location: LocationPath, Array: arrayModeOf(array), Catchall: true,
			}})
			i = j

		case '{':
			flushLiteral()
			end, err := findBraceClose(path, i)
			if err != nil {
				return nil, err
			}
			p, err := parseBraceParam(path[i+1:end], types)
			if err != nil {
				return nil, err
			}
			p.Location = LocationPath
			segs = append(segs, segment{param: p})
			i = end + 1

		case '/':
			flushLiteral()
			segs = append(segs, segment{literal: "/"})
			i++

		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushLiteral()
	return segs, nil
}

// findBraceClose returns the index of the '}' that closes the '{' at
// start, tracking nested braces (regex quantifiers like \d{3} nest).
func findBraceClose(s string, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("urlmatcher: unbalanced %q in pattern %q", "{}", s)
}

// parseBraceParam parses the contents of a {name}, {name:regexp} or
// {name:typeName} segment (braces already stripped) and validates that
// any inline regexp has balanced parens.
func parseBraceParam(body string, types *paramtype.Registry) (*Param, error) {
	name := body
	spec := ""
	if idx := strings.IndexByte(body, ':'); idx != -1 {
		name = body[:idx]
		spec = body[idx+1:]
	}
	name, array := stripArraySuffix(name)

	if spec == "" {
		return &Param{Name: name, Type: types.MustGet(paramtype.Path), Array: arrayModeOf(array)}, nil
	}

	if opens, closes := strings.Count(spec, "("), strings.Count(spec, ")"); opens != closes {
		return nil, fmt.Errorf("urlmatcher: unbalanced parens in {%s}", body)
	}

	if t, ok := types.Get(spec); ok {
		return &Param{Name: name, Type: t, Array: arrayModeOf(array)}, nil
	}

	// Not a registered type name: treat as an inline regexp subpattern,
	// reusing the default path type's value semantics with a tighter
	// match.
	base := types.MustGet(paramtype.Path)
	return &Param{Name: name, Type: base.WithPattern(spec), Array: arrayModeOf(array)}, nil
}

func parseSearch(search string, types *paramtype.Registry) ([]*Param, error) {
	if search == "" {
		return nil, nil
	}
	var params []*Param
	for _, part := range splitTopLevel(search, '&') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			p, err := parseBraceParam(part[1:len(part)-1], types)
			if err != nil {
				return nil, err
			}
			p.Location = LocationSearch
			p.IsOptional = true
			params = append(params, p)
			continue
		}
		name, array := stripArraySuffix(part)
		params = append(params, &Param{
			Name: name, Type: types.MustGet(paramtype.Query),
			Location: LocationSearch, Array: arrayModeOf(array), IsOptional: true,
		})
	}
	return params, nil
}

// splitTopLevel splits on sep outside of any {...} region.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
