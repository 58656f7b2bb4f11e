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

import "fmt"

// Append concatenates child onto the receiver: the combined matcher's
// compiled regex is the parent's followed by the child's, path segments
// are parent-then-child in order, and search/hash params are merged with
// the child overriding the parent on name collisions. Append is
// associative: (a.Append(b)).Append(c) matches the same URLs as
// a.Append(b.Append(c)).
func (m *Matcher) Append(child *Matcher) (*Matcher, error) {
	if child.cfg.CaseInsensitive != m.cfg.CaseInsensitive {
		return nil, fmt.Errorf("urlmatcher: cannot append matcher with differing CaseInsensitive flag")
	}

	combined := &Matcher{
		cfg:      m.cfg,
		pattern:  m.pattern + child.pattern,
		segments: append(append([]segment{}, m.segments...), child.segments...),
	}
	combined.pathParams = append(append([]*Param{}, m.pathParams...), child.pathParams...)

	merged := make(map[string]*Param, len(m.searchParams)+len(child.searchParams))
	var order []string
	for _, p := range m.searchParams {
		if _, ok := merged[p.Name]; !ok {
			order = append(order, p.Name)
		}
		merged[p.Name] = p
	}
	for _, p := range child.searchParams {
		if _, ok := merged[p.Name]; !ok {
			order = append(order, p.Name)
		}
		merged[p.Name] = p
	}
	for _, name := range order {
		combined.searchParams = append(combined.searchParams, merged[name])
	}

	if child.explicitHash {
		combined.hashParam = child.hashParam
		combined.explicitHash = true
	} else {
		combined.hashParam = m.hashParam
		combined.explicitHash = m.explicitHash
	}

	// Strict mode is resolved per the more specific (child) matcher,
	// since only the leaf-most state's URL fragment knows whether a
	// trailing slash should be tolerated on the combined path.
	combined.cfg.StrictMode = child.cfg.StrictMode

	re, err := compileRegex(combined.segments, combined.cfg)
	if err != nil {
		return nil, fmt.Errorf("urlmatcher: %w", err)
	}
	combined.re = re
	return combined, nil
}
