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

package location

import (
	"fmt"
	"strings"
)

// PushState is a Services implementation that keeps the application's
// path and search as the real URL path (HTML5 history style), prefixed
// by a configured base href, with no hash-fragment indirection.
type PushState struct {
	mem *Memory
	cfg *StaticConfig
}

// NewPushState returns a PushState location starting at initialURL
// (relative to cfg's BaseHref).
func NewPushState(initialURL string, cfg *StaticConfig) *PushState {
	if initialURL == "" {
		initialURL = "/"
	}
	return &PushState{mem: NewMemory(joinBase(cfg.BaseHref(), initialURL)), cfg: cfg}
}

// URL implements Services.
func (p *PushState) URL(newURL string, replace bool) string {
	if newURL == "" {
		return p.stripBase(p.mem.URL("", false))
	}
	full := joinBase(p.cfg.BaseHref(), newURL)
	p.mem.URL(full, replace)
	return newURL
}

func (p *PushState) stripBase(raw string) string {
	base := strings.TrimSuffix(p.cfg.BaseHref(), "/")
	if base != "" && strings.HasPrefix(raw, base) {
		rest := raw[len(base):]
		if rest == "" {
			return "/"
		}
		return rest
	}
	return raw
}

// Path implements Services.
func (p *PushState) Path() string { return pathOf(p.stripBase(p.mem.URL("", false))) }

// Search implements Services.
func (p *PushState) Search() map[string][]string { return searchOf(p.stripBase(p.mem.URL("", false))) }

// Hash implements Services.
func (p *PushState) Hash() string { return hashOf(p.mem.URL("", false)) }

// OnChange implements Services.
func (p *PushState) OnChange(cb func(url string)) func() {
	return p.mem.OnChange(func(raw string) { cb(p.stripBase(raw)) })
}

// Notify simulates an externally driven change (browser back/forward),
// for embedding code without a real window.history.
func (p *PushState) Notify(rawURL string) { p.mem.Notify(joinBase(p.cfg.BaseHref(), rawURL)) }

func joinBase(base, rel string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return base + rel
}

// ParseBaseHref extracts the usable base path out of an HTML
// "<base href>" value. It strips a leading scheme://host origin if
// present, and requires what remains to either end in "/" (a directory
// base, the common case) or name a bare file with no further path
// segments (e.g. "/app/index.html"); anything else is rejected since it
// would make relative URL joining ambiguous.
func ParseBaseHref(href string) (string, error) {
	rest := href
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[j:]
		} else {
			rest = "/"
		}
	}
	if rest == "" {
		rest = "/"
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	if strings.HasSuffix(rest, "/") {
		return rest, nil
	}
	// a bare filename base: exactly one more path segment after the
	// last "/", no further nesting implied.
	last := strings.LastIndexByte(rest, '/')
	segment := rest[last+1:]
	if segment == "" || strings.ContainsAny(segment, "?#") {
		return "", fmt.Errorf("location: invalid base href %q", href)
	}
	return rest, nil
}
