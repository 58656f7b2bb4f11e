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
	"net/url"
	"sync"
)

// Memory is a Services implementation backed by a plain in-process
// string, with no history stack and no real browser behind it. It is
// the implementation test code and headless embeddings reach for.
type Memory struct {
	mu        sync.Mutex
	current   string
	listeners map[int]func(string)
	nextID    int
}

// NewMemory returns a Memory location starting at initialURL (an empty
// string means "/").
func NewMemory(initialURL string) *Memory {
	if initialURL == "" {
		initialURL = "/"
	}
	return &Memory{current: initialURL, listeners: make(map[int]func(string))}
}

// URL implements Services.
func (m *Memory) URL(newURL string, replace bool) string {
	m.mu.Lock()
	if newURL == "" {
		cur := m.current
		m.mu.Unlock()
		return cur
	}
	m.current = newURL
	m.mu.Unlock()
	// replace has no observable effect without a history stack; it is
	// accepted so callers written against the interface don't need a
	// type switch, matching how the reference JS memory location
	// service accepts but ignores it too.
	_ = replace
	return newURL
}

// Path implements Services.
func (m *Memory) Path() string {
	return pathOf(m.snapshot())
}

// Search implements Services.
func (m *Memory) Search() map[string][]string {
	return searchOf(m.snapshot())
}

// Hash implements Services.
func (m *Memory) Hash() string {
	return hashOf(m.snapshot())
}

func (m *Memory) snapshot() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnChange implements Services.
func (m *Memory) OnChange(cb func(url string)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = cb
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Notify simulates an externally driven URL change (what a real
// browser's popstate/hashchange event delivers): it sets the current
// URL and fires every registered listener, without going through URL's
// push/replace semantics.
func (m *Memory) Notify(newURL string) {
	m.mu.Lock()
	m.current = newURL
	cbs := make([]func(string), 0, len(m.listeners))
	for _, cb := range m.listeners {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()
	for _, cb := range cbs {
		cb(newURL)
	}
}

// pathOf, searchOf and hashOf share the raw-URL decomposition every
// Services implementation needs; they tolerate a bare path with no
// scheme/host, which is all Memory and Hash ever store.
func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "/"
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

func searchOf(raw string) map[string][]string {
	u, err := url.Parse(raw)
	if err != nil {
		return map[string][]string{}
	}
	return map[string][]string(u.Query())
}

func hashOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Fragment
}
