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

package paramtype

import (
	"fmt"
	"sync"
)

// Registry holds the set of named Types known to a router instance. It is
// seeded with the built-in types and can be extended with host-provided
// ones via Register.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry returns a Registry pre-populated with the built-in types:
// string, int, bool, date, json, any, hash, path, query.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*Type, 16)}
	for _, t := range []*Type{
		builtinString(), builtinInt(), builtinBool(), builtinDate(),
		builtinJSON(), builtinAny(), builtinHash(), builtinPath(), builtinQuery(),
	} {
		r.types[t.Name] = t
	}
	return r
}

// Register adds a custom Type to the registry. Registering a Type whose
// Name collides with an existing one is a configuration error, reported
// synchronously (it never produces a Rejection).
func (r *Registry) Register(t *Type) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("paramtype: type must have a non-empty Name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("paramtype: duplicate type name %q", t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Get returns the named Type and whether it was found.
func (r *Registry) Get(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// MustGet returns the named Type or the "any" fallback if the name is
// unknown; used when a declared type name didn't resolve, matching the
// tolerant default of the original.
func (r *Registry) MustGet(name string) *Type {
	if t, ok := r.Get(name); ok {
		return t
	}
	t, _ := r.Get(Any)
	return t
}
