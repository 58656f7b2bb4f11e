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

package transition

import (
	"reflect"

	"github.com/rivaas-dev/waypoint/state"
)

// Options carries the per-navigation flags a caller or a hook can set on
// a TargetState: whether this is a reload of the same state/params
// (bypasses IGNORED), the source that initiated the navigation ("url"
// navigations suppress the URL write-back onSuccess would otherwise
// issue), and an explicit opt-out of that write-back for any other
// source.
type Options struct {
	Reload bool
	Source string
	// NoLocation, when true, suppresses the URL write-back a successful
	// Transition would otherwise issue, the same way Source == "url"
	// does implicitly (the URL is already right because that's where
	// the navigation came from).
	NoLocation bool
}

// TargetState is an unresolved navigation request: a state name plus
// params plus options, not yet checked against the registry. Hooks that
// return a TargetState redirect the in-flight Transition to it.
type TargetState struct {
	Name    string
	Params  map[string]any
	Options Options

	state *state.State // set by Validate once looked up, nil before
	valid bool
}

// NewTargetState builds a TargetState for name/params with opts applied.
func NewTargetState(name string, params map[string]any, opts Options) *TargetState {
	return &TargetState{Name: name, Params: params, Options: opts}
}

// Validate resolves t.Name against reg and checks t.Params against the
// resolved State's URL matcher (when it has one). It is idempotent: a
// second call re-validates rather than trusting the cached result, since
// the registry may have changed between calls.
func (t *TargetState) Validate(reg *state.Registry) bool {
	s, ok := reg.Get(t.Name)
	if !ok || s.Abstract {
		t.valid = false
		return false
	}
	if s.URL != nil && t.Params != nil && !s.URL.Validates(t.Params) {
		t.valid = false
		return false
	}
	t.state = s
	t.valid = true
	return true
}

// State returns the State t was validated against, or nil if Validate
// has not been called or returned false.
func (t *TargetState) State() *state.State {
	if !t.valid {
		return nil
	}
	return t.state
}

// Valid reports the outcome of the most recent Validate call.
func (t *TargetState) Valid() bool { return t.valid }

// Equivalent reports whether t and other would produce the same
// Transition under the supersession rule: same target name, same
// params, same Reload flag.
func (t *TargetState) Equivalent(other *TargetState) bool {
	if other == nil {
		return false
	}
	if t.Name != other.Name || t.Options.Reload != other.Options.Reload {
		return false
	}
	if len(t.Params) != len(other.Params) {
		return false
	}
	for k, v := range t.Params {
		ov, ok := other.Params[k]
		if !ok || !reflect.DeepEqual(ov, v) {
			return false
		}
	}
	return true
}
