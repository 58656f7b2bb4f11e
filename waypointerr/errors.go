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

// Package waypointerr holds the two error families the router produces:
// ConfigError, a synchronous failure raised while building or registering
// state/URL configuration, and Rejection, the asynchronous outcome of a
// failed or superseded Transition.
package waypointerr

import (
	"errors"
	"fmt"
)

// Static sentinel errors. Wrap with fmt.Errorf and %w when context is
// needed.
var (
	ErrEmptyName          = errors.New("state name must not be empty")
	ErrDuplicateState     = errors.New("duplicate state")
	ErrUnknownParent      = errors.New("parent state not found")
	ErrUnresolvedRelative = errors.New("relative state reference did not resolve")
	ErrCyclicResolve      = errors.New("cyclic resolve dependency")
	ErrUnknownToken       = errors.New("unknown resolve token")
	ErrTooManyRedirects   = errors.New("too many consecutive Transition redirects")
	ErrInvalidTargetState = errors.New("target state is not valid against the current registry")
)

// ConfigError reports a synchronous failure while registering state or URL
// configuration: an invalid name, a duplicate registration, an invalid
// URL pattern, or an unresolved relative state reference. It is always returned directly
// (never via a Rejection), since it happens outside of any transition.
type ConfigError struct {
	Op  string // the operation that failed, e.g. "state.Register"
	Err error
}

func (e *ConfigError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err as a ConfigError attributed to op.
func NewConfigError(op string, err error) *ConfigError {
	return &ConfigError{Op: op, Err: err}
}

// CyclicResolveError reports a resolve dependency cycle discovered while
// walking a ResolveContext. Chain lists the resolve tokens on the cycle,
// in discovery order.
type CyclicResolveError struct {
	Chain []string
}

func (e *CyclicResolveError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCyclicResolve, e.Chain)
}

func (e *CyclicResolveError) Unwrap() error { return ErrCyclicResolve }
