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

package waypointerr

import "fmt"

// RejectionType discriminates the outcomes a Transition can fail or
// terminate with.
type RejectionType int

const (
	// Superseded means a newer transition preempted this one.
	Superseded RejectionType = iota
	// Aborted means a hook returned false, or transition.Abort() was
	// called.
	Aborted
	// Invalid means the TargetState failed validation against the
	// registry.
	Invalid
	// Ignored means the transition was a no-op repeat of the current
	// state/params and options.Reload was not set.
	Ignored
	// Errored means a hook threw, returned a rejected promise, or a
	// resolve failed.
	Errored
)

func (t RejectionType) String() string {
	switch t {
	case Superseded:
		return "SUPERSEDED"
	case Aborted:
		return "ABORTED"
	case Invalid:
		return "INVALID"
	case Ignored:
		return "IGNORED"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Rejection is the error value a Transition's result carries when it does
// not complete successfully. Detail holds the thrown value for Errored
// rejections; a Superseded rejection from a redirect carries its target
// in RedirectTo.
type Rejection struct {
	Type    RejectionType
	Message string
	Detail  any
	// RedirectTo is set on a Superseded rejection produced by a hook
	// returning a TargetState; it carries that target so the caller can
	// trace the new transition.
	RedirectTo any
}

func (r *Rejection) Error() string {
	if r.Message != "" {
		return fmt.Sprintf("%s: %s", r.Type, r.Message)
	}
	return r.Type.String()
}

// NewRejection builds a Rejection of the given type with a message.
func NewRejection(t RejectionType, msg string) *Rejection {
	return &Rejection{Type: t, Message: msg}
}

// IsRejectionType reports whether err is a *Rejection of type t.
func IsRejectionType(err error, t RejectionType) bool {
	r, ok := err.(*Rejection)
	return ok && r.Type == t
}
