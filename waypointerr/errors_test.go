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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorUnwrapsAndFormats(t *testing.T) {
	err := NewConfigError("state.Register", ErrDuplicateState)

	assert.Equal(t, "state.Register: duplicate state", err.Error())
	assert.True(t, errors.Is(err, ErrDuplicateState))
}

func TestConfigErrorWithoutOpFormatsBare(t *testing.T) {
	err := &ConfigError{Err: ErrEmptyName}
	assert.Equal(t, ErrEmptyName.Error(), err.Error())
}

func TestCyclicResolveErrorUnwrapsToSentinel(t *testing.T) {
	err := &CyclicResolveError{Chain: []string{"a", "b", "a"}}

	assert.True(t, errors.Is(err, ErrCyclicResolve))
	assert.Contains(t, err.Error(), "[a b a]")
}

func TestRejectionTypeStrings(t *testing.T) {
	cases := map[RejectionType]string{
		Superseded:          "SUPERSEDED",
		Aborted:             "ABORTED",
		Invalid:             "INVALID",
		Ignored:             "IGNORED",
		Errored:             "ERROR",
		RejectionType(1000): "UNKNOWN",
	}
	for typ, want := range cases {
		assert.Equal(t, want, typ.String())
	}
}

func TestRejectionErrorIncludesMessageWhenSet(t *testing.T) {
	r := NewRejection(Errored, "boom")
	assert.Equal(t, "ERROR: boom", r.Error())

	bare := &Rejection{Type: Invalid}
	assert.Equal(t, "INVALID", bare.Error())
}

func TestIsRejectionType(t *testing.T) {
	var err error = NewRejection(Superseded, "newer transition")
	assert.True(t, IsRejectionType(err, Superseded))
	assert.False(t, IsRejectionType(err, Aborted))
	assert.False(t, IsRejectionType(errors.New("plain"), Superseded))
}
