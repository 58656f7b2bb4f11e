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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{String, Int, Bool, Date, JSON, Any, Hash, Path, Query} {
		typ, ok := r.Get(name)
		require.Truef(t, ok, "expected builtin %q", name)
		assert.Equal(t, name, typ.Name)
	}
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	custom := New(Config{Name: String, Pattern: `.*`, Is: func(any) bool { return true }})
	err := r.Register(custom)
	assert.Error(t, err)
}

func TestIntRoundTrip(t *testing.T) {
	r := NewRegistry()
	intType, _ := r.Get(Int)
	encoded, err := intType.Encode(42)
	require.NoError(t, err)
	assert.Equal(t, "42", encoded)

	decoded, err := intType.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, intType.Is(decoded))
	assert.True(t, intType.Equals(42, decoded))
}

func TestBoolInvalidEncode(t *testing.T) {
	r := NewRegistry()
	boolType, _ := r.Get(Bool)
	_, err := boolType.Encode("not-a-bool")
	assert.Error(t, err)
}

func TestArrayWrapping(t *testing.T) {
	r := NewRegistry()
	str, _ := r.Get(String)
	arr := str.AsArray()

	assert.True(t, arr.IsArray())
	assert.Same(t, str, arr.Elem())
	assert.True(t, arr.Is([]any{"a", "b"}))
	assert.False(t, arr.Is("a"))
	assert.True(t, arr.Equals([]any{"a", "b"}, []any{"a", "b"}))
	assert.False(t, arr.Equals([]any{"a", "b"}, []any{"a", "c"}))

	// AsArray is idempotent.
	assert.Same(t, arr, arr.AsArray())
}
