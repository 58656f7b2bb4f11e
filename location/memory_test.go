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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNewDefaultsToRoot(t *testing.T) {
	m := NewMemory("")
	assert.Equal(t, "/", m.Path())
}

func TestMemoryURLReadWrite(t *testing.T) {
	m := NewMemory("/home")
	assert.Equal(t, "/home", m.URL("", false))

	got := m.URL("/contacts/42?tab=info#details", false)
	assert.Equal(t, "/contacts/42?tab=info#details", got)
	assert.Equal(t, "/contacts/42", m.Path())
	assert.Equal(t, map[string][]string{"tab": {"info"}}, m.Search())
	assert.Equal(t, "details", m.Hash())
}

func TestMemoryOnChangeAndUnregister(t *testing.T) {
	m := NewMemory("/")

	var seen []string
	unregister := m.OnChange(func(url string) { seen = append(seen, url) })

	m.Notify("/a")
	m.Notify("/b")
	unregister()
	m.Notify("/c")

	require.Equal(t, []string{"/a", "/b"}, seen)
	assert.Equal(t, "/c", m.Path())
}

func TestMemoryNotifyFansOutToAllListeners(t *testing.T) {
	m := NewMemory("/")

	var a, b int
	m.OnChange(func(string) { a++ })
	m.OnChange(func(string) { b++ })

	m.Notify("/x")

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
