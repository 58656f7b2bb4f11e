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

package state

import "strings"

// futureSuffix marks a future (lazy-loaded wildcard placeholder) state
// name, e.g. "admin.**".
const futureSuffix = ".**"

// IsFuture reports whether name ends in the future-state suffix.
func IsFuture(name string) bool {
	return strings.HasSuffix(name, futureSuffix)
}

// baseName strips the future suffix, if any.
func baseName(name string) string {
	return strings.TrimSuffix(name, futureSuffix)
}

// ParentName returns the dotted parent of name ("a.b.c" -> "a.b"), or ""
// if name has no parent (it is a top-level state). A future state's
// suffix stands in for the segment it will eventually promote to, so
// its parent is one level further up than its base name: ParentName
// ("admin.**") is "" (admin.** sits at the root, promoted by a
// top-level "admin"), and ParentName("a.b.**") is "a".
func ParentName(name string) string {
	if IsFuture(name) {
		return ParentName(baseName(name))
	}
	idx := strings.LastIndexByte(name, '.')
	if idx == -1 {
		return ""
	}
	return name[:idx]
}

// MatchesGlob reports whether name matches a glob pattern using the
// state-tree conventions: "*" matches exactly one more dotted segment,
// "**" matches zero or more (save for a trailing "**", which requires
// at least one, denoting strict descendants).
func MatchesGlob(pattern, name string) bool {
	return matchesGlob(pattern, name)
}

func matchesGlob(pattern, name string) bool {
	if pattern == name {
		return true
	}
	pSegs := strings.Split(pattern, ".")
	nSegs := strings.Split(name, ".")
	return matchSegments(pSegs, nSegs)
}

func matchSegments(pSegs, nSegs []string) bool {
	if len(pSegs) == 0 {
		return len(nSegs) == 0
	}
	head := pSegs[0]
	if head == "**" {
		if len(pSegs) == 1 {
			// A trailing "**" denotes strict descendants: "a.**" never
			// matches "a" itself, only states nested under it.
			return len(nSegs) >= 1
		}
		for i := 0; i <= len(nSegs); i++ {
			if matchSegments(pSegs[1:], nSegs[i:]) {
				return true
			}
		}
		return false
	}
	if len(nSegs) == 0 {
		return false
	}
	if head != "*" && head != nSegs[0] {
		return false
	}
	return matchSegments(pSegs[1:], nSegs[1:])
}
