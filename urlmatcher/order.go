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

package urlmatcher

import "strings"

// Compare implements a total ordering: more specific
// matchers sort first (Compare returns a negative number).
//
//  1. Deeper paths (more segments) win over shallower ones.
//  2. At equal depth, compared position by position: two static segments
//     compare by byte value; two param segments tie and fall through to
//     the next position; a static segment beats a param segment at the
//     same position.
//  3. If every position ties, the matcher with more query parameters
//     wins.
func Compare(a, b *Matcher) int {
	if len(a.segments) != len(b.segments) {
		if len(a.segments) > len(b.segments) {
			return -1
		}
		return 1
	}

	for i := range a.segments {
		sa, sb := a.segments[i], b.segments[i]
		switch {
		case sa.param == nil && sb.param == nil:
			if c := strings.Compare(sa.literal, sb.literal); c != 0 {
				return c
			}
		case sa.param == nil && sb.param != nil:
			return -1
		case sa.param != nil && sb.param == nil:
			return 1
		default:
			// both params: tie, fall through to next position
		}
	}

	if len(a.searchParams) != len(b.searchParams) {
		if len(a.searchParams) > len(b.searchParams) {
			return -1
		}
		return 1
	}

	return 0
}
