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

package navpath

// TreeChanges is the diff between two Paths computed by Diff.
type TreeChanges struct {
	From, To Path

	// Kept is the longest common prefix: nodes with the same State and
	// equal values for every non-dynamic param.
	Kept Path
	// Retained is an alias for Kept.
	Retained Path
	// Exiting is From's suffix past Kept, deepest state first.
	Exiting Path
	// Entering is To's suffix past Kept, shallowest state first.
	Entering Path
}

// Diff computes the TreeChanges between from and to.
func Diff(from, to Path) TreeChanges {
	kept := commonPrefix(from, to)

	exiting := make(Path, 0, len(from)-len(kept))
	for i := len(from) - 1; i >= len(kept); i-- {
		exiting = append(exiting, from[i])
	}

	entering := make(Path, 0, len(to)-len(kept))
	entering = append(entering, to[len(kept):]...)

	return TreeChanges{
		From:     from,
		To:       to,
		Kept:     kept,
		Retained: kept,
		Exiting:  exiting,
		Entering: entering,
	}
}

func commonPrefix(from, to Path) Path {
	n := len(from)
	if len(to) < n {
		n = len(to)
	}
	var kept Path
	for i := 0; i < n; i++ {
		a, b := from[i], to[i]
		if a.State != b.State {
			break
		}
		if !paramsEqualIgnoringDynamic(a, b) {
			break
		}
		kept = append(kept, a)
	}
	return kept
}

func paramsEqualIgnoringDynamic(a, b *PathNode) bool {
	decls := a.State.Params
	for name, decl := range decls {
		if decl.Dynamic {
			continue
		}
		av, aok := a.Params[name]
		bv, bok := b.Params[name]
		if aok != bok {
			return false
		}
		if !aok {
			continue
		}
		if !decl.Type.Equals(av, bv) {
			return false
		}
	}
	return true
}

// ChangedDynamicParams returns the names of params that differ in value
// between from and to's final (leaf) node and are marked Dynamic on the
// leaf state; names is nil when no param changed. ok=true means every
// changed param (if any) is dynamic, so nothing needs to exit or enter;
// ok=false means at least one changed param is not dynamic.
func ChangedDynamicParams(from, to *PathNode) (names []string, ok bool) {
	if from.State != to.State {
		return nil, false
	}
	ok = true
	for name, decl := range to.State.Params {
		av, aok := from.Params[name]
		bv, bok := to.Params[name]
		if aok == bok && (!aok || decl.Type.Equals(av, bv)) {
			continue
		}
		if !decl.Dynamic {
			ok = false
			continue
		}
		names = append(names, name)
	}
	return names, ok
}

// SameChain reports whether from and to visit exactly the same States in
// the same order (nothing exiting or entering), regardless of param
// values. The transition pipeline uses this to decide whether a
// navigation is a same-state-tree change (ignore, reload, or dynamic)
// rather than a tree-shape change.
func SameChain(from, to Path) bool {
	if len(from) != len(to) {
		return false
	}
	for i := range from {
		if from[i].State != to[i].State {
			return false
		}
	}
	return true
}

// FullyEqual reports whether from and to have the same States in the
// same order and identical param values, including dynamic ones. Used
// to distinguish a true no-op (IGNORED) from a dynamic-only param change
// once SameChain has already confirmed the tree shape matches.
func FullyEqual(from, to Path) bool {
	if !SameChain(from, to) {
		return false
	}
	for i := range from {
		a, b := from[i], to[i]
		for name, decl := range a.State.Params {
			av, aok := a.Params[name]
			bv, bok := b.Params[name]
			if aok != bok {
				return false
			}
			if aok && !decl.Type.Equals(av, bv) {
				return false
			}
		}
	}
	return true
}
