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

// Package location defines the narrow LocationServices/LocationConfig
// boundary the URL subsystem calls into, and ships three reference
// implementations: Memory (for tests and headless embedding), Hash
// (browser-style hash-fragment routing), and PushState (HTML5-style
// history routing, including <base href> parsing). A host that embeds
// this module behind an actual browser or terminal UI supplies its own
// Services/Config instead; these three exist because the core is
// useless without at least one working implementation to navigate
// against.
package location

// Services is the narrow boundary the URL subsystem calls into. It
// never assumes a real browser: host code may back it with an actual
// window.location equivalent, an in-memory string, or anything else
// that can report and mutate "the current URL".
type Services interface {
	// URL reads the current full URL when newURL is empty, or writes
	// newURL and returns it. replace selects between a normal push
	// ("new history entry") and a replace ("overwrite the current
	// entry") write; it is ignored on a read.
	URL(newURL string, replace bool) string

	// Path, Search and Hash decompose the current URL the way the URL
	// matcher expects to consume it: Path excludes the query string and
	// hash fragment and always begins with "/"; Search is the decoded
	// query string as repeated-key-aware multi-values; Hash is the
	// fragment without its leading "#".
	Path() string
	Search() map[string][]string
	Hash() string

	// OnChange subscribes cb to externally driven URL changes (a
	// browser back/forward navigation, or Notify on the Memory
	// implementation) and returns an unregister function.
	OnChange(cb func(url string)) func()
}

// Config is the narrow boundary the URL subsystem reads static
// environment facts from: the parts of a location a host rarely if
// ever changes after startup, plus the one setting (HashPrefix) that a
// caller may reconfigure at runtime.
type Config interface {
	Port() int
	Protocol() string
	Host() string
	// BaseHref is the <base href> path segment every formatted URL is
	// prefixed with; "/" when none was configured.
	BaseHref() string
	// HTML5Mode reports whether formatted URLs are plain paths (true,
	// "pushState" style) or hash-fragment paths (false).
	HTML5Mode() bool
	// HashPrefix reads the current hash-mode prefix (e.g. "!" for
	// "#!/path") when called with no arguments, or sets it and returns
	// the new value when called with one.
	HashPrefix(newPrefix ...string) string
}
