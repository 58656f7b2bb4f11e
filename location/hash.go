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
	"net/url"
	"strings"
	"sync"
)

// Hash is a Services implementation that keeps the application's path
// and search inside the URL's hash fragment ("http://host/#!/a/b?x=1"),
// the classic pre-HTML5-history routing style. The portion of the URL
// before "#" (the raw href) is tracked but never interpreted as
// application state.
type Hash struct {
	mem *Memory
	cfg *StaticConfig
}

// NewHash returns a Hash location with rawHref as the non-hash portion
// of the URL (e.g. "http://localhost:8080/app/") and cfg supplying the
// hash prefix ("!" gives "#!/...", "" gives a bare "#/...").
func NewHash(rawHref string, cfg *StaticConfig) *Hash {
	if rawHref == "" {
		rawHref = "/"
	}
	return &Hash{mem: NewMemory(rawHref), cfg: cfg}
}

func (h *Hash) prefix() string {
	return h.cfg.HashPrefix()
}

// splitHash separates raw into its non-hash href and the hash-encoded
// application path+search, stripping the configured prefix if present.
func (h *Hash) splitHash(raw string) (href, appPart string) {
	i := strings.IndexByte(raw, '#')
	if i < 0 {
		return raw, ""
	}
	href = raw[:i]
	appPart = raw[i+1:]
	if p := h.prefix(); p != "" && strings.HasPrefix(appPart, p) {
		appPart = appPart[len(p):]
	}
	return href, appPart
}

// URL implements Services.
func (h *Hash) URL(newURL string, replace bool) string {
	if newURL == "" {
		return h.mem.URL("", false)
	}
	href, _ := h.splitHash(h.mem.URL("", false))
	full := href + "#" + h.prefix() + newURL
	return h.mem.URL(full, replace)
}

// Path implements Services.
func (h *Hash) Path() string {
	_, app := h.splitHash(h.mem.URL("", false))
	return pathOf(app)
}

// Search implements Services.
func (h *Hash) Search() map[string][]string {
	_, app := h.splitHash(h.mem.URL("", false))
	return searchOf(app)
}

// Hash implements Services; the hash fragment here is always empty
// since Hash mode consumes the fragment itself for routing state — a
// "#name"-style in-page anchor is not representable under this scheme,
// matching the reference implementation's tradeoff.
func (h *Hash) Hash() string { return "" }

// OnChange implements Services.
func (h *Hash) OnChange(cb func(url string)) func() {
	return h.mem.OnChange(func(raw string) {
		_, app := h.splitHash(raw)
		cb(app)
	})
}

// Notify simulates an externally driven change to the full raw URL
// (including its hash), for embedding code without a real browser.
func (h *Hash) Notify(rawURL string) { h.mem.Notify(rawURL) }

// StaticConfig is a plain, fixed Config, the one every reference
// Services implementation here is built against; a host embedding a
// real browser supplies its own Config instead.
type StaticConfig struct {
	PortNum      int
	ProtocolName string
	HostName     string
	Base         string
	HTML5        bool

	mu     sync.Mutex
	prefix string
}

// NewStaticConfig returns a StaticConfig for the given base URL
// (scheme://host[:port]/baseHref), html5 mode, and hash prefix.
func NewStaticConfig(baseURL string, html5 bool, hashPrefix string) *StaticConfig {
	u, _ := url.Parse(baseURL)
	cfg := &StaticConfig{HTML5: html5, prefix: hashPrefix}
	if u != nil {
		cfg.ProtocolName = u.Scheme
		cfg.HostName = u.Hostname()
		cfg.Base = u.Path
		if cfg.Base == "" {
			cfg.Base = "/"
		}
		if p := u.Port(); p != "" {
			for _, r := range p {
				cfg.PortNum = cfg.PortNum*10 + int(r-'0')
			}
		}
	}
	return cfg
}

func (c *StaticConfig) Port() int          { return c.PortNum }
func (c *StaticConfig) Protocol() string   { return c.ProtocolName }
func (c *StaticConfig) Host() string       { return c.HostName }
func (c *StaticConfig) BaseHref() string   { return c.Base }
func (c *StaticConfig) HTML5Mode() bool    { return c.HTML5 }

// HashPrefix reads the current prefix with no arguments, or sets it
// (using only the first argument) and returns the new value.
func (c *StaticConfig) HashPrefix(newPrefix ...string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(newPrefix) > 0 {
		c.prefix = newPrefix[0]
	}
	return c.prefix
}
