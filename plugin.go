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

package waypoint

import "sync"

// Plugin is a host-installable extension: a value with a Name and a
// Dispose method, registered against a Router via Router.Plugin and torn
// down either individually (Router.Dispose(instance)) or all at once
// (Router.Dispose(nil)).
type Plugin interface {
	Name() string
	Dispose()
}

type pluginRegistry struct {
	mu      sync.Mutex
	byName  map[string]Plugin
	ordered []Plugin
}

func newPluginRegistry() *pluginRegistry {
	return &pluginRegistry{byName: make(map[string]Plugin)}
}

func (p *pluginRegistry) add(plugin Plugin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byName[plugin.Name()] = plugin
	p.ordered = append(p.ordered, plugin)
}

// disposeOne disposes exactly the given instance and removes it from
// the registry. It reports whether the instance was found.
func (p *pluginRegistry) disposeOne(instance Plugin) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, pl := range p.ordered {
		if pl == instance {
			pl.Dispose()
			p.ordered = append(p.ordered[:i], p.ordered[i+1:]...)
			delete(p.byName, pl.Name())
			return true
		}
	}
	return false
}

// disposeAll disposes every registered plugin, in registration order,
// and empties the registry.
func (p *pluginRegistry) disposeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pl := range p.ordered {
		pl.Dispose()
	}
	p.ordered = nil
	p.byName = make(map[string]Plugin)
}
