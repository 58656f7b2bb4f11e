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

// Package waypoint is the composition root: it wires the State
// Registry, the URL Matcher/Rules Engine, the Resolve Graph and the
// Transition Pipeline into the single Router a host constructs once
// and drives for the lifetime of the app.
package waypoint

import (
	"context"

	"github.com/rivaas-dev/waypoint/location"
	"github.com/rivaas-dev/waypoint/paramtype"
	"github.com/rivaas-dev/waypoint/state"
	"github.com/rivaas-dev/waypoint/transition"
	"github.com/rivaas-dev/waypoint/urlmatcher"
	"github.com/rivaas-dev/waypoint/urlrule"
	"github.com/rivaas-dev/waypoint/waypointerr"
	"github.com/rivaas-dev/waypoint/wplog"
	"github.com/rivaas-dev/waypoint/wpmetrics"
	"github.com/rivaas-dev/waypoint/wptrace"
)

// Router is the produced composition root of spec §4.6: it owns a
// State Registry, a Transition Service, a URL Rules Engine bound to a
// location.Services/Config pair, the Globals navigation snapshot, a
// ViewRegistry and a Plugin registry.
type Router struct {
	States  *StateService
	URL     *UrlService
	Globals *Globals
	Views   *ViewRegistry

	stateReg *state.Registry
	trSvc    *transition.Service
	plugins  *pluginRegistry
	metrics  *wpmetrics.Recorder
	tracer   *wptrace.Tracer
}

// New builds a Router from opts, defaulting to an in-memory
// location.Services (suitable for tests and non-browser hosts) and the
// built-in paramtype registry.
func New(opts ...Option) *Router {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	engine := urlrule.NewEngine()
	factory := &ruleFactory{engine: engine}

	regOpts := []state.Option{
		state.WithParamTypes(cfg.paramTypes),
		state.WithMatcherConfig(cfg.matcherConfig),
		state.WithRuleSink(factory),
	}
	stateReg := state.NewRegistry(regOpts...)

	trSvc := transition.NewService(stateReg)
	states := newStateService(stateReg, trSvc)

	urlSvc := newURLService(cfg.location, cfg.locationConfig)
	urlSvc.Rules = engine
	urlSvc.states = states

	factory.urlSvc = urlSvc
	factory.states = states
	states.url = urlSvc

	globals := newGlobals(trSvc, cfg.historyLimit)

	if obs := newObservability(cfg.logger, cfg.metrics, cfg.tracer); obs != nil {
		trSvc.Started = obs.onStarted
		priorSettled := trSvc.Settled
		trSvc.Settled = func(tr *transition.Transition, rej *waypointerr.Rejection) {
			priorSettled(tr, rej)
			obs.onSettled(tr, rej)
		}
		if cfg.metrics != nil {
			trSvc.OnResolve = func(token string, cached bool) {
				if cached {
					cfg.metrics.RecordResolveHit(context.Background())
					return
				}
				cfg.metrics.RecordResolveMiss(context.Background())
			}
		}
	}

	r := &Router{
		States:   states,
		URL:      urlSvc,
		Globals:  globals,
		Views:    NewViewRegistry(),
		stateReg: stateReg,
		trSvc:    trSvc,
		plugins:  newPluginRegistry(),
		metrics:  cfg.metrics,
		tracer:   cfg.tracer,
	}

	for _, decl := range cfg.declarations {
		if err := stateReg.Register(decl); err != nil && cfg.onRegisterError != nil {
			cfg.onRegisterError(err)
		}
	}

	return r
}

// Register adds decl to the state tree, building it immediately if its
// parent already exists or queueing it otherwise (see state.Registry).
func (r *Router) Register(decl *state.Declaration) error {
	return r.stateReg.Register(decl)
}

// Deregister removes the named state and its descendants from the
// tree, returning every State that was removed.
func (r *Router) Deregister(name string) ([]*state.State, error) {
	return r.stateReg.Deregister(name)
}

// Decorator registers an additional build-pipeline stage for property
// ("data", "views" or "params"), applied to every state built from this
// point on.
func (r *Router) Decorator(property string, fn state.DecoratorFn) {
	r.stateReg.Decorator(property, fn)
}

// Hooks exposes the transition hook Registry so a host can call
// On/OnState before any navigation begins.
func (r *Router) Hooks() *transition.Registry { return r.trSvc.Hooks }

// Plugin registers instance with the Router; instance's Dispose is
// called when the Router (or the instance specifically) is disposed.
func (r *Router) Plugin(instance Plugin) {
	r.plugins.add(instance)
}

// Dispose tears down the Router. With no arguments it disposes every
// registered Plugin in registration order; passed a specific instance,
// it disposes only that one.
func (r *Router) Dispose(instance ...Plugin) {
	if len(instance) == 0 {
		r.trSvc.Dispose()
		if r.metrics != nil {
			_ = r.metrics.Shutdown(context.Background())
		}
		if r.tracer != nil {
			_ = r.tracer.Shutdown(context.Background())
		}
		r.plugins.disposeAll()
		return
	}
	for _, pl := range instance {
		r.plugins.disposeOne(pl)
	}
}

type routerConfig struct {
	paramTypes      *paramtype.Registry
	matcherConfig   urlmatcher.Config
	location        location.Services
	locationConfig  location.Config
	historyLimit    int
	declarations    []*state.Declaration
	onRegisterError func(error)

	logger  *wplog.Logger
	metrics *wpmetrics.Recorder
	tracer  *wptrace.Tracer
}

func defaultConfig() *routerConfig {
	staticCfg := location.NewStaticConfig("http://localhost/", true, "")
	return &routerConfig{
		paramTypes:     paramtype.NewRegistry(),
		matcherConfig:  urlmatcher.Config{},
		location:       location.NewMemory("/"),
		locationConfig: staticCfg,
		historyLimit:   50,
	}
}

// Option configures a Router at construction time.
type Option func(*routerConfig)

// WithLocation overrides the default in-memory location.Services/Config
// pair, e.g. with a Hash or PushState implementation for a browser host.
func WithLocation(loc location.Services, cfg location.Config) Option {
	return func(c *routerConfig) { c.location = loc; c.locationConfig = cfg }
}

// WithParamTypes overrides the built-in paramtype.Registry.
func WithParamTypes(types *paramtype.Registry) Option {
	return func(c *routerConfig) { c.paramTypes = types }
}

// WithMatcherConfig overrides the urlmatcher.Config every state's URL
// fragment compiles with.
func WithMatcherConfig(m urlmatcher.Config) Option {
	return func(c *routerConfig) { c.matcherConfig = m }
}

// WithHistoryLimit overrides the bounded transition History's capacity
// (default 50).
func WithHistoryLimit(n int) Option {
	return func(c *routerConfig) { c.historyLimit = n }
}

// WithStates queues declarations for registration as soon as the
// Router's Registry exists, in the order given.
func WithStates(decls ...*state.Declaration) Option {
	return func(c *routerConfig) { c.declarations = append(c.declarations, decls...) }
}

// WithRegisterErrorHandler installs a sink for errors raised while
// registering the declarations passed to WithStates.
func WithRegisterErrorHandler(cb func(error)) Option {
	return func(c *routerConfig) { c.onRegisterError = cb }
}

// WithLogger attaches a wplog.Logger; each Transition's start and its
// settlement are logged through it.
func WithLogger(l *wplog.Logger) Option {
	return func(c *routerConfig) { c.logger = l }
}

// WithMetrics attaches a wpmetrics.Recorder; every settled Transition's
// duration/outcome and every resolve cache hit/miss is recorded
// through it.
func WithMetrics(m *wpmetrics.Recorder) Option {
	return func(c *routerConfig) { c.metrics = m }
}

// WithTracing attaches a wptrace.Tracer; every Transition opens a span
// for the duration of its run.
func WithTracing(t *wptrace.Tracer) Option {
	return func(c *routerConfig) { c.tracer = t }
}
