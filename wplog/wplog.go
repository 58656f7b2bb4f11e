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

// Package wplog is the structured-logging side of the ambient stack:
// a thin, functional-options wrapper over log/slog that every
// transition phase and resolve cache lookup can log through without
// each call site choosing its own handler, level or attribute set.
package wplog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// HandlerType selects the slog.Handler a Logger's output is formatted
// with.
type HandlerType string

const (
	HandlerJSON HandlerType = "json"
	HandlerText HandlerType = "text"
)

// Logger wraps a configured *slog.Logger plus the fields every call
// site derives its attributes from (service name, version).
type Logger struct {
	slog *slog.Logger

	serviceName    string
	serviceVersion string
	level          *slog.LevelVar
}

// Option configures a Logger at construction time.
type Option func(*config)

type config struct {
	handler        HandlerType
	output         io.Writer
	level          slog.Level
	addSource      bool
	serviceName    string
	serviceVersion string
}

func defaultConfig() *config {
	return &config{
		handler: HandlerJSON,
		output:  os.Stderr,
		level:   slog.LevelInfo,
	}
}

// WithHandlerType selects JSON (default) or text-formatted output.
func WithHandlerType(t HandlerType) Option { return func(c *config) { c.handler = t } }

// WithOutput overrides the destination (default os.Stderr).
func WithOutput(w io.Writer) Option { return func(c *config) { c.output = w } }

// WithLevel sets the minimum enabled level (default Info).
func WithLevel(l slog.Level) Option { return func(c *config) { c.level = l } }

// WithSource adds the calling source file/line to every record.
func WithSource(enabled bool) Option { return func(c *config) { c.addSource = enabled } }

// WithServiceName tags every record with a "service" attribute.
func WithServiceName(name string) Option { return func(c *config) { c.serviceName = name } }

// WithServiceVersion tags every record with a "version" attribute.
func WithServiceVersion(v string) Option { return func(c *config) { c.serviceVersion = v } }

// New builds a Logger from opts.
func New(opts ...Option) *Logger {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(c.level)

	handlerOpts := &slog.HandlerOptions{Level: levelVar, AddSource: c.addSource}
	var h slog.Handler
	if c.handler == HandlerText {
		h = slog.NewTextHandler(c.output, handlerOpts)
	} else {
		h = slog.NewJSONHandler(c.output, handlerOpts)
	}

	base := slog.New(h)
	var attrs []any
	if c.serviceName != "" {
		attrs = append(attrs, "service", c.serviceName)
	}
	if c.serviceVersion != "" {
		attrs = append(attrs, "version", c.serviceVersion)
	}
	if len(attrs) > 0 {
		base = base.With(attrs...)
	}

	return &Logger{slog: base, serviceName: c.serviceName, serviceVersion: c.serviceVersion, level: levelVar}
}

// Slog returns the underlying *slog.Logger for callers that want the
// full slog API directly.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// SetLevel adjusts the minimum enabled level at runtime.
func (l *Logger) SetLevel(level slog.Level) { l.level.Set(level) }

// With returns a Logger with args appended to every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), serviceName: l.serviceName, serviceVersion: l.serviceVersion, level: l.level}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// TransitionFields returns the common attribute set every transition
// log line carries: correlation id plus from/to state names.
func TransitionFields(correlationID, from, to string) []any {
	return []any{"correlation_id", correlationID, "from", from, "to", to}
}

// LogPhase logs one transition phase at Debug level with the common
// transition fields plus phase and any extra args.
func (l *Logger) LogPhase(ctx context.Context, phase, correlationID, from, to string, extra ...any) {
	args := append(TransitionFields(correlationID, from, to), "phase", phase)
	args = append(args, extra...)
	l.slog.DebugContext(ctx, "transition phase", args...)
}

// LogRejection logs a failed/aborted/superseded transition at Warn
// (Errored) or Info (everything else) level.
func (l *Logger) LogRejection(ctx context.Context, rejType string, correlationID, from, to string, extra ...any) {
	args := append(TransitionFields(correlationID, from, to), "rejection", rejType)
	args = append(args, extra...)
	if rejType == "ERROR" {
		l.slog.WarnContext(ctx, "transition rejected", args...)
		return
	}
	l.slog.InfoContext(ctx, "transition rejected", args...)
}
