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

package wplog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToJSONInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithServiceName("waypoint"))

	l.Info("hello")
	l.Debug("should not appear")

	lines := strings.TrimSpace(buf.String())
	require.NotEmpty(t, lines)
	assert.Equal(t, 1, strings.Count(lines, "\n")+1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "waypoint", rec["service"])
}

func TestWithHandlerTypeTextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithHandlerType(HandlerText), WithLevel(slog.LevelDebug))

	l.Debug("now visible")

	assert.Contains(t, buf.String(), "now visible")
}

func TestSetLevelAdjustsAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithLevel(slog.LevelInfo))

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(slog.LevelDebug)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithAppendsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf)).With("request_id", "abc123")

	l.Info("handled")

	assert.Contains(t, buf.String(), "abc123")
}

func TestLogPhaseIncludesTransitionFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithLevel(slog.LevelDebug))

	l.LogPhase(context.Background(), "onEnter", "corr-1", "home", "contacts")

	out := buf.String()
	assert.Contains(t, out, "onEnter")
	assert.Contains(t, out, "corr-1")
	assert.Contains(t, out, "home")
	assert.Contains(t, out, "contacts")
}

func TestLogRejectionLevelsByType(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithHandlerType(HandlerText))

	l.LogRejection(context.Background(), "ERROR", "corr-2", "home", "contacts")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	l.LogRejection(context.Background(), "SUPERSEDED", "corr-3", "home", "contacts")
	assert.Contains(t, buf.String(), "level=INFO")
}
