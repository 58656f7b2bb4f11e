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

package paramtype

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Names of the built-in types, usable in {name:typeName} URL segments.
const (
	String = "string"
	Int    = "int"
	Bool   = "bool"
	Date   = "date"
	JSON   = "json"
	Any    = "any"
	Hash   = "hash"
	Path   = "path"
	Query  = "query"
)

func builtinString() *Type {
	return New(Config{
		Name:    String,
		Pattern: `[^/]+`,
		Is:      func(v any) bool { _, ok := v.(string); return ok },
		Encode:  func(v any) (string, error) { return fmt.Sprintf("%v", v), nil },
		Decode:  func(raw string) (any, error) { return raw, nil },
	})
}

func builtinInt() *Type {
	return New(Config{
		Name:    Int,
		Pattern: `-?\d+`,
		Is: func(v any) bool {
			switch v.(type) {
			case int, int32, int64:
				return true
			default:
				return false
			}
		},
		Encode: func(v any) (string, error) {
			switch n := v.(type) {
			case int:
				return strconv.Itoa(n), nil
			case int32:
				return strconv.FormatInt(int64(n), 10), nil
			case int64:
				return strconv.FormatInt(n, 10), nil
			default:
				return "", fmt.Errorf("paramtype: %v is not an int", v)
			}
		},
		Decode: func(raw string) (any, error) {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("paramtype: invalid int %q: %w", raw, err)
			}
			return int(n), nil
		},
	})
}

func builtinBool() *Type {
	return New(Config{
		Name:    Bool,
		Pattern: `true|false`,
		Is:      func(v any) bool { _, ok := v.(bool); return ok },
		Encode: func(v any) (string, error) {
			b, ok := v.(bool)
			if !ok {
				return "", fmt.Errorf("paramtype: %v is not a bool", v)
			}
			return strconv.FormatBool(b), nil
		},
		Decode: func(raw string) (any, error) { return strconv.ParseBool(raw) },
	})
}

func builtinDate() *Type {
	const layout = "2006-01-02"
	return New(Config{
		Name:    Date,
		Pattern: `\d{4}-\d{2}-\d{2}`,
		Is:      func(v any) bool { _, ok := v.(time.Time); return ok },
		Encode: func(v any) (string, error) {
			t, ok := v.(time.Time)
			if !ok {
				return "", fmt.Errorf("paramtype: %v is not a time.Time", v)
			}
			return t.Format(layout), nil
		},
		Decode: func(raw string) (any, error) { return time.Parse(layout, raw) },
		Equals: func(a, b any) bool {
			ta, aok := a.(time.Time)
			tb, bok := b.(time.Time)
			return aok && bok && ta.Equal(tb)
		},
	})
}

func builtinJSON() *Type {
	return New(Config{
		Name:    JSON,
		Pattern: `[^/]+`,
		Is:      func(v any) bool { return true },
		Encode: func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		Decode: func(raw string) (any, error) {
			var v any
			err := json.Unmarshal([]byte(raw), &v)
			return v, err
		},
	})
}

func builtinAny() *Type {
	return New(Config{
		Name:    Any,
		Pattern: `[^/]+`,
		Raw:     true,
		Is:      func(v any) bool { return true },
		Encode:  func(v any) (string, error) { return fmt.Sprintf("%v", v), nil },
		Decode:  func(raw string) (any, error) { return raw, nil },
	})
}

// builtinHash backs the root state's implicit "#" parameter. It is never
// matched by the path regexp; the matcher reads it directly off the URL's
// hash fragment.
func builtinHash() *Type {
	return New(Config{
		Name:    Hash,
		Pattern: ``,
		Raw:     true,
		Is:      func(v any) bool { _, ok := v.(string); return ok },
		Encode:  func(v any) (string, error) { return fmt.Sprintf("%v", v), nil },
		Decode:  func(raw string) (any, error) { return raw, nil },
	})
}

func builtinPath() *Type {
	return New(Config{
		Name:    Path,
		Pattern: `[^/]+`,
		Is:      func(v any) bool { _, ok := v.(string); return ok },
		Encode:  func(v any) (string, error) { return fmt.Sprintf("%v", v), nil },
		Decode:  func(raw string) (any, error) { return raw, nil },
	})
}

// builtinQuery is the default type for declared-but-untyped search
// parameters: any string, never pattern-constrained (query params are not
// matched by the path regexp).
func builtinQuery() *Type {
	return New(Config{
		Name:    Query,
		Pattern: ``,
		Is:      func(v any) bool { _, ok := v.(string); return ok },
		Encode:  func(v any) (string, error) { return fmt.Sprintf("%v", v), nil },
		Decode:  func(raw string) (any, error) { return raw, nil },
	})
}
