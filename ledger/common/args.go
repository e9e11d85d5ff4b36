// Copyright 2026 Blink Labs Software
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

package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ArgType is the expected type of a positional argument
type ArgType uint8

const (
	ArgTypeUint ArgType = iota
	ArgTypeString
	ArgTypeIdentity
)

func (t ArgType) String() string {
	switch t {
	case ArgTypeUint:
		return "uint"
	case ArgTypeString:
		return "string"
	case ArgTypeIdentity:
		return "identity"
	default:
		return fmt.Sprintf("ArgType(%d)", uint8(t))
	}
}

// Args is the ordered argument list of an invocation. Values arrive either
// from CBOR (uint64, int64, string, []byte) or from JSON (float64, json.Number,
// string), so the accessors accept both.
type Args []any

func (a Args) Len() int {
	return len(a)
}

// Uint returns argument idx as a non-negative integer
func (a Args) Uint(idx int) (uint64, error) {
	if idx < 0 || idx >= len(a) {
		return 0, fmt.Errorf("argument %d out of range", idx)
	}
	switch v := a[idx].(type) {
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return uint64(v), nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= math.MaxUint64 {
			return 0, fmt.Errorf("value %v is not a non-negative integer", v)
		}
		return uint64(v), nil
	case json.Number:
		ret, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a non-negative integer", v.String())
		}
		return ret, nil
	default:
		return 0, fmt.Errorf("expected integer, found %T", v)
	}
}

// String returns argument idx as a string
func (a Args) String(idx int) (string, error) {
	if idx < 0 || idx >= len(a) {
		return "", fmt.Errorf("argument %d out of range", idx)
	}
	switch v := a[idx].(type) {
	case string:
		return v, nil
	case Identity:
		return string(v), nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("expected string, found %T", v)
	}
}

// Identity returns argument idx as an Identity
func (a Args) Identity(idx int) (Identity, error) {
	s, err := a.String(idx)
	if err != nil {
		return "", err
	}
	return Identity(s), nil
}

// Check verifies the argument count and the type of every argument against
// the provided signature
func (a Args) Check(operation string, signature []ArgType) error {
	if len(a) != len(signature) {
		return InvalidArgumentsError{
			Operation: operation,
			Index:     -1,
			Reason: fmt.Sprintf(
				"expected %d argument(s), found %d",
				len(signature),
				len(a),
			),
		}
	}
	for idx, argType := range signature {
		var err error
		switch argType {
		case ArgTypeUint:
			_, err = a.Uint(idx)
		case ArgTypeString:
			_, err = a.String(idx)
		case ArgTypeIdentity:
			_, err = a.Identity(idx)
		default:
			err = fmt.Errorf("unsupported argument type %s", argType)
		}
		if err != nil {
			return InvalidArgumentsError{
				Operation: operation,
				Index:     idx,
				Reason:    err.Error(),
			}
		}
	}
	return nil
}
