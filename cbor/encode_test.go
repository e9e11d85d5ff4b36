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

package cbor_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gocarbon/cbor"
)

type encodeTestDefinition struct {
	CborHex string
	Object  any
}

var encodeTests = []encodeTestDefinition{
	// Simple list of numbers
	{
		CborHex: "83010203",
		Object:  []any{1, 2, 3},
	},
	// Map keys come out sorted regardless of insertion order
	{
		CborHex: "a2616102616201",
		Object:  map[string]uint64{"b": 1, "a": 2},
	},
	// Struct encoded as array
	{
		CborHex: "826361626305",
		Object: struct {
			cbor.StructAsArray
			Name  string
			Count uint64
		}{Name: "abc", Count: 5},
	},
}

func TestEncode(t *testing.T) {
	for _, test := range encodeTests {
		cborData, err := cbor.Encode(test.Object)
		if err != nil {
			t.Fatalf("failed to encode object to CBOR: %s", err)
		}
		cborHex := hex.EncodeToString(cborData)
		if cborHex != test.CborHex {
			t.Fatalf(
				"object did not encode to expected CBOR\n  got: %s\n  wanted: %s",
				cborHex,
				test.CborHex,
			)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	src := map[uint64]string{}
	for i := range uint64(50) {
		src[i*7919%101] = "x"
	}
	first, err := cbor.Encode(src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for range 10 {
		next, err := cbor.Encode(src)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if hex.EncodeToString(next) != hex.EncodeToString(first) {
			t.Fatalf("map encoding is not stable across calls")
		}
	}
}
