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

// Package cbor provides the CBOR encoding/decoding used for invocations,
// receipts, journal entries and ledger snapshots.
//
// It wraps github.com/fxamacker/cbor/v2 with a deterministic encoder (map
// keys are always emitted in core deterministic order, which keeps state
// roots stable) and a strict decoder that rejects duplicate map keys and
// indefinite lengths.
//
// # Key Types
//
//   - StructAsArray: embed to encode struct fields as a CBOR array instead of a map
//   - RawMessage: deferred decoding (like json.RawMessage)
//
// # Custom decoders
//
// A type with its own UnmarshalCBOR can call DecodeGeneric to populate its
// exported fields without recursing into itself, then run its own checks:
//
//	func (m *MyType) UnmarshalCBOR(data []byte) error {
//	    if err := cbor.DecodeGeneric(data, m); err != nil {
//	        return err
//	    }
//	    return m.check()
//	}
package cbor
