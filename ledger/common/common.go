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
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b256Size = blake2b.Size256

	// StateRootPrefix is the bech32 prefix used to display state roots
	StateRootPrefix = "cstate"
)

// Blake2b256 is a Blake2b-256 digest, used for ledger state roots
type Blake2b256 [Blake2b256Size]byte

// Blake2b256Hash hashes data
func Blake2b256Hash(data []byte) Blake2b256 {
	return Blake2b256(blake2b.Sum256(data))
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// MarshalCBOR encodes the digest as a 32-byte bytestring
func (b Blake2b256) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(b[:])
}

func (b *Blake2b256) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.DecodeStrict(data, &raw); err != nil {
		return err
	}
	if len(raw) != Blake2b256Size {
		return fmt.Errorf("blake2b-256 digest must be %d bytes, found %d", Blake2b256Size, len(raw))
	}
	copy(b[:], raw)
	return nil
}

// Bech32 encodes the digest with the given human-readable prefix
func (b Blake2b256) Bech32(prefix string) string {
	words, err := bech32.ConvertBits(b[:], 8, 5, true)
	if err == nil {
		var encoded string
		if encoded, err = bech32.Encode(prefix, words); err == nil {
			return encoded
		}
	}
	// Only an invalid prefix can fail here
	panic(fmt.Sprintf("bech32 encoding with prefix %q: %s", prefix, err))
}
