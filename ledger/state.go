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

package ledger

import (
	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/market"
	"github.com/blinklabs-io/gocarbon/ledger/registry"
	"github.com/blinklabs-io/gocarbon/ledger/token"
)

// State is a full copy of the three contract stores
type State struct {
	cbor.StructAsArray
	Token    token.State
	Registry registry.State
	Market   market.State
}

func NewStateFromCbor(data []byte) (*State, error) {
	var ret State
	if err := cbor.DecodeStrict(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (s *State) Cbor() ([]byte, error) {
	return cbor.Encode(s)
}

// Snapshot returns a copy of the current state
func (l *Ledger) Snapshot() *State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &State{
		Token:    l.token.State(),
		Registry: l.registry.State(),
		Market:   l.market.State(),
	}
}

// Restore replaces the current state with a copy of state. Id counters are
// restored as well, so ids handed out before the snapshot are never reused.
func (l *Ledger) Restore(state *State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.token.Restore(state.Token)
	l.registry.Restore(state.Registry)
	l.market.Restore(state.Market)
}

// StateRoot hashes the deterministic CBOR encoding of the current state
func (l *Ledger) StateRoot() (common.Blake2b256, error) {
	data, err := l.Snapshot().Cbor()
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.Blake2b256Hash(data), nil
}
