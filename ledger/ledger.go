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

// Package ledger bundles the token ledger, the project registry and the
// marketplace behind a single invocation surface
package ledger

import (
	"errors"
	"slices"
	"sync"

	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/market"
	"github.com/blinklabs-io/gocarbon/ledger/registry"
	"github.com/blinklabs-io/gocarbon/ledger/token"
)

var ErrNoPrivilegedIdentity = errors.New("no privileged identity configured")

type Config struct {
	// PrivilegedIdentity is allowed to mint, set the token URI, verify
	// projects and issue credits
	PrivilegedIdentity common.Identity
}

// Ledger serializes invocations across the three contract stores. The
// stores themselves perform no locking.
type Ledger struct {
	mu         sync.Mutex
	privileged common.Identity
	token      *token.Ledger
	registry   *registry.Registry
	market     *market.Market
	contracts  map[string]common.Contract
}

func New(cfg Config) (*Ledger, error) {
	if cfg.PrivilegedIdentity == "" {
		return nil, ErrNoPrivilegedIdentity
	}
	l := &Ledger{
		privileged: cfg.PrivilegedIdentity,
		token:      token.NewLedger(cfg.PrivilegedIdentity),
		registry:   registry.NewRegistry(cfg.PrivilegedIdentity),
		market:     market.NewMarket(),
	}
	l.contracts = map[string]common.Contract{
		token.ContractName:    l.token,
		registry.ContractName: l.registry,
		market.ContractName:   l.market,
	}
	return l, nil
}

// PrivilegedIdentity returns the identity the ledger was configured with
func (l *Ledger) PrivilegedIdentity() common.Identity {
	return l.privileged
}

// Contracts returns the sorted names of the known contracts
func (l *Ledger) Contracts() []string {
	ret := make([]string, 0, len(l.contracts))
	for name := range l.contracts {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

// Operations returns the operations of the named contract
func (l *Ledger) Operations(contract string) ([]common.Operation, bool) {
	c, ok := l.contracts[contract]
	if !ok {
		return nil, false
	}
	return c.Operations(), true
}

// Check performs the stateless dispatch checks for an invocation: known
// contract, known operation and argument shape. It does not take the lock
// and is safe to call concurrently with Invoke.
func (l *Ledger) Check(inv Invocation) error {
	contract, ok := l.contracts[inv.Contract]
	if !ok {
		return common.UnknownContractError{
			Contract: inv.Contract,
		}
	}
	return contract.Check(inv.Operation, inv.Args)
}

// Invoke applies a single invocation and returns its receipt. A failed
// invocation leaves every store unchanged.
func (l *Ledger) Invoke(inv Invocation) Receipt {
	contract, ok := l.contracts[inv.Contract]
	if !ok {
		return newReceipt(
			nil,
			common.Fail(common.UnknownContractError{Contract: inv.Contract}),
		)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	res := contract.Invoke(inv.Operation, inv.Args, inv.Caller)
	return newReceipt(contract, res)
}

func newReceipt(contract common.Contract, res common.Result) Receipt {
	if res.Ok() {
		return Receipt{
			Ok:    true,
			Value: res.Value,
		}
	}
	ret := NewFailureReceipt(res.Err)
	if contract != nil {
		ret.ErrorCode = contract.ErrorCode(ret.ErrorKind)
	}
	return ret
}
