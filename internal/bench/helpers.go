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

// Package bench provides benchmark fixtures for the ledger and the call
// pipeline.
package bench

import (
	"fmt"
	"testing"

	"github.com/blinklabs-io/gocarbon/internal/test"
	test_ledger "github.com/blinklabs-io/gocarbon/internal/test/ledger"
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/market"
	"github.com/blinklabs-io/gocarbon/ledger/registry"
	"github.com/blinklabs-io/gocarbon/ledger/token"
)

// FundedBalance is the balance minted to test.User1 by FundedLedger
const FundedBalance = uint64(1) << 62

// InvocationFixture is an invocation with its pre-computed encoding
type InvocationFixture struct {
	Name       string
	Invocation ledger.Invocation
	Cbor       []byte
}

// LoadInvocationFixtures encodes every invocation of the shared test
// scenario. Fixture names are unique.
func LoadInvocationFixtures() ([]InvocationFixture, error) {
	steps := test_ledger.Scenario()
	ret := make([]InvocationFixture, 0, len(steps))
	for idx, step := range steps {
		data, err := step.Invocation.Cbor()
		if err != nil {
			return nil, fmt.Errorf("encode invocation %d: %w", idx, err)
		}
		ret = append(ret, InvocationFixture{
			Name: fmt.Sprintf(
				"%02d_%s",
				idx,
				step.Invocation.Operation,
			),
			Invocation: step.Invocation,
			Cbor:       data,
		})
	}
	return ret, nil
}

// MustLoadInvocationFixtures loads the fixtures and panics on error.
// Use this in benchmark setup code.
func MustLoadInvocationFixtures() []InvocationFixture {
	ret, err := LoadInvocationFixtures()
	if err != nil {
		panic(fmt.Sprintf("failed to load invocation fixtures: %v", err))
	}
	return ret
}

// FundedLedger returns a ledger where test.User1 holds FundedBalance tokens,
// project 1 is verified and listing 1 is active
func FundedLedger(tb testing.TB) *ledger.Ledger {
	tb.Helper()
	l := test_ledger.NewLedger(tb)
	setup := []ledger.Invocation{
		NewInvocation(token.ContractName, token.OpMint, test.ContractOwner, FundedBalance, string(test.User1)),
		NewInvocation(registry.ContractName, registry.OpRegisterProject, test.User1, "Benchmark project"),
		NewInvocation(registry.ContractName, registry.OpVerifyProject, test.ContractOwner, uint64(1)),
		NewInvocation(market.ContractName, market.OpCreateListing, test.User1, uint64(10), uint64(100)),
	}
	for _, inv := range setup {
		if receipt := l.Invoke(inv); !receipt.Ok {
			tb.Fatalf("setup invocation %s failed: %s", inv, receipt.Message)
		}
	}
	return l
}

// NewInvocation builds an invocation from positional arguments
func NewInvocation(
	contract string,
	operation string,
	caller common.Identity,
	args ...any,
) ledger.Invocation {
	return ledger.Invocation{
		Contract:  contract,
		Operation: operation,
		Args:      common.Args(args),
		Caller:    caller,
	}
}
