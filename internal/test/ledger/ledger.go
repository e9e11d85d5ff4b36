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

package test_ledger

import (
	"testing"

	"github.com/blinklabs-io/gocarbon/internal/test"
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/market"
	"github.com/blinklabs-io/gocarbon/ledger/registry"
	"github.com/blinklabs-io/gocarbon/ledger/token"
)

// NewLedger returns an empty ledger owned by test.ContractOwner
func NewLedger(t testing.TB) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(ledger.Config{PrivilegedIdentity: test.ContractOwner})
	if err != nil {
		t.Fatalf("unexpected error creating ledger: %s", err)
	}
	return l
}

// Step is an invocation paired with the expected outcome
type Step struct {
	Invocation ledger.Invocation
	Kind       common.ErrorKind
}

func invocation(contract, operation string, caller common.Identity, args ...any) ledger.Invocation {
	return ledger.Invocation{
		Contract:  contract,
		Operation: operation,
		Args:      common.Args(args),
		Caller:    caller,
	}
}

// Scenario returns an invocation stream that touches every contract,
// including failures that must leave state unchanged
func Scenario() []Step {
	return []Step{
		// Token
		{invocation(token.ContractName, token.OpMint, test.ContractOwner, uint64(100), string(test.User1)), common.ErrorKindNone},
		{invocation(token.ContractName, token.OpTransfer, test.User1, uint64(150), string(test.User1), string(test.User2)), common.ErrorKindInsufficientBalance},
		{invocation(token.ContractName, token.OpTransfer, test.User1, uint64(40), string(test.User1), string(test.User2)), common.ErrorKindNone},
		{invocation(token.ContractName, token.OpMint, test.User1, uint64(5), string(test.User1)), common.ErrorKindUnauthorized},
		{invocation(token.ContractName, token.OpSetTokenUri, test.ContractOwner, "ipfs://carbon"), common.ErrorKindNone},
		// Registry
		{invocation(registry.ContractName, registry.OpRegisterProject, test.User1, "Reforestation"), common.ErrorKindNone},
		{invocation(registry.ContractName, registry.OpIssueCredits, test.ContractOwner, uint64(1), uint64(100)), common.ErrorKindNotFound},
		{invocation(registry.ContractName, registry.OpVerifyProject, test.ContractOwner, uint64(1)), common.ErrorKindNone},
		{invocation(registry.ContractName, registry.OpVerifyProject, test.ContractOwner, uint64(1)), common.ErrorKindAlreadyVerified},
		{invocation(registry.ContractName, registry.OpIssueCredits, test.ContractOwner, uint64(1), uint64(100)), common.ErrorKindNone},
		{invocation(registry.ContractName, registry.OpRegisterProject, test.User2, "Wind farm"), common.ErrorKindNone},
		// Market
		{invocation(market.ContractName, market.OpCreateListing, test.User1, uint64(100), uint64(1000)), common.ErrorKindNone},
		{invocation(market.ContractName, market.OpCancelListing, test.User2, uint64(1)), common.ErrorKindUnauthorized},
		{invocation(market.ContractName, market.OpBuyCredits, test.User2, uint64(1)), common.ErrorKindNone},
		{invocation(market.ContractName, market.OpCancelListing, test.User1, uint64(1)), common.ErrorKindInactiveListing},
		{invocation(market.ContractName, market.OpCreateListing, test.User2, uint64(10), uint64(20)), common.ErrorKindNone},
		// Dispatch failures
		{invocation(market.ContractName, "delist", test.User1, uint64(1)), common.ErrorKindUnknownOperation},
		{invocation(token.ContractName, token.OpMint, test.ContractOwner, "lots", string(test.User1)), common.ErrorKindInvalidArguments},
		{invocation("carbon-credit-bridge", "bridge", test.User1), common.ErrorKindUnknownContract},
	}
}

// Invocations returns only the invocations of Scenario
func Invocations() []ledger.Invocation {
	steps := Scenario()
	ret := make([]ledger.Invocation, len(steps))
	for i, step := range steps {
		ret[i] = step.Invocation
	}
	return ret
}
