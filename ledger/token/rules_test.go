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

package token_test

import (
	"testing"

	"github.com/blinklabs-io/gocarbon/internal/test"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/token"
)

func TestValidateTransferBalance(t *testing.T) {
	l := token.NewLedger(test.ContractOwner)
	if err := l.Mint(10, test.User1, test.ContractOwner); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testDefs := []struct {
		name    string
		amount  uint64
		sender  common.Identity
		wantErr bool
	}{
		{"exact balance", 10, test.User1, false},
		{"less than balance", 3, test.User1, false},
		{"zero from empty account", 0, test.User2, false},
		{"more than balance", 11, test.User1, true},
		{"from empty account", 1, test.User2, true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := token.ValidateTransferBalance(
				l,
				token.TransferCall{
					Amount:    testDef.amount,
					Sender:    testDef.sender,
					Recipient: test.User2,
				},
			)
			if testDef.wantErr && err == nil {
				t.Errorf("ValidateTransferBalance should fail for %d from %s", testDef.amount, testDef.sender)
			}
			if !testDef.wantErr && err != nil {
				t.Errorf("ValidateTransferBalance should succeed for %d from %s\n  got error: %v", testDef.amount, testDef.sender, err)
			}
		})
	}
}

func TestValidateMintCaller(t *testing.T) {
	l := token.NewLedger(test.ContractOwner)
	if err := token.ValidateMintCaller(l, token.MintCall{Caller: test.ContractOwner}); err != nil {
		t.Errorf("privileged caller should be allowed to mint\n  got error: %v", err)
	}
	if err := token.ValidateMintCaller(l, token.MintCall{Caller: test.User1}); err == nil {
		t.Errorf("non-privileged caller should not be allowed to mint")
	}
}
