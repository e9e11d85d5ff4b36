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

package token

import (
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

type MintCall struct {
	Amount    uint64
	Recipient common.Identity
	Caller    common.Identity
}

type TransferCall struct {
	Amount    uint64
	Sender    common.Identity
	Recipient common.Identity
	Caller    common.Identity
}

type SetTokenUriCall struct {
	Uri    string
	Caller common.Identity
}

var MintRules = []common.RuleFunc[*Ledger, MintCall]{
	ValidateMintCaller,
}

var TransferRules = []common.RuleFunc[*Ledger, TransferCall]{
	ValidateTransferBalance,
}

var SetTokenUriRules = []common.RuleFunc[*Ledger, SetTokenUriCall]{
	ValidateSetTokenUriCaller,
}

// ValidateMintCaller ensures that only the privileged identity mints
func ValidateMintCaller(l *Ledger, call MintCall) error {
	return common.RequireIdentity(l.privileged, call.Caller)
}

// ValidateTransferBalance ensures that the sender holds at least the transfer amount
func ValidateTransferBalance(l *Ledger, call TransferCall) error {
	balance := l.balances[call.Sender]
	if balance >= call.Amount {
		return nil
	}
	return common.InsufficientBalanceError{
		Account: call.Sender,
		Balance: balance,
		Amount:  call.Amount,
	}
}

// ValidateSetTokenUriCaller ensures that only the privileged identity changes the URI
func ValidateSetTokenUriCaller(l *Ledger, call SetTokenUriCall) error {
	return common.RequireIdentity(l.privileged, call.Caller)
}
