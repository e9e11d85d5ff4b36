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

// Package token implements the fungible carbon credit token ledger
package token

import (
	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

const ContractName = "carbon-credit-token"

const (
	OpMint        = "mint"
	OpTransfer    = "transfer"
	OpGetBalance  = "get-balance"
	OpSetTokenUri = "set-token-uri"
	OpGetTokenUri = "get-token-uri"
)

// Numeric error codes reported by this contract
const (
	ErrCodeOwnerOnly           = 100
	ErrCodeInsufficientBalance = 101
)

var operations = []common.Operation{
	{
		Name: OpMint,
		Args: []common.ArgType{common.ArgTypeUint, common.ArgTypeIdentity},
	},
	{
		Name: OpTransfer,
		Args: []common.ArgType{
			common.ArgTypeUint,
			common.ArgTypeIdentity,
			common.ArgTypeIdentity,
		},
	},
	{
		Name: OpGetBalance,
		Args: []common.ArgType{common.ArgTypeIdentity},
	},
	{
		Name: OpSetTokenUri,
		Args: []common.ArgType{common.ArgTypeString},
	},
	{
		Name: OpGetTokenUri,
	},
}

// Ledger holds per-identity balances and the token metadata URI.
// It performs no locking; callers must serialize access.
type Ledger struct {
	privileged common.Identity
	balances   map[common.Identity]uint64
	tokenUri   string
}

func NewLedger(privileged common.Identity) *Ledger {
	return &Ledger{
		privileged: privileged,
		balances:   make(map[common.Identity]uint64),
	}
}

// Mint credits amount to recipient. Only the privileged identity may mint.
func (l *Ledger) Mint(amount uint64, recipient common.Identity, caller common.Identity) error {
	call := MintCall{
		Amount:    amount,
		Recipient: recipient,
		Caller:    caller,
	}
	if err := common.VerifyCall(OpMint, l, call, MintRules); err != nil {
		return err
	}
	l.balances[recipient] += amount
	return nil
}

// Transfer moves amount from sender to recipient. Authorizing caller against
// sender is left to the dispatcher; only balance sufficiency is enforced.
func (l *Ledger) Transfer(
	amount uint64,
	sender common.Identity,
	recipient common.Identity,
	caller common.Identity,
) error {
	call := TransferCall{
		Amount:    amount,
		Sender:    sender,
		Recipient: recipient,
		Caller:    caller,
	}
	if err := common.VerifyCall(OpTransfer, l, call, TransferRules); err != nil {
		return err
	}
	l.balances[sender] -= amount
	l.balances[recipient] += amount
	return nil
}

// Balance returns the balance of account, which is 0 for unknown accounts
func (l *Ledger) Balance(account common.Identity) uint64 {
	return l.balances[account]
}

// SetTokenUri replaces the token metadata URI. Only the privileged identity
// may change it.
func (l *Ledger) SetTokenUri(uri string, caller common.Identity) error {
	call := SetTokenUriCall{
		Uri:    uri,
		Caller: caller,
	}
	if err := common.VerifyCall(OpSetTokenUri, l, call, SetTokenUriRules); err != nil {
		return err
	}
	l.tokenUri = uri
	return nil
}

func (l *Ledger) TokenUri() string {
	return l.tokenUri
}

// TotalSupply returns the sum of all balances
func (l *Ledger) TotalSupply() uint64 {
	var total uint64
	for _, balance := range l.balances {
		total += balance
	}
	return total
}

// Contract interface

func (l *Ledger) Name() string {
	return ContractName
}

func (l *Ledger) Operations() []common.Operation {
	return operations
}

func (l *Ledger) Check(operation string, args common.Args) error {
	return common.LookupOperation(ContractName, operations, operation, args)
}

func (l *Ledger) Invoke(
	operation string,
	args common.Args,
	caller common.Identity,
) common.Result {
	if err := l.Check(operation, args); err != nil {
		return common.Fail(err)
	}
	// Argument types were verified by Check above
	switch operation {
	case OpMint:
		amount, _ := args.Uint(0)
		recipient, _ := args.Identity(1)
		return common.FromError(l.Mint(amount, recipient, caller))
	case OpTransfer:
		amount, _ := args.Uint(0)
		sender, _ := args.Identity(1)
		recipient, _ := args.Identity(2)
		return common.FromError(l.Transfer(amount, sender, recipient, caller))
	case OpGetBalance:
		account, _ := args.Identity(0)
		return common.Ok(l.Balance(account))
	case OpSetTokenUri:
		uri, _ := args.String(0)
		return common.FromError(l.SetTokenUri(uri, caller))
	case OpGetTokenUri:
		return common.Ok(l.TokenUri())
	}
	return common.Fail(common.UnknownOperationError{
		Contract:  ContractName,
		Operation: operation,
	})
}

func (l *Ledger) ErrorCode(kind common.ErrorKind) uint {
	switch kind {
	case common.ErrorKindUnauthorized:
		return ErrCodeOwnerOnly
	case common.ErrorKindInsufficientBalance:
		return ErrCodeInsufficientBalance
	default:
		return 0
	}
}

// State is a copy of the ledger contents
type State struct {
	cbor.StructAsArray
	Balances map[common.Identity]uint64
	TokenUri string
}

// State returns a copy of the ledger contents. Zero balances are kept so
// that a restored ledger is indistinguishable from the original.
func (l *Ledger) State() State {
	ret := State{
		Balances: make(map[common.Identity]uint64, len(l.balances)),
		TokenUri: l.tokenUri,
	}
	for account, balance := range l.balances {
		ret.Balances[account] = balance
	}
	return ret
}

// Restore replaces the ledger contents with a copy of state
func (l *Ledger) Restore(state State) {
	l.balances = make(map[common.Identity]uint64, len(state.Balances))
	for account, balance := range state.Balances {
		l.balances[account] = balance
	}
	l.tokenUri = state.TokenUri
}
