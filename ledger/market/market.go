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

// Package market implements the carbon credit marketplace
package market

import (
	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

const ContractName = "carbon-credit-marketplace"

const (
	OpCreateListing = "create-listing"
	OpCancelListing = "cancel-listing"
	OpBuyCredits    = "buy-credits"
	OpGetListing    = "get-listing"
)

// Numeric error codes reported by this contract
const (
	ErrCodeNotFound        = 100
	ErrCodeUnauthorized    = 101
	ErrCodeInactiveListing = 102
)

const listingEntity = "listing"

var operations = []common.Operation{
	{
		Name: OpCreateListing,
		Args: []common.ArgType{common.ArgTypeUint, common.ArgTypeUint},
	},
	{
		Name: OpCancelListing,
		Args: []common.ArgType{common.ArgTypeUint},
	},
	{
		Name: OpBuyCredits,
		Args: []common.ArgType{common.ArgTypeUint},
	},
	{
		Name: OpGetListing,
		Args: []common.ArgType{common.ArgTypeUint},
	},
}

type Listing struct {
	cbor.StructAsArray
	Id     uint64          `json:"id"`
	Seller common.Identity `json:"seller"`
	Amount uint64          `json:"amount"`
	Price  uint64          `json:"price"`
	Active bool            `json:"active"`
}

// Market holds sell listings keyed by id. It performs no locking; callers
// must serialize access.
type Market struct {
	listings      map[uint64]*Listing
	nextListingId uint64
}

func NewMarket() *Market {
	return &Market{
		listings:      make(map[uint64]*Listing),
		nextListingId: 1,
	}
}

// CreateListing records an active listing sold by caller and returns its id
func (m *Market) CreateListing(amount uint64, price uint64, caller common.Identity) uint64 {
	id := m.nextListingId
	m.nextListingId++
	m.listings[id] = &Listing{
		Id:     id,
		Seller: caller,
		Amount: amount,
		Price:  price,
		Active: true,
	}
	return id
}

// CancelListing deactivates a listing on behalf of its seller
func (m *Market) CancelListing(id uint64, caller common.Identity) error {
	call := CancelListingCall{
		ListingId: id,
		Caller:    caller,
	}
	if err := common.VerifyCall(OpCancelListing, m, call, CancelListingRules); err != nil {
		return err
	}
	m.listings[id].Active = false
	return nil
}

// BuyCredits consumes an active listing. Token balances are not moved here.
func (m *Market) BuyCredits(id uint64, caller common.Identity) error {
	call := BuyCreditsCall{
		ListingId: id,
		Caller:    caller,
	}
	if err := common.VerifyCall(OpBuyCredits, m, call, BuyCreditsRules); err != nil {
		return err
	}
	m.listings[id].Active = false
	return nil
}

// Listing returns a copy of the listing record
func (m *Market) Listing(id uint64) (Listing, error) {
	listing, ok := m.listings[id]
	if !ok {
		return Listing{}, common.NotFoundError{
			Entity: listingEntity,
			Id:     id,
		}
	}
	return *listing, nil
}

func (m *Market) NextListingId() uint64 {
	return m.nextListingId
}

// Contract interface

func (m *Market) Name() string {
	return ContractName
}

func (m *Market) Operations() []common.Operation {
	return operations
}

func (m *Market) Check(operation string, args common.Args) error {
	return common.LookupOperation(ContractName, operations, operation, args)
}

func (m *Market) Invoke(
	operation string,
	args common.Args,
	caller common.Identity,
) common.Result {
	if err := m.Check(operation, args); err != nil {
		return common.Fail(err)
	}
	switch operation {
	case OpCreateListing:
		amount, _ := args.Uint(0)
		price, _ := args.Uint(1)
		return common.Ok(m.CreateListing(amount, price, caller))
	case OpCancelListing:
		id, _ := args.Uint(0)
		return common.FromError(m.CancelListing(id, caller))
	case OpBuyCredits:
		id, _ := args.Uint(0)
		return common.FromError(m.BuyCredits(id, caller))
	case OpGetListing:
		id, _ := args.Uint(0)
		listing, err := m.Listing(id)
		if err != nil {
			return common.Fail(err)
		}
		return common.Ok(listing)
	}
	return common.Fail(common.UnknownOperationError{
		Contract:  ContractName,
		Operation: operation,
	})
}

func (m *Market) ErrorCode(kind common.ErrorKind) uint {
	switch kind {
	case common.ErrorKindNotFound:
		return ErrCodeNotFound
	case common.ErrorKindUnauthorized:
		return ErrCodeUnauthorized
	case common.ErrorKindInactiveListing:
		return ErrCodeInactiveListing
	default:
		return 0
	}
}

// State is a copy of the marketplace contents, ordered by listing id
type State struct {
	cbor.StructAsArray
	Listings      []Listing
	NextListingId uint64
}

func (m *Market) State() State {
	ret := State{
		Listings:      make([]Listing, 0, len(m.listings)),
		NextListingId: m.nextListingId,
	}
	for id := uint64(1); id < m.nextListingId; id++ {
		if listing, ok := m.listings[id]; ok {
			ret.Listings = append(ret.Listings, *listing)
		}
	}
	return ret
}

// Restore replaces the marketplace contents with a copy of state
func (m *Market) Restore(state State) {
	m.listings = make(map[uint64]*Listing, len(state.Listings))
	for _, listing := range state.Listings {
		tmpListing := listing
		m.listings[listing.Id] = &tmpListing
	}
	m.nextListingId = max(state.NextListingId, 1)
	for id := range m.listings {
		if id >= m.nextListingId {
			m.nextListingId = id + 1
		}
	}
}
