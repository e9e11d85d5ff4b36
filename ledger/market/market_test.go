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

package market_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/gocarbon/internal/test"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListing(t *testing.T) {
	m := market.NewMarket()
	id := m.CreateListing(100, 1000, test.User1)
	assert.Equal(t, uint64(1), id)
	listing, err := m.Listing(id)
	require.NoError(t, err)
	assert.Equal(
		t,
		market.Listing{
			Id:     1,
			Seller: test.User1,
			Amount: 100,
			Price:  1000,
			Active: true,
		},
		listing,
	)
	assert.Equal(t, uint64(2), m.CreateListing(5, 5, test.User2))
}

func TestCancelListing(t *testing.T) {
	m := market.NewMarket()
	id := m.CreateListing(100, 1000, test.User1)

	err := m.CancelListing(id, test.User2)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	listing, _ := m.Listing(id)
	assert.True(t, listing.Active)

	require.NoError(t, m.CancelListing(id, test.User1))
	listing, _ = m.Listing(id)
	assert.False(t, listing.Active)

	err = m.CancelListing(id, test.User1)
	assert.True(t, errors.Is(err, common.ErrInactiveListing))
}

func TestCancelListingCheckOrder(t *testing.T) {
	m := market.NewMarket()
	id := m.CreateListing(100, 1000, test.User1)
	require.NoError(t, m.BuyCredits(id, test.User2))

	testDefs := []struct {
		name   string
		id     uint64
		caller common.Identity
		kind   common.ErrorKind
	}{
		// Existence is checked before the seller
		{"missing listing non-seller", 9, test.User2, common.ErrorKindNotFound},
		// The seller is checked before the listing state
		{"inactive listing non-seller", id, test.User2, common.ErrorKindUnauthorized},
		{"inactive listing seller", id, test.User1, common.ErrorKindInactiveListing},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := m.CancelListing(testDef.id, testDef.caller)
			assert.Equal(t, testDef.kind, common.KindOf(err))
		})
	}
}

func TestBuyCredits(t *testing.T) {
	m := market.NewMarket()
	err := m.BuyCredits(1, test.User2)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	id := m.CreateListing(100, 1000, test.User1)
	// Any caller may buy, including the seller
	require.NoError(t, m.BuyCredits(id, test.User1))
	err = m.BuyCredits(id, test.User2)
	assert.True(t, errors.Is(err, common.ErrInactiveListing))
}

func TestListingOneShot(t *testing.T) {
	type action func(m *market.Market, id uint64) error
	cancel := func(m *market.Market, id uint64) error { return m.CancelListing(id, test.User1) }
	buy := func(m *market.Market, id uint64) error { return m.BuyCredits(id, test.User2) }
	testDefs := []struct {
		name          string
		first, second action
	}{
		{"cancel then cancel", cancel, cancel},
		{"cancel then buy", cancel, buy},
		{"buy then cancel", buy, cancel},
		{"buy then buy", buy, buy},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			m := market.NewMarket()
			id := m.CreateListing(10, 20, test.User1)
			require.NoError(t, testDef.first(m, id))
			err := testDef.second(m, id)
			assert.True(t, errors.Is(err, common.ErrInactiveListing))
		})
	}
}

func TestScenarioB(t *testing.T) {
	m := market.NewMarket()

	res := m.Invoke(market.OpCreateListing, common.Args{uint64(100), uint64(1000)}, test.User1)
	require.True(t, res.Ok())
	assert.Equal(t, uint64(1), res.Value)

	res = m.Invoke(market.OpBuyCredits, common.Args{uint64(1)}, test.User2)
	require.True(t, res.Ok())

	res = m.Invoke(market.OpGetListing, common.Args{uint64(1)}, test.User2)
	require.True(t, res.Ok())
	listing, ok := res.Value.(market.Listing)
	require.True(t, ok)
	assert.False(t, listing.Active)

	res = m.Invoke(market.OpCancelListing, common.Args{uint64(1)}, test.User1)
	assert.Equal(t, common.ErrorKindInactiveListing, res.Kind())
	assert.Equal(t, uint(market.ErrCodeInactiveListing), m.ErrorCode(res.Kind()))
}

func TestInvokeErrorCodes(t *testing.T) {
	m := market.NewMarket()
	m.CreateListing(100, 1000, test.User1)

	res := m.Invoke(market.OpGetListing, common.Args{uint64(2)}, test.User1)
	assert.Equal(t, uint(market.ErrCodeNotFound), m.ErrorCode(res.Kind()))

	res = m.Invoke(market.OpCancelListing, common.Args{uint64(1)}, test.User2)
	assert.Equal(t, uint(market.ErrCodeUnauthorized), m.ErrorCode(res.Kind()))

	res = m.Invoke("update-listing", common.Args{uint64(1)}, test.User1)
	assert.Equal(t, common.ErrorKindUnknownOperation, res.Kind())
	assert.Equal(t, uint(0), m.ErrorCode(res.Kind()))

	res = m.Invoke(market.OpCreateListing, common.Args{"100", uint64(1)}, test.User1)
	assert.Equal(t, common.ErrorKindInvalidArguments, res.Kind())
	assert.Equal(t, uint64(2), m.NextListingId())
}

func TestStateRestore(t *testing.T) {
	m := market.NewMarket()
	m.CreateListing(1, 2, test.User1)
	m.CreateListing(3, 4, test.User2)
	require.NoError(t, m.CancelListing(1, test.User1))

	restored := market.NewMarket()
	restored.Restore(m.State())
	listing, err := restored.Listing(1)
	require.NoError(t, err)
	assert.False(t, listing.Active)
	listing, err = restored.Listing(2)
	require.NoError(t, err)
	assert.True(t, listing.Active)
	assert.Equal(t, uint64(3), restored.CreateListing(5, 6, test.User1))
}
