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
)

// Each rule reports a missing listing on its own, outside its rule list
func TestRulesMissingListing(t *testing.T) {
	m := market.NewMarket()
	cancel := market.CancelListingCall{ListingId: 4, Caller: test.User1}
	buy := market.BuyCreditsCall{ListingId: 4, Caller: test.User2}
	testDefs := []struct {
		name string
		rule func() error
	}{
		{"ValidateCancelListingSeller", func() error { return market.ValidateCancelListingSeller(m, cancel) }},
		{"ValidateCancelListingActive", func() error { return market.ValidateCancelListingActive(m, cancel) }},
		{"ValidateBuyCreditsListingActive", func() error { return market.ValidateBuyCreditsListingActive(m, buy) }},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := testDef.rule()
			if !errors.Is(err, common.ErrNotFound) {
				t.Errorf("%s should report a missing listing\n  got error: %v", testDef.name, err)
			}
		})
	}
}

func TestValidateCancelListingSeller(t *testing.T) {
	m := market.NewMarket()
	id := m.CreateListing(10, 100, test.User1)
	err := market.ValidateCancelListingSeller(m, market.CancelListingCall{ListingId: id, Caller: test.User2})
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("expected an unauthorized error, got: %v", err)
	}
	err = market.ValidateCancelListingSeller(m, market.CancelListingCall{ListingId: id, Caller: test.User1})
	if err != nil {
		t.Errorf("the seller should be allowed to cancel\n  got error: %v", err)
	}
}
