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

package market

import (
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

type CancelListingCall struct {
	ListingId uint64
	Caller    common.Identity
}

type BuyCreditsCall struct {
	ListingId uint64
	Caller    common.Identity
}

// Cancellation checks existence, then the seller, then the listing state
var CancelListingRules = []common.RuleFunc[*Market, CancelListingCall]{
	ValidateCancelListingExists,
	ValidateCancelListingSeller,
	ValidateCancelListingActive,
}

// Purchases are open to any caller
var BuyCreditsRules = []common.RuleFunc[*Market, BuyCreditsCall]{
	ValidateBuyCreditsListingExists,
	ValidateBuyCreditsListingActive,
}

func ValidateCancelListingExists(m *Market, call CancelListingCall) error {
	_, err := m.Listing(call.ListingId)
	return err
}

// ValidateCancelListingSeller ensures that only the seller cancels a listing
func ValidateCancelListingSeller(m *Market, call CancelListingCall) error {
	listing, err := m.Listing(call.ListingId)
	if err != nil {
		return err
	}
	return common.RequireIdentity(listing.Seller, call.Caller)
}

func ValidateCancelListingActive(m *Market, call CancelListingCall) error {
	return validateListingActive(m, call.ListingId)
}

func ValidateBuyCreditsListingExists(m *Market, call BuyCreditsCall) error {
	_, err := m.Listing(call.ListingId)
	return err
}

func ValidateBuyCreditsListingActive(m *Market, call BuyCreditsCall) error {
	return validateListingActive(m, call.ListingId)
}

func validateListingActive(m *Market, id uint64) error {
	listing, err := m.Listing(id)
	if err != nil {
		return err
	}
	if !listing.Active {
		return common.InactiveListingError{
			ListingId: id,
		}
	}
	return nil
}
