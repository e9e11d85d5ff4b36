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

package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation. Each contract maps kinds to its
// own numeric error codes.
type ErrorKind uint8

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindUnauthorized
	ErrorKindNotFound
	ErrorKindAlreadyVerified
	ErrorKindInactiveListing
	ErrorKindInsufficientBalance
	ErrorKindUnknownOperation
	ErrorKindInvalidArguments
	ErrorKindUnknownContract
	// ErrorKindInternal covers failures outside the taxonomy, such as a codec error
	ErrorKindInternal
)

var errorKindNames = map[ErrorKind]string{
	ErrorKindNone:                "",
	ErrorKindUnauthorized:        "Unauthorized",
	ErrorKindNotFound:            "NotFound",
	ErrorKindAlreadyVerified:     "AlreadyVerified",
	ErrorKindInactiveListing:     "InactiveListing",
	ErrorKindInsufficientBalance: "InsufficientBalance",
	ErrorKindUnknownOperation:    "UnknownOperation",
	ErrorKindInvalidArguments:    "InvalidArguments",
	ErrorKindUnknownContract:     "UnknownContract",
	ErrorKindInternal:            "Internal",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ErrorKind) UnmarshalText(data []byte) error {
	for kind, name := range errorKindNames {
		if name == string(data) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind: %q", string(data))
}

// Sentinel errors for each kind so callers can use errors.Is
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyVerified     = errors.New("already verified")
	ErrInactiveListing     = errors.New("inactive listing")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownOperation    = errors.New("function not found")
	ErrInvalidArguments    = errors.New("invalid arguments")
	ErrUnknownContract     = errors.New("unknown contract")
)

var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{ErrorKindUnauthorized, ErrUnauthorized},
	{ErrorKindNotFound, ErrNotFound},
	{ErrorKindAlreadyVerified, ErrAlreadyVerified},
	{ErrorKindInactiveListing, ErrInactiveListing},
	{ErrorKindInsufficientBalance, ErrInsufficientBalance},
	{ErrorKindUnknownOperation, ErrUnknownOperation},
	{ErrorKindInvalidArguments, ErrInvalidArguments},
	{ErrorKindUnknownContract, ErrUnknownContract},
}

// Sentinel returns the sentinel error for the kind, or nil when the kind
// has none
func (k ErrorKind) Sentinel() error {
	for _, s := range kindSentinels {
		if s.kind == k {
			return s.err
		}
	}
	return nil
}

// KindOf returns the ErrorKind for an error, following wrapped errors.
// A nil error is ErrorKindNone and an error outside the taxonomy is
// ErrorKindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return ErrorKindInternal
}

// UnauthorizedError indicates that the caller is not the identity required
// for the operation (the privileged identity, or a listing's seller)
type UnauthorizedError struct {
	Caller   Identity
	Required Identity
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf(
		"unauthorized: caller %q is not %q",
		e.Caller,
		e.Required,
	)
}

func (UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// NotFoundError indicates a reference to an entity id that does not exist.
// Unverified is set when the entity exists but is reported as not found
// because it has not been verified yet.
type NotFoundError struct {
	Entity     string
	Id         uint64
	Unverified bool
}

func (e NotFoundError) Error() string {
	if e.Unverified {
		return fmt.Sprintf("%s %d not found (not verified)", e.Entity, e.Id)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.Id)
}

func (NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type AlreadyVerifiedError struct {
	ProjectId uint64
}

func (e AlreadyVerifiedError) Error() string {
	return fmt.Sprintf("project %d already verified", e.ProjectId)
}

func (AlreadyVerifiedError) Is(target error) bool {
	return target == ErrAlreadyVerified
}

type InactiveListingError struct {
	ListingId uint64
}

func (e InactiveListingError) Error() string {
	return fmt.Sprintf("listing %d is not active", e.ListingId)
}

func (InactiveListingError) Is(target error) bool {
	return target == ErrInactiveListing
}

type InsufficientBalanceError struct {
	Account Identity
	Balance uint64
	Amount  uint64
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance: account %q has %d, needs %d",
		e.Account,
		e.Balance,
		e.Amount,
	)
}

func (InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

type UnknownOperationError struct {
	Contract  string
	Operation string
}

func (e UnknownOperationError) Error() string {
	return fmt.Sprintf("function not found: %s.%s", e.Contract, e.Operation)
}

func (UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

// InvalidArgumentsError indicates a wrong argument count or an argument of
// the wrong type. Index is -1 for a count mismatch.
type InvalidArgumentsError struct {
	Operation string
	Index     int
	Reason    string
}

func (e InvalidArgumentsError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid arguments for %s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf(
		"invalid argument %d for %s: %s",
		e.Index,
		e.Operation,
		e.Reason,
	)
}

func (InvalidArgumentsError) Is(target error) bool {
	return target == ErrInvalidArguments
}

type UnknownContractError struct {
	Contract string
}

func (e UnknownContractError) Error() string {
	return fmt.Sprintf("unknown contract: %q", e.Contract)
}

func (UnknownContractError) Is(target error) bool {
	return target == ErrUnknownContract
}
