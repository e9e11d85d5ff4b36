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

package ledger

import (
	"fmt"

	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

// Invocation is a single contract call as it travels through the pipeline
// and the journal
type Invocation struct {
	cbor.StructAsArray
	Contract  string          `json:"contract"`
	Operation string          `json:"operation"`
	Args      common.Args     `json:"args"`
	Caller    common.Identity `json:"caller"`
}

// Number of fields in the array form of an Invocation
const invocationFields = 4

// NewInvocationFromCbor decodes an invocation from its CBOR form. Trailing
// data is rejected.
func NewInvocationFromCbor(data []byte) (*Invocation, error) {
	var ret Invocation
	if err := cbor.DecodeStrict(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (i *Invocation) UnmarshalCBOR(data []byte) error {
	fields, err := cbor.ListLength(data)
	if err != nil {
		return fmt.Errorf("decode invocation: %w", err)
	}
	if fields != invocationFields {
		return fmt.Errorf(
			"decode invocation: expected %d fields, found %d",
			invocationFields,
			fields,
		)
	}
	if err := cbor.DecodeGeneric(data, i); err != nil {
		return err
	}
	if i.Contract == "" {
		return fmt.Errorf("invocation has no contract name")
	}
	if i.Operation == "" {
		return fmt.Errorf("invocation has no operation name")
	}
	return nil
}

func (i Invocation) Cbor() ([]byte, error) {
	return cbor.Encode(&i)
}

func (i Invocation) String() string {
	return fmt.Sprintf("%s.%s(%v) by %s", i.Contract, i.Operation, []any(i.Args), i.Caller)
}

// Receipt is the outcome of applying an invocation
type Receipt struct {
	cbor.StructAsArray
	Ok        bool             `json:"ok"`
	Value     any              `json:"value,omitempty"`
	ErrorKind common.ErrorKind `json:"errorKind,omitempty"`
	ErrorCode uint             `json:"errorCode,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// NewFailureReceipt builds a failed receipt for an invocation that never
// reached a contract, such as one rejected by the stateless checks
func NewFailureReceipt(err error) Receipt {
	return Receipt{
		ErrorKind: common.KindOf(err),
		Message:   err.Error(),
	}
}

// Err rebuilds a typed error from a failed receipt. It returns nil for a
// successful receipt.
func (r Receipt) Err() error {
	if r.Ok {
		return nil
	}
	return &InvocationError{
		Kind:    r.ErrorKind,
		Code:    r.ErrorCode,
		Message: r.Message,
	}
}

// InvocationError is a failure recovered from a receipt, such as one read
// back from the journal
type InvocationError struct {
	Kind    common.ErrorKind
	Code    uint
	Message string
}

func (e *InvocationError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the sentinel error for the receipt's error kind
func (e *InvocationError) Is(target error) bool {
	return e.Kind != common.ErrorKindNone && target == e.Kind.Sentinel()
}
