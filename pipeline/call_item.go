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

package pipeline

import (
	"sync"
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
)

// CallItem represents an invocation as it moves through the pipeline.
// It is thread-safe and tracks the processing state at each stage.
type CallItem struct {
	// Immutable fields (set at construction, never modified)
	rawCbor        []byte
	sequenceNumber uint64
	receivedAt     time.Time
	done           chan struct{}
	finishOnce     sync.Once

	mu sync.RWMutex

	// Decode stage results
	invocation     *ledger.Invocation
	decodeError    error
	decodeDuration time.Duration

	// Validate stage results
	valid            bool
	validationError  error
	validateDuration time.Duration

	// Apply stage results
	applied       bool
	receipt       *ledger.Receipt
	applyError    error
	applyDuration time.Duration
}

// NewCallItem creates a new CallItem. The rawCbor slice is copied so that
// the item owns its data.
func NewCallItem(rawCbor []byte, seq uint64) *CallItem {
	cbor := make([]byte, len(rawCbor))
	copy(cbor, rawCbor)
	return &CallItem{
		rawCbor:        cbor,
		sequenceNumber: seq,
		receivedAt:     time.Now(),
		done:           make(chan struct{}),
	}
}

// RawCbor returns the raw CBOR bytes of the invocation.
// The returned slice should not be modified.
func (c *CallItem) RawCbor() []byte {
	return c.rawCbor
}

// SequenceNumber returns the sequence number assigned at submission
func (c *CallItem) SequenceNumber() uint64 {
	return c.sequenceNumber
}

func (c *CallItem) ReceivedAt() time.Time {
	return c.receivedAt
}

// Done returns a channel that is closed once the item has left the apply
// stage, whether it was applied or skipped
func (c *CallItem) Done() <-chan struct{} {
	return c.done
}

func (c *CallItem) finish() {
	c.finishOnce.Do(func() {
		close(c.done)
	})
}

// Invocation returns the decoded invocation, or nil if not yet decoded or
// decode failed
func (c *CallItem) Invocation() *ledger.Invocation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invocation
}

// SetInvocation sets the decoded invocation and decode duration.
// Clears any previously set decode error for consistency.
func (c *CallItem) SetInvocation(inv *ledger.Invocation, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invocation = inv
	c.decodeError = nil
	c.decodeDuration = duration
}

func (c *CallItem) DecodeError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeError
}

// SetDecodeError sets the decode error and duration.
// Clears any previously set invocation for consistency.
func (c *CallItem) SetDecodeError(err error, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invocation = nil
	c.decodeError = err
	c.decodeDuration = duration
}

func (c *CallItem) DecodeDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeDuration
}

// IsDecoded returns true if the invocation has been successfully decoded
func (c *CallItem) IsDecoded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invocation != nil
}

// fail records err against the stage the item has reached: decoding if it
// has no invocation yet, validation otherwise
func (c *CallItem) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invocation == nil {
		if c.decodeError == nil {
			c.decodeError = err
		}
		return
	}
	if c.validationError == nil {
		c.valid = false
		c.validationError = err
	}
}

func (c *CallItem) SetValidation(valid bool, err error, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = valid
	c.validationError = err
	c.validateDuration = duration
}

func (c *CallItem) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid
}

func (c *CallItem) ValidationError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validationError
}

func (c *CallItem) ValidateDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validateDuration
}

// SetReceipt records the receipt produced by applying the invocation
func (c *CallItem) SetReceipt(receipt ledger.Receipt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipt = &receipt
}

// Receipt returns the outcome of the call. Items that failed decode or
// validation get a failure receipt built from that error. It returns nil
// while the outcome is not yet known.
func (c *CallItem) Receipt() *ledger.Receipt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.receipt != nil {
		ret := *c.receipt
		return &ret
	}
	if c.decodeError != nil {
		ret := ledger.NewFailureReceipt(c.decodeError)
		return &ret
	}
	if c.validationError != nil {
		ret := ledger.NewFailureReceipt(c.validationError)
		return &ret
	}
	return nil
}

func (c *CallItem) SetApplied(applied bool, err error, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = applied
	c.applyError = err
	c.applyDuration = duration
}

func (c *CallItem) IsApplied() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied
}

func (c *CallItem) ApplyError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applyError
}

func (c *CallItem) ApplyDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applyDuration
}

// TotalDuration returns the total processing time since submission
func (c *CallItem) TotalDuration() time.Duration {
	return time.Since(c.receivedAt)
}
