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

// Package pipeline provides a concurrent front end for contract invocations.
// It decodes and validates submitted calls in parallel and applies them to
// the ledger strictly in submission order.
package pipeline

import (
	"context"
	"fmt"
	"time"
)

// StagePanicError reports a panic recovered while a stage processed a call.
// The call fails and the pipeline keeps running.
type StagePanicError struct {
	Stage string
	Seq   uint64
	Value any
}

func (e *StagePanicError) Error() string {
	return fmt.Sprintf(
		"pipeline: %s stage panicked on call %d: %v",
		e.Stage,
		e.Seq,
		e.Value,
	)
}

// Stage represents a processing stage in the pipeline.
type Stage interface {
	// Name returns the name of the stage for logging and metrics.
	Name() string
	// Process processes a single item. Returns an error if processing fails.
	Process(ctx context.Context, item *CallItem) error
}

// StageFunc is an adapter that allows using ordinary functions as Stage implementations.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, item *CallItem) error
}

func NewStageFunc(name string, fn func(ctx context.Context, item *CallItem) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

func (s *StageFunc) Name() string {
	return s.name
}

func (s *StageFunc) Process(ctx context.Context, item *CallItem) error {
	return s.fn(ctx, item)
}

// Pipeline represents an invocation processing pipeline.
type Pipeline interface {
	// Start starts the pipeline processing.
	Start(ctx context.Context) error
	// Submit submits raw invocation CBOR for processing.
	// The context allows callers to handle timeouts or cancellations when the
	// pipeline is full and applying backpressure.
	Submit(ctx context.Context, rawCbor []byte) (*CallItem, error)
	// Results returns a channel of processed items in sequence order.
	Results() <-chan *CallItem
	// Errors returns a channel of processing errors.
	Errors() <-chan error
	// Stop gracefully stops the pipeline.
	Stop() error
	// WaitForDrain waits for all submitted calls to be processed.
	WaitForDrain(ctx context.Context) error
	// Stats returns the current pipeline statistics.
	Stats() PipelineStats
}

// PipelineStats contains statistics about pipeline performance.
type PipelineStats struct {
	CallsSubmitted   uint64
	CallsDecoded     uint64
	CallsValidated   uint64
	CallsApplied     uint64
	DecodeErrors     uint64
	ValidationErrors uint64
	ApplyErrors      uint64

	// CurrentQueueDepth is the number of calls waiting in inter-stage channels.
	CurrentQueueDepth int
	// PeakQueueDepth is the maximum queue depth observed.
	PeakQueueDepth int

	// LastApplyTime is the time the last call was applied.
	LastApplyTime time.Time
	// StartTime is when the pipeline was started.
	StartTime time.Time
}
