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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
)

// ErrPendingLimitExceeded is returned when the apply stage's pending buffer is full.
var ErrPendingLimitExceeded = errors.New("pipeline: pending call limit exceeded")

// ApplyFunc applies a decoded and validated call. It is called in sequence
// order from a single goroutine. A returned error means the call could not
// be applied at all; a failed receipt is not an error.
type ApplyFunc func(*CallItem) error

// LedgerApplyFunc returns an ApplyFunc that invokes l and records the
// receipt on the item
func LedgerApplyFunc(l *ledger.Ledger) ApplyFunc {
	return func(item *CallItem) error {
		item.SetReceipt(l.Invoke(*item.Invocation()))
		return nil
	}
}

// ApplyStage buffers processed calls and applies them in sequence order.
//
// ProcessWithStatus must be called from a single goroutine to guarantee
// ordered execution of the ApplyFunc. The ApplyStageRunner provides this.
type ApplyStage struct {
	applyFunc  ApplyFunc
	maxPending int
	mu         sync.Mutex
	// pending holds out-of-order items waiting to be applied
	pending      map[uint64]*CallItem
	nextSequence uint64
}

// NewApplyStage creates a new ApplyStage. maxPending limits the number of
// out-of-order calls that can be buffered, with 0 meaning unlimited.
func NewApplyStage(applyFunc ApplyFunc, maxPending int) *ApplyStage {
	return &ApplyStage{
		applyFunc:  applyFunc,
		maxPending: maxPending,
		pending:    make(map[uint64]*CallItem),
	}
}

func (s *ApplyStage) Name() string {
	return "apply"
}

// Process buffers the item and applies any items that are now in order.
func (s *ApplyStage) Process(ctx context.Context, item *CallItem) error {
	_, err := s.ProcessWithStatus(ctx, item)
	return err
}

// ProcessWithStatus processes an item and returns all items that left the
// stage as a result, in sequence order. An out-of-order item is buffered and
// the returned slice is nil.
func (s *ApplyStage) ProcessWithStatus(ctx context.Context, item *CallItem) ([]*CallItem, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	if item.SequenceNumber() != s.nextSequence {
		// Buffered items are kept even past the limit so that no sequence
		// number is lost
		s.pending[item.SequenceNumber()] = item
		pendingCount := len(s.pending)
		s.mu.Unlock()
		if s.maxPending > 0 && pendingCount > s.maxPending {
			return nil, ErrPendingLimitExceeded
		}
		return nil, nil
	}
	s.nextSequence++
	s.mu.Unlock()

	s.processInOrder(ctx, item)
	buffered := s.applyPending(ctx)
	processed := make([]*CallItem, 0, 1+len(buffered))
	processed = append(processed, item)
	processed = append(processed, buffered...)
	return processed, nil
}

// processInOrder applies an item whose turn has come. Items that failed
// decode or validation still consume their sequence number.
func (s *ApplyStage) processInOrder(ctx context.Context, item *CallItem) {
	if item.DecodeError() == nil && item.ValidationError() == nil {
		s.applyItem(ctx, item)
	}
	item.finish()
}

// applyItem applies a single item without holding the lock
func (s *ApplyStage) applyItem(ctx context.Context, item *CallItem) {
	select {
	case <-ctx.Done():
		item.SetApplied(false, ctx.Err(), 0)
		return
	default:
	}

	start := time.Now()
	err := s.callApplyFunc(item)
	item.SetApplied(err == nil, err, time.Since(start))
}

// callApplyFunc runs the ApplyFunc, turning a panic into an apply error
func (s *ApplyStage) callApplyFunc(item *CallItem) (err error) {
	if s.applyFunc == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &StagePanicError{
				Stage: s.Name(),
				Seq:   item.SequenceNumber(),
				Value: r,
			}
		}
	}()
	return s.applyFunc(item)
}

// applyPending applies any pending items that are now in order
func (s *ApplyStage) applyPending(ctx context.Context) []*CallItem {
	var processed []*CallItem
	for {
		select {
		case <-ctx.Done():
			return processed
		default:
		}

		s.mu.Lock()
		item, ok := s.pending[s.nextSequence]
		if !ok {
			s.mu.Unlock()
			return processed
		}
		delete(s.pending, s.nextSequence)
		s.nextSequence++
		s.mu.Unlock()

		s.processInOrder(ctx, item)
		processed = append(processed, item)
	}
}

// Reset resets the stage state for reuse
func (s *ApplyStage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[uint64]*CallItem)
	s.nextSequence = 0
}

// PendingCount returns the number of items waiting to be applied
func (s *ApplyStage) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ApplyStageRunner runs the apply stage as a single goroutine
type ApplyStageRunner struct {
	stage   *ApplyStage
	input   <-chan *CallItem
	output  chan<- *CallItem
	errors  chan<- error
	metrics *PipelineMetrics
	done    chan struct{}
	running bool
	mu      sync.Mutex
}

func NewApplyStageRunner(
	stage *ApplyStage,
	input <-chan *CallItem,
	output chan<- *CallItem,
	errors chan<- error,
) *ApplyStageRunner {
	return &ApplyStageRunner{
		stage:  stage,
		input:  input,
		output: output,
		errors: errors,
		done:   make(chan struct{}),
	}
}

// SetMetrics sets the metrics collector for the runner.
// Must be called before Start() to avoid data races.
func (r *ApplyStageRunner) SetMetrics(metrics *PipelineMetrics) {
	r.metrics = metrics
}

func (r *ApplyStageRunner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.run(ctx)
}

// Stop waits for the runner to complete. The runner exits when the context
// passed to Start is cancelled or the input channel is closed.
func (r *ApplyStageRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	done := r.done
	r.mu.Unlock()

	<-done
}

func (r *ApplyStageRunner) run(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		r.running = false
		close(r.done)
		r.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-r.input:
			if !ok {
				return
			}

			processed, err := r.stage.ProcessWithStatus(ctx, item)
			if err != nil {
				select {
				case r.errors <- err:
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, p := range processed {
				r.forwardItem(ctx, p)
			}
		}
	}
}

// forwardItem sends an item to output and reports any apply errors
func (r *ApplyStageRunner) forwardItem(ctx context.Context, item *CallItem) {
	// Items with decode or validation errors were never applied
	if r.metrics != nil && item.DecodeError() == nil && item.ValidationError() == nil {
		r.metrics.RecordApply(item.ApplyDuration(), item.ApplyError())
	}

	select {
	case r.output <- item:
	case <-ctx.Done():
		return
	}

	if applyErr := item.ApplyError(); applyErr != nil {
		select {
		case r.errors <- applyErr:
		case <-ctx.Done():
			return
		}
	}
}
