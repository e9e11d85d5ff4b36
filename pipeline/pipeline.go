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
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPipelineStopped is returned when trying to submit to a stopped pipeline.
var ErrPipelineStopped = errors.New("pipeline is stopped")

// ErrPipelineNotStarted is returned when trying to use a pipeline that hasn't been started.
var ErrPipelineNotStarted = errors.New("pipeline not started")

// ErrMissingChecker is returned when validation is enabled but no Checker is configured.
var ErrMissingChecker = errors.New("pipeline: validation enabled but Checker not configured")

// closedResultsChan is returned by Results() before Start() is called so
// that callers do not block on a nil channel
var closedResultsChan = func() <-chan *CallItem {
	ch := make(chan *CallItem)
	close(ch)
	return ch
}()

// newNotStartedErrorsChan creates a fresh channel that yields ErrPipelineNotStarted once
func newNotStartedErrorsChan() <-chan error {
	ch := make(chan error, 1)
	ch <- ErrPipelineNotStarted
	close(ch)
	return ch
}

// CallPipeline orchestrates invocation processing. Calls are decoded and
// validated in parallel and applied in submission order.
type CallPipeline struct {
	config PipelineConfig
	logger *slog.Logger

	decodeStage   *DecodeStage
	validateStage *ValidateStage
	applyStage    *ApplyStage

	decodePool   *StageWorkerPool
	validatePool *StageWorkerPool
	applyRunner  *ApplyStageRunner

	submitChan    chan *CallItem
	decodedChan   chan *CallItem
	validatedChan chan *CallItem
	resultsChan   chan *CallItem
	errorsChan    chan error

	metrics *PipelineMetrics

	// seqSlot holds a token while a submitter owns the next sequence number
	seqSlot         chan struct{}
	sequenceCounter uint64 // guarded by seqSlot
	ctx             context.Context
	cancel          context.CancelFunc
	started         atomic.Bool
	stopped         atomic.Bool
	wg              sync.WaitGroup
	mu              sync.Mutex   // protects Start/Stop
	submitMu        sync.RWMutex // protects Submit against concurrent Stop
}

// NewCallPipeline creates a new CallPipeline using functional options.
//
// Example:
//
//	p := NewCallPipeline(
//	    WithDecodeWorkers(4),
//	    WithLedger(l),
//	)
func NewCallPipeline(opts ...PipelineOption) *CallPipeline {
	config := DefaultPipelineConfig()
	for _, opt := range opts {
		opt(&config)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CallPipeline{
		config:  config,
		logger:  logger,
		metrics: NewPipelineMetrics(),
		seqSlot: make(chan struct{}, 1),
	}
}

// Start starts the pipeline processing
func (p *CallPipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped.Load() {
		return ErrPipelineStopped
	}
	if p.started.Load() {
		return nil
	}

	validationEnabled := p.config.ValidateWorkers > 0
	if validationEnabled && p.config.Checker == nil {
		return ErrMissingChecker
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	bufSize := p.config.PrefetchBufferSize
	p.submitChan = make(chan *CallItem, bufSize)
	p.decodedChan = make(chan *CallItem, bufSize)
	p.resultsChan = make(chan *CallItem, bufSize)
	p.errorsChan = make(chan error, bufSize)

	p.decodeStage = NewDecodeStage()
	p.applyStage = NewApplyStage(p.config.ApplyFunc, p.config.MaxPendingCalls)

	p.decodePool = NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:         p.decodeStage,
		NumWorkers:    p.config.DecodeWorkers,
		Input:         p.submitChan,
		Output:        p.decodedChan,
		Errors:        p.errorsChan,
		RecordMetrics: DecodeMetricsRecorder(p.metrics),
	})

	var applyInput <-chan *CallItem
	if validationEnabled {
		p.validatedChan = make(chan *CallItem, bufSize)
		p.validateStage = NewValidateStage(p.config.Checker)
		p.validatePool = NewStageWorkerPool(StageWorkerPoolConfig{
			Stage:         p.validateStage,
			NumWorkers:    p.config.ValidateWorkers,
			Input:         p.decodedChan,
			Output:        p.validatedChan,
			Errors:        p.errorsChan,
			RecordMetrics: ValidateMetricsRecorder(p.metrics),
			ShouldRecord:  RecordIfDecoded,
		})
		applyInput = p.validatedChan
	} else {
		applyInput = p.decodedChan
	}

	p.applyRunner = NewApplyStageRunner(
		p.applyStage,
		applyInput,
		p.resultsChan,
		p.errorsChan,
	)
	p.applyRunner.SetMetrics(p.metrics)

	p.decodePool.Start(p.ctx) //nolint:contextcheck
	if validationEnabled {
		p.validatePool.Start(p.ctx) //nolint:contextcheck
	}
	p.applyRunner.Start(p.ctx) //nolint:contextcheck

	p.wg.Add(1)
	go p.metricsCollector()

	p.started.Store(true)
	p.logger.Debug(
		"pipeline started",
		"component", "pipeline",
		"decode_workers", p.config.DecodeWorkers,
		"validate_workers", p.config.ValidateWorkers,
		"max_pending", p.config.MaxPendingCalls,
	)
	return nil
}

// Submit submits raw invocation CBOR for processing and returns the item
// tracking it. It is safe to call concurrently with Stop().
func (p *CallPipeline) Submit(ctx context.Context, rawCbor []byte) (*CallItem, error) {
	if !p.started.Load() {
		return nil, ErrPipelineNotStarted
	}

	// The read lock keeps Stop() from closing submitChan while a send is
	// in progress
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.stopped.Load() {
		return nil, ErrPipelineStopped
	}

	// The sequence number is consumed only once the item is queued, so a
	// cancelled submit never leaves a gap in front of the apply stage
	select {
	case p.seqSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrPipelineStopped
	}
	defer func() { <-p.seqSlot }()

	item := NewCallItem(rawCbor, p.sequenceCounter)
	select {
	case p.submitChan <- item:
		p.sequenceCounter++
		p.metrics.RecordSubmit()
		return item, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrPipelineStopped
	}
}

// SubmitAndWait submits raw invocation CBOR and waits until the call has
// left the apply stage
func (p *CallPipeline) SubmitAndWait(ctx context.Context, rawCbor []byte) (*CallItem, error) {
	item, err := p.Submit(ctx, rawCbor)
	if err != nil {
		return nil, err
	}
	select {
	case <-item.Done():
		return item, nil
	case <-ctx.Done():
		return item, ctx.Err()
	case <-p.ctx.Done():
		return item, ErrPipelineStopped
	}
}

// Results returns a channel of processed items in sequence order.
// If the pipeline has not been started, returns a closed channel.
func (p *CallPipeline) Results() <-chan *CallItem {
	if !p.started.Load() {
		return closedResultsChan
	}
	return p.resultsChan
}

// Errors returns a channel of processing errors.
// If the pipeline has not been started, returns a channel that yields
// ErrPipelineNotStarted once and then closes.
func (p *CallPipeline) Errors() <-chan error {
	if !p.started.Load() {
		return newNotStartedErrorsChan()
	}
	return p.errorsChan
}

// Stop gracefully stops the pipeline
func (p *CallPipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started.Load() || p.stopped.Load() {
		return nil
	}

	// Cancel first so that a Submit() blocked on a full channel releases
	// its read lock
	p.cancel()

	p.submitMu.Lock()
	p.stopped.Store(true)
	close(p.submitChan)
	p.submitMu.Unlock()

	p.decodePool.Stop()
	close(p.decodedChan)

	if p.validatePool != nil {
		p.validatePool.Stop()
		close(p.validatedChan)
	}

	p.applyRunner.Stop()

	close(p.resultsChan)
	close(p.errorsChan)

	p.wg.Wait()

	p.logger.Debug("pipeline stopped", "component", "pipeline")
	return nil
}

// Stats returns the current pipeline statistics
func (p *CallPipeline) Stats() PipelineStats {
	return p.metrics.Stats()
}

// PendingCount returns the approximate number of calls still being
// processed, including those buffered in the apply stage
func (p *CallPipeline) PendingCount() int {
	if !p.started.Load() {
		return 0
	}
	channelDepth := len(p.submitChan) + len(p.decodedChan) + len(p.validatedChan)
	applyPending := 0
	if p.applyStage != nil {
		applyPending = p.applyStage.PendingCount()
	}
	return channelDepth + applyPending
}

// WaitForDrain blocks until all currently submitted calls have been
// processed or the context is cancelled
func (p *CallPipeline) WaitForDrain(ctx context.Context) error {
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.PendingCount() == 0 {
				return nil
			}
		}
	}
}

func (p *CallPipeline) metricsCollector() {
	defer p.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			depth := len(p.submitChan) + len(p.decodedChan) + len(p.validatedChan)
			p.metrics.UpdateQueueDepth(depth)
		}
	}
}

// DrainResults reads all available results without blocking
func (p *CallPipeline) DrainResults() []*CallItem {
	var results []*CallItem
	for {
		select {
		case item, ok := <-p.resultsChan:
			if !ok {
				return results
			}
			results = append(results, item)
		default:
			return results
		}
	}
}

// DrainErrors reads all available errors without blocking
func (p *CallPipeline) DrainErrors() []error {
	var errs []error
	for {
		select {
		case err, ok := <-p.errorsChan:
			if !ok {
				return errs
			}
			errs = append(errs, err)
		default:
			return errs
		}
	}
}
