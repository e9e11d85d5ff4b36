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
	"sync/atomic"
)

// MetricsRecorder records metrics for a processed item and the error, if
// any, returned by the stage
type MetricsRecorder func(item *CallItem, err error)

// ShouldRecordMetrics decides whether metrics are recorded for an item.
// This lets a stage skip items it did not actually process.
type ShouldRecordMetrics func(item *CallItem) bool

// StageWorkerPool runs multiple workers in parallel for a given stage.
type StageWorkerPool struct {
	stage         Stage
	numWorkers    int
	input         <-chan *CallItem
	output        chan<- *CallItem
	errors        chan<- error
	recordMetrics MetricsRecorder
	shouldRecord  ShouldRecordMetrics
	wg            sync.WaitGroup
	started       atomic.Bool
}

// StageWorkerPoolConfig holds configuration for creating a StageWorkerPool.
type StageWorkerPoolConfig struct {
	// Stage is the processing stage to use (required, panics if nil).
	Stage Stage
	// NumWorkers is the number of parallel workers; defaults to 1 if <= 0.
	NumWorkers int
	Input      <-chan *CallItem
	Output     chan<- *CallItem
	// Errors is the channel to send errors to; may be nil.
	Errors        chan<- error
	RecordMetrics MetricsRecorder
	// ShouldRecord determines whether to record metrics for an item.
	// If nil, metrics are recorded for all items.
	ShouldRecord ShouldRecordMetrics
}

func NewStageWorkerPool(config StageWorkerPoolConfig) *StageWorkerPool {
	if config.Stage == nil {
		panic(ErrNilStage)
	}
	return &StageWorkerPool{
		stage:         config.Stage,
		numWorkers:    max(config.NumWorkers, 1),
		input:         config.Input,
		output:        config.Output,
		errors:        config.Errors,
		recordMetrics: config.RecordMetrics,
		shouldRecord:  config.ShouldRecord,
	}
}

// Start starts the worker pool. Calling it more than once has no effect.
func (p *StageWorkerPool) Start(ctx context.Context) {
	if p.started.Swap(true) {
		return
	}
	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop waits for all workers to complete
func (p *StageWorkerPool) Stop() {
	p.wg.Wait()
}

func (p *StageWorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.input:
			if !ok {
				return
			}

			err := p.process(ctx, item)

			if p.recordMetrics != nil &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded) &&
				(p.shouldRecord == nil || p.shouldRecord(item)) {
				p.recordMetrics(item, err)
			}

			if err != nil && p.errors != nil {
				select {
				case p.errors <- err:
				case <-ctx.Done():
					return
				}
			}

			// Failed items are forwarded too, so that the apply stage sees
			// every sequence number
			select {
			case p.output <- item:
			case <-ctx.Done():
				return
			}
		}
	}
}

// process runs the stage on a single item. A panic fails the item instead of
// taking down the worker.
func (p *StageWorkerPool) process(ctx context.Context, item *CallItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StagePanicError{
				Stage: p.stage.Name(),
				Seq:   item.SequenceNumber(),
				Value: r,
			}
			item.fail(err)
		}
	}()
	return p.stage.Process(ctx, item)
}

func DecodeMetricsRecorder(metrics *PipelineMetrics) MetricsRecorder {
	if metrics == nil {
		return nil
	}
	return func(item *CallItem, err error) {
		metrics.RecordDecode(item.DecodeDuration(), err)
	}
}

func ValidateMetricsRecorder(metrics *PipelineMetrics) MetricsRecorder {
	if metrics == nil {
		return nil
	}
	return func(item *CallItem, err error) {
		metrics.RecordValidate(item.ValidateDuration(), err)
	}
}

// RecordIfDecoded only records metrics for items that were successfully decoded
func RecordIfDecoded(item *CallItem) bool {
	return item.IsDecoded()
}
