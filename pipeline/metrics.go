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
	"sync/atomic"
	"time"
)

// PipelineMetrics tracks counters for the entire pipeline
type PipelineMetrics struct {
	callsSubmitted   atomic.Uint64
	callsDecoded     atomic.Uint64
	callsValidated   atomic.Uint64
	callsApplied     atomic.Uint64
	decodeErrors     atomic.Uint64
	validationErrors atomic.Uint64
	applyErrors      atomic.Uint64

	// Queue tracking and timing (requires mutex)
	mu                sync.RWMutex
	currentQueueDepth int
	peakQueueDepth    int
	lastApplyTime     time.Time
	startTime         time.Time
}

func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		startTime: time.Now(),
	}
}

func (m *PipelineMetrics) RecordSubmit() {
	m.callsSubmitted.Add(1)
}

func (m *PipelineMetrics) RecordDecode(duration time.Duration, err error) {
	if err != nil {
		m.decodeErrors.Add(1)
	} else {
		m.callsDecoded.Add(1)
	}
}

func (m *PipelineMetrics) RecordValidate(duration time.Duration, err error) {
	if err != nil {
		m.validationErrors.Add(1)
	} else {
		m.callsValidated.Add(1)
	}
}

func (m *PipelineMetrics) RecordApply(duration time.Duration, err error) {
	if err != nil {
		m.applyErrors.Add(1)
		return
	}
	m.callsApplied.Add(1)
	m.mu.Lock()
	m.lastApplyTime = time.Now()
	m.mu.Unlock()
}

// UpdateQueueDepth updates the queue depth tracking
func (m *PipelineMetrics) UpdateQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentQueueDepth = depth
	if depth > m.peakQueueDepth {
		m.peakQueueDepth = depth
	}
}

// Stats returns a snapshot of the current metrics
func (m *PipelineMetrics) Stats() PipelineStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return PipelineStats{
		CallsSubmitted:    m.callsSubmitted.Load(),
		CallsDecoded:      m.callsDecoded.Load(),
		CallsValidated:    m.callsValidated.Load(),
		CallsApplied:      m.callsApplied.Load(),
		DecodeErrors:      m.decodeErrors.Load(),
		ValidationErrors:  m.validationErrors.Load(),
		ApplyErrors:       m.applyErrors.Load(),
		CurrentQueueDepth: m.currentQueueDepth,
		PeakQueueDepth:    m.peakQueueDepth,
		LastApplyTime:     m.lastApplyTime,
		StartTime:         m.startTime,
	}
}

// Reset resets all metrics
func (m *PipelineMetrics) Reset() {
	m.callsSubmitted.Store(0)
	m.callsDecoded.Store(0)
	m.callsValidated.Store(0)
	m.callsApplied.Store(0)
	m.decodeErrors.Store(0)
	m.validationErrors.Store(0)
	m.applyErrors.Store(0)

	m.mu.Lock()
	m.currentQueueDepth = 0
	m.peakQueueDepth = 0
	m.lastApplyTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
