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

package api

import (
	"sync"
	"time"
)

// progressTracker watches the pipeline between health checks. The pipeline
// counts as stalled when calls have been pending for longer than timeout
// without the applied counter moving.
type progressTracker struct {
	mu           sync.Mutex
	timeout      time.Duration
	lastApplied  uint64
	lastProgress time.Time
}

func newProgressTracker(timeout time.Duration) *progressTracker {
	return &progressTracker{
		timeout:      timeout,
		lastProgress: time.Now(),
	}
}

// observe records a sample and returns how long the pipeline has gone
// without progress, and whether that exceeds the timeout
func (t *progressTracker) observe(pending int, applied uint64, now time.Time) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pending == 0 || applied != t.lastApplied {
		t.lastApplied = applied
		t.lastProgress = now
		return 0, false
	}
	idle := now.Sub(t.lastProgress)
	return idle, idle > t.timeout
}
