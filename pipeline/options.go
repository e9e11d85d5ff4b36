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
	"log/slog"
	"runtime"

	"github.com/blinklabs-io/gocarbon/ledger"
)

// DefaultMaxPendingCalls is the default limit for out-of-order calls
// buffered in the apply stage
const DefaultMaxPendingCalls = 1024

// PipelineConfig holds configuration for a CallPipeline.
type PipelineConfig struct {
	// DecodeWorkers is the number of parallel decode workers.
	DecodeWorkers int
	// ValidateWorkers is the number of parallel validate workers. Zero
	// disables validation.
	ValidateWorkers int
	// PrefetchBufferSize is the buffer size for inter-stage channels.
	PrefetchBufferSize int
	// MaxPendingCalls limits out-of-order calls buffered in the apply stage.
	MaxPendingCalls int
	// Checker performs the stateless checks in the validate stage.
	Checker Checker
	// ApplyFunc is the function called to apply calls in order.
	ApplyFunc ApplyFunc
	Logger    *slog.Logger
}

// DefaultPipelineConfig returns a PipelineConfig with workers scaled to the
// CPU count. Validation is enabled but needs a Checker.
func DefaultPipelineConfig() PipelineConfig {
	workers := max(runtime.NumCPU()/4, 2)
	return PipelineConfig{
		DecodeWorkers:      workers,
		ValidateWorkers:    workers,
		PrefetchBufferSize: 256,
		MaxPendingCalls:    DefaultMaxPendingCalls,
	}
}

// PipelineOption is a functional option for configuring a CallPipeline.
type PipelineOption func(*PipelineConfig)

// WithConfig applies a complete PipelineConfig, replacing all default values.
// Options applied after WithConfig still override the config values.
func WithConfig(config PipelineConfig) PipelineOption {
	return func(c *PipelineConfig) {
		*c = config
	}
}

func WithDecodeWorkers(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n > 0 {
			c.DecodeWorkers = n
		}
	}
}

// WithValidateWorkers sets the number of validate workers.
// Set to 0 to disable validation entirely.
func WithValidateWorkers(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n >= 0 {
			c.ValidateWorkers = n
		}
	}
}

func WithPrefetchBufferSize(size int) PipelineOption {
	return func(c *PipelineConfig) {
		if size > 0 {
			c.PrefetchBufferSize = size
		}
	}
}

func WithMaxPendingCalls(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n > 0 {
			c.MaxPendingCalls = n
		}
	}
}

func WithChecker(checker Checker) PipelineOption {
	return func(c *PipelineConfig) {
		c.Checker = checker
	}
}

// WithApplyFunc sets the apply function. A nil function is ignored.
func WithApplyFunc(fn ApplyFunc) PipelineOption {
	return func(c *PipelineConfig) {
		if fn != nil {
			c.ApplyFunc = fn
		}
	}
}

// WithLedger validates calls against l and applies them to it
func WithLedger(l *ledger.Ledger) PipelineOption {
	return func(c *PipelineConfig) {
		c.Checker = l
		c.ApplyFunc = LedgerApplyFunc(l)
	}
}

func WithLogger(logger *slog.Logger) PipelineOption {
	return func(c *PipelineConfig) {
		c.Logger = logger
	}
}
