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
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
)

// Checker performs the stateless checks for an invocation. It must be safe
// for concurrent use.
type Checker interface {
	Check(inv ledger.Invocation) error
}

// CheckerFunc adapts an ordinary function to the Checker interface
type CheckerFunc func(inv ledger.Invocation) error

func (f CheckerFunc) Check(inv ledger.Invocation) error {
	return f(inv)
}

// ValidateStage runs the stateless dispatch checks (known contract, known
// operation, argument shape) on decoded invocations
type ValidateStage struct {
	checker Checker
}

func NewValidateStage(checker Checker) *ValidateStage {
	return &ValidateStage{
		checker: checker,
	}
}

func (s *ValidateStage) Name() string {
	return "validate"
}

// Process validates the invocation in the item
func (s *ValidateStage) Process(ctx context.Context, item *CallItem) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Skip validation if decode failed - the decode stage already reported
	// the error, so return nil to avoid generating a spurious duplicate error.
	if !item.IsDecoded() {
		return nil
	}

	start := time.Now()
	err := s.checker.Check(*item.Invocation())
	duration := time.Since(start)

	if err != nil {
		item.SetValidation(false, err, duration)
		return err
	}

	item.SetValidation(true, nil, duration)
	return nil
}
