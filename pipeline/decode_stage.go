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
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
)

// ErrNilStage is returned when a nil stage is passed to a worker pool.
var ErrNilStage = errors.New("pipeline: nil stage")

// DecodeStage decodes raw invocation CBOR
type DecodeStage struct{}

func NewDecodeStage() *DecodeStage {
	return &DecodeStage{}
}

func (s *DecodeStage) Name() string {
	return "decode"
}

// Process decodes the raw CBOR in the item
func (s *DecodeStage) Process(ctx context.Context, item *CallItem) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	inv, err := ledger.NewInvocationFromCbor(item.RawCbor())
	duration := time.Since(start)

	if err != nil {
		item.SetDecodeError(err, duration)
		return err
	}

	item.SetInvocation(inv, duration)
	return nil
}
