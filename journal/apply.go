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

package journal

import (
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/pipeline"
)

// ApplyFunc returns a pipeline.ApplyFunc that invokes l and journals each
// applied call with its receipt. Journal sequence numbers continue after the
// newest existing entry, so the pipeline must be new when this is called.
func (j *Journal) ApplyFunc(l *ledger.Ledger) pipeline.ApplyFunc {
	base := j.NextSeq()
	return func(item *pipeline.CallItem) error {
		inv := *item.Invocation()
		receipt := l.Invoke(inv)
		item.SetReceipt(receipt)
		return j.Append(Entry{
			Seq:        base + item.SequenceNumber(),
			Invocation: inv,
			Receipt:    receipt,
		})
	}
}
