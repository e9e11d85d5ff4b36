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
	"bytes"
	"fmt"

	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger"
)

// ReplayMismatchError reports a replayed invocation whose receipt differs
// from the recorded one
type ReplayMismatchError struct {
	Seq      uint64
	Recorded ledger.Receipt
	Replayed ledger.Receipt
}

func (e ReplayMismatchError) Error() string {
	return fmt.Sprintf(
		"replay mismatch at entry %d: recorded %+v, replayed %+v",
		e.Seq,
		e.Recorded,
		e.Replayed,
	)
}

// Replay applies every journaled invocation to l in order and checks that
// each recomputed receipt matches the recorded one. It returns the number of
// entries replayed.
func (j *Journal) Replay(l *ledger.Ledger) (int, error) {
	count := 0
	err := j.Iterate(0, func(entry Entry) error {
		replayed := l.Invoke(entry.Invocation)
		// Values decoded from the journal lose their Go types, so compare
		// the canonical encodings
		recordedCbor, err := cbor.Encode(&entry.Receipt)
		if err != nil {
			return err
		}
		replayedCbor, err := cbor.Encode(&replayed)
		if err != nil {
			return err
		}
		if !bytes.Equal(recordedCbor, replayedCbor) {
			return ReplayMismatchError{
				Seq:      entry.Seq,
				Recorded: entry.Receipt,
				Replayed: replayed,
			}
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	j.logger.Debug("journal replayed", "component", "journal", "entries", count)
	return count, nil
}
