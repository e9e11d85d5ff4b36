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

//go:build profile

// Profiling tests for the invocation path. They are guarded by the "profile"
// build tag so they don't run in normal test suites.
//
// Usage:
//
//	go test -tags=profile -run=TestProfileScenario \
//	    -cpuprofile=cpu_scenario.prof -memprofile=mem_scenario.prof \
//	    ./internal/bench/...
//
//	go tool pprof -http=localhost:8080 cpu_scenario.prof
package bench

import (
	"testing"

	test_ledger "github.com/blinklabs-io/gocarbon/internal/test/ledger"
	"github.com/blinklabs-io/gocarbon/ledger"
)

// profileIterations is the number of times the scenario is replayed
const profileIterations = 1000

// TestProfileScenario decodes and applies the shared scenario repeatedly,
// computing the state root after each pass
func TestProfileScenario(t *testing.T) {
	fixtures := MustLoadInvocationFixtures()
	for i := 0; i < profileIterations; i++ {
		l := test_ledger.NewLedger(t)
		for _, fixture := range fixtures {
			inv, err := ledger.NewInvocationFromCbor(fixture.Cbor)
			if err != nil {
				t.Fatalf("failed to decode %s: %v", fixture.Name, err)
			}
			if err := l.Check(*inv); err != nil {
				continue
			}
			l.Invoke(*inv)
		}
		if _, err := l.StateRoot(); err != nil {
			t.Fatal(err)
		}
	}
}
