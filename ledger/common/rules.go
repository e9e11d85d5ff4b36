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

package common

// RuleFunc represents a function that checks one precondition of a call
// against the current state of a contract. Rules must not modify state.
type RuleFunc[S any, C any] func(state S, call C) error

// VerifyCall runs the provided rules in order and wraps the first error
// encountered into a ValidationError
func VerifyCall[S any, C any](
	operation string,
	state S,
	call C,
	rules []RuleFunc[S, C],
) error {
	for i, rule := range rules {
		if err := rule(state, call); err != nil {
			return NewValidationError(operation, i, err)
		}
	}
	return nil
}
