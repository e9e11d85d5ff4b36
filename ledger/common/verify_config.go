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

import "fmt"

// ValidationError records which rule of an operation rejected a call
type ValidationError struct {
	Operation string
	RuleIndex int
	Cause     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new structured validation error
func NewValidationError(
	operation string,
	ruleIndex int,
	cause error,
) *ValidationError {
	return &ValidationError{
		Operation: operation,
		RuleIndex: ruleIndex,
		Cause:     cause,
	}
}
