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

// Result is the outcome of a contract invocation. A nil Err means success,
// in which case Value holds the returned value, if any.
type Result struct {
	Value any
	Err   error
}

func Ok(value any) Result {
	return Result{Value: value}
}

func Fail(err error) Result {
	return Result{Err: err}
}

// FromError returns a successful Result without a value when err is nil,
// and a failed Result otherwise
func FromError(err error) Result {
	return Result{Err: err}
}

func (r Result) Ok() bool {
	return r.Err == nil
}

func (r Result) Kind() ErrorKind {
	return KindOf(r.Err)
}

// Operation describes the name and argument signature of a contract operation
type Operation struct {
	Name string
	Args []ArgType
}

// Contract is the dispatch surface shared by the token ledger, the project
// registry and the marketplace
type Contract interface {
	// Name returns the contract name used for routing
	Name() string
	// Operations returns the operations recognized by Invoke
	Operations() []Operation
	// Check performs the stateless dispatch checks (known operation and
	// argument shape) without touching state
	Check(operation string, args Args) error
	// Invoke runs an operation on behalf of caller
	Invoke(operation string, args Args, caller Identity) Result
	// ErrorCode maps an error kind to the contract's numeric code, or 0
	ErrorCode(kind ErrorKind) uint
}

// LookupOperation finds the named operation in ops and checks args against
// its signature
func LookupOperation(
	contract string,
	ops []Operation,
	operation string,
	args Args,
) error {
	for _, op := range ops {
		if op.Name == operation {
			return args.Check(operation, op.Args)
		}
	}
	return UnknownOperationError{
		Contract:  contract,
		Operation: operation,
	}
}
