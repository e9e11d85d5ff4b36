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

// Package common provides the types shared by the carbon ledger contracts.
//
// # Key Files by Purpose
//
//   - identity.go: Identity, the opaque caller token, and privileged checks
//   - errors.go: ErrorKind taxonomy and the typed error values for each kind
//   - args.go: Args, the positional argument list passed to Invoke
//   - contract.go: Contract interface and operation signatures
//   - rules.go: RuleFunc signature and the ordered rule runner
//   - verify_config.go: ValidationError wrapping the first failing rule
//   - common.go: Blake2b256 hashing used for state roots
//
// # Common Patterns
//
// Each operation is guarded by an ordered list of rules. The first rule that
// fails decides the error kind, so the order of the list is the order of the
// checks:
//
//	var VerifyProjectRules = []common.RuleFunc[*Registry, VerifyProjectCall]{
//	    ValidateVerifyProjectCaller,
//	    ValidateVerifyProjectExists,
//	    ValidateVerifyProjectUnverified,
//	}
//
// Rules only read state. A state change is committed after every rule has
// passed, which keeps failed operations free of side effects.
package common
