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

// Identity is an opaque caller token, such as an address string. Only
// equality comparison is meaningful.
type Identity string

func (i Identity) String() string {
	return string(i)
}

// RequireIdentity returns an UnauthorizedError unless caller equals required
func RequireIdentity(required Identity, caller Identity) error {
	if caller == required {
		return nil
	}
	return UnauthorizedError{
		Caller:   caller,
		Required: required,
	}
}
