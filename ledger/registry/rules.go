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

package registry

import (
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

type VerifyProjectCall struct {
	ProjectId uint64
	Caller    common.Identity
}

type IssueCreditsCall struct {
	ProjectId uint64
	Amount    uint64
	Caller    common.Identity
}

// Rules run in order: authorization, then existence, then state

var VerifyProjectRules = []common.RuleFunc[*Registry, VerifyProjectCall]{
	ValidateVerifyProjectCaller,
	ValidateVerifyProjectExists,
	ValidateProjectNotVerified,
}

var IssueCreditsRules = []common.RuleFunc[*Registry, IssueCreditsCall]{
	ValidateIssueCreditsCaller,
	ValidateIssueCreditsProjectExists,
	ValidateProjectVerified,
}

func ValidateVerifyProjectCaller(r *Registry, call VerifyProjectCall) error {
	return common.RequireIdentity(r.privileged, call.Caller)
}

func ValidateVerifyProjectExists(r *Registry, call VerifyProjectCall) error {
	_, err := r.Project(call.ProjectId)
	return err
}

// ValidateProjectNotVerified rejects a second verification of the same project
func ValidateProjectNotVerified(r *Registry, call VerifyProjectCall) error {
	project, err := r.Project(call.ProjectId)
	if err != nil {
		return err
	}
	if project.Verified {
		return common.AlreadyVerifiedError{
			ProjectId: call.ProjectId,
		}
	}
	return nil
}

func ValidateIssueCreditsCaller(r *Registry, call IssueCreditsCall) error {
	return common.RequireIdentity(r.privileged, call.Caller)
}

func ValidateIssueCreditsProjectExists(r *Registry, call IssueCreditsCall) error {
	_, err := r.Project(call.ProjectId)
	return err
}

// ValidateProjectVerified rejects credit issuance against an unverified
// project. The failure keeps the not-found kind and is flagged as Unverified.
func ValidateProjectVerified(r *Registry, call IssueCreditsCall) error {
	project, err := r.Project(call.ProjectId)
	if err != nil {
		return err
	}
	if !project.Verified {
		return common.NotFoundError{
			Entity:     projectEntity,
			Id:         call.ProjectId,
			Unverified: true,
		}
	}
	return nil
}
