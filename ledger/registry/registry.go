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

// Package registry implements the carbon offset project registry
package registry

import (
	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

const ContractName = "carbon-offset-projects"

const (
	OpRegisterProject = "register-project"
	OpVerifyProject   = "verify-project"
	OpIssueCredits    = "issue-credits"
	OpGetProject      = "get-project"
)

// Numeric error codes reported by this contract
const (
	ErrCodeOwnerOnly       = 100
	ErrCodeNotFound        = 101
	ErrCodeAlreadyVerified = 102
)

const projectEntity = "project"

var operations = []common.Operation{
	{
		Name: OpRegisterProject,
		Args: []common.ArgType{common.ArgTypeString},
	},
	{
		Name: OpVerifyProject,
		Args: []common.ArgType{common.ArgTypeUint},
	},
	{
		Name: OpIssueCredits,
		Args: []common.ArgType{common.ArgTypeUint, common.ArgTypeUint},
	},
	{
		Name: OpGetProject,
		Args: []common.ArgType{common.ArgTypeUint},
	},
}

type Project struct {
	cbor.StructAsArray
	Id            uint64          `json:"id"`
	Owner         common.Identity `json:"owner"`
	Description   string          `json:"description"`
	Verified      bool            `json:"verified"`
	CreditsIssued uint64          `json:"creditsIssued"`
}

// Registry holds project records keyed by id. It performs no locking;
// callers must serialize access.
type Registry struct {
	privileged    common.Identity
	projects      map[uint64]*Project
	nextProjectId uint64
}

func NewRegistry(privileged common.Identity) *Registry {
	return &Registry{
		privileged:    privileged,
		projects:      make(map[uint64]*Project),
		nextProjectId: 1,
	}
}

// RegisterProject records a new unverified project owned by caller and
// returns its id
func (r *Registry) RegisterProject(description string, caller common.Identity) uint64 {
	id := r.nextProjectId
	r.nextProjectId++
	r.projects[id] = &Project{
		Id:          id,
		Owner:       caller,
		Description: description,
	}
	return id
}

// VerifyProject marks a project as verified. It can succeed only once per project.
func (r *Registry) VerifyProject(id uint64, caller common.Identity) error {
	call := VerifyProjectCall{
		ProjectId: id,
		Caller:    caller,
	}
	if err := common.VerifyCall(OpVerifyProject, r, call, VerifyProjectRules); err != nil {
		return err
	}
	r.projects[id].Verified = true
	return nil
}

// IssueCredits adds amount to the credits issued against a verified project
func (r *Registry) IssueCredits(id uint64, amount uint64, caller common.Identity) error {
	call := IssueCreditsCall{
		ProjectId: id,
		Amount:    amount,
		Caller:    caller,
	}
	if err := common.VerifyCall(OpIssueCredits, r, call, IssueCreditsRules); err != nil {
		return err
	}
	r.projects[id].CreditsIssued += amount
	return nil
}

// Project returns a copy of the project record
func (r *Registry) Project(id uint64) (Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return Project{}, common.NotFoundError{
			Entity: projectEntity,
			Id:     id,
		}
	}
	return *project, nil
}

// NextProjectId returns the id the next registration will receive
func (r *Registry) NextProjectId() uint64 {
	return r.nextProjectId
}

// Contract interface

func (r *Registry) Name() string {
	return ContractName
}

func (r *Registry) Operations() []common.Operation {
	return operations
}

func (r *Registry) Check(operation string, args common.Args) error {
	return common.LookupOperation(ContractName, operations, operation, args)
}

func (r *Registry) Invoke(
	operation string,
	args common.Args,
	caller common.Identity,
) common.Result {
	if err := r.Check(operation, args); err != nil {
		return common.Fail(err)
	}
	switch operation {
	case OpRegisterProject:
		description, _ := args.String(0)
		return common.Ok(r.RegisterProject(description, caller))
	case OpVerifyProject:
		id, _ := args.Uint(0)
		return common.FromError(r.VerifyProject(id, caller))
	case OpIssueCredits:
		id, _ := args.Uint(0)
		amount, _ := args.Uint(1)
		return common.FromError(r.IssueCredits(id, amount, caller))
	case OpGetProject:
		id, _ := args.Uint(0)
		project, err := r.Project(id)
		if err != nil {
			return common.Fail(err)
		}
		return common.Ok(project)
	}
	return common.Fail(common.UnknownOperationError{
		Contract:  ContractName,
		Operation: operation,
	})
}

func (r *Registry) ErrorCode(kind common.ErrorKind) uint {
	switch kind {
	case common.ErrorKindUnauthorized:
		return ErrCodeOwnerOnly
	case common.ErrorKindNotFound:
		return ErrCodeNotFound
	case common.ErrorKindAlreadyVerified:
		return ErrCodeAlreadyVerified
	default:
		return 0
	}
}

// State is a copy of the registry contents, ordered by project id
type State struct {
	cbor.StructAsArray
	Projects      []Project
	NextProjectId uint64
}

func (r *Registry) State() State {
	ret := State{
		Projects:      make([]Project, 0, len(r.projects)),
		NextProjectId: r.nextProjectId,
	}
	// Ids are dense, so walking the id range yields a sorted list
	for id := uint64(1); id < r.nextProjectId; id++ {
		if project, ok := r.projects[id]; ok {
			ret.Projects = append(ret.Projects, *project)
		}
	}
	return ret
}

// Restore replaces the registry contents with a copy of state
func (r *Registry) Restore(state State) {
	r.projects = make(map[uint64]*Project, len(state.Projects))
	for _, project := range state.Projects {
		tmpProject := project
		r.projects[project.Id] = &tmpProject
	}
	r.nextProjectId = max(state.NextProjectId, 1)
	for id := range r.projects {
		if id >= r.nextProjectId {
			r.nextProjectId = id + 1
		}
	}
}
