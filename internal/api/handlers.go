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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/pipeline"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
)

// Upper bound on an invoke request body
const maxRequestBytes = 64 << 10

type invokeRequest struct {
	Operation string `json:"operation" validate:"required"`
	Caller    string `json:"caller" validate:"required"`
	Args      []any  `json:"args"`
}

type invokeResponse struct {
	RequestId string         `json:"requestId"`
	Sequence  uint64         `json:"sequence"`
	Receipt   ledger.Receipt `json:"receipt"`
}

type stateRootResponse struct {
	Root   string `json:"root"`
	Bech32 string `json:"bech32"`
}

type operationResponse struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

type contractResponse struct {
	Name       string              `json:"name"`
	Operations []operationResponse `json:"operations"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

// invoke submits an invocation through the pipeline. Typed contract failures
// are returned with status 200 in the receipt.
func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	var body invokeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid JSON body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	inv := ledger.Invocation{
		Contract:  chi.URLParam(r, "contract"),
		Operation: body.Operation,
		Args:      normalizeArgs(body.Args),
		Caller:    common.Identity(body.Caller),
	}
	raw, err := inv.Cbor()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "cannot encode invocation: "+err.Error())
		return
	}
	item, err := s.submitter.SubmitAndWait(r.Context(), raw)
	if err != nil {
		if item != nil {
			// Queued calls are still applied after the client gives up
			s.writeOutcomeUnknown(w, item.SequenceNumber(), err)
			return
		}
		s.writeSubmitErr(w, err)
		return
	}
	if err := item.ApplyError(); err != nil {
		s.logger.Error(
			"failed to apply invocation",
			"component", "api",
			"invocation", inv.String(),
			"error", err,
		)
		writeErr(w, http.StatusInternalServerError, "", "invocation could not be applied")
		return
	}
	receipt := item.Receipt()
	if receipt == nil {
		writeErr(w, http.StatusInternalServerError, "", "invocation has no outcome")
		return
	}
	s.metrics.recordInvocation(inv, *receipt)
	writeJSON(w, http.StatusOK, invokeResponse{
		RequestId: chimid.GetReqID(r.Context()),
		Sequence:  item.SequenceNumber(),
		Receipt:   *receipt,
	})
}

func (s *Server) writeSubmitErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrPipelineStopped),
		errors.Is(err, pipeline.ErrPipelineNotStarted):
		writeErr(w, http.StatusServiceUnavailable, "", err.Error())
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		writeErr(w, http.StatusGatewayTimeout, "", err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "", err.Error())
	}
}

func (s *Server) writeOutcomeUnknown(w http.ResponseWriter, seq uint64, err error) {
	status := http.StatusGatewayTimeout
	if errors.Is(err, pipeline.ErrPipelineStopped) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{
		Error:    fmt.Sprintf("call %d was queued but its outcome is unknown: %s", seq, err),
		Code:     ErrCodeOutcomeUnknown,
		Sequence: &seq,
	})
}

// normalizeArgs converts JSON numbers into integer values where they fit so
// that they survive CBOR encoding
func normalizeArgs(args []any) common.Args {
	ret := make(common.Args, len(args))
	for idx, arg := range args {
		num, ok := arg.(json.Number)
		if !ok {
			ret[idx] = arg
			continue
		}
		if v, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
			ret[idx] = v
		} else if v, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
			ret[idx] = v
		} else if v, err := num.Float64(); err == nil {
			ret[idx] = v
		} else {
			ret[idx] = num.String()
		}
	}
	return ret
}

func (s *Server) stateRoot(w http.ResponseWriter, r *http.Request) {
	root, err := s.ledger.StateRoot()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateRootResponse{
		Root:   root.String(),
		Bech32: root.Bech32(common.StateRootPrefix),
	})
}

func (s *Server) listContracts(w http.ResponseWriter, r *http.Request) {
	names := s.ledger.Contracts()
	ret := make([]contractResponse, 0, len(names))
	for _, name := range names {
		ops, _ := s.ledger.Operations(name)
		contract := contractResponse{
			Name:       name,
			Operations: make([]operationResponse, 0, len(ops)),
		}
		for _, op := range ops {
			args := make([]string, 0, len(op.Args))
			for _, arg := range op.Args {
				args = append(args, arg.String())
			}
			contract.Operations = append(
				contract.Operations,
				operationResponse{Name: op.Name, Args: args},
			)
		}
		ret = append(ret, contract)
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allOK := true
	if _, err := s.ledger.StateRoot(); err != nil {
		checks["ledger"] = "down: " + err.Error()
		allOK = false
	} else {
		checks["ledger"] = "ok"
	}
	pending := s.submitter.PendingCount()
	applied := s.submitter.Stats().CallsApplied
	if stalledFor, stalled := s.progress.observe(pending, applied, time.Now()); stalled {
		checks["pipeline"] = fmt.Sprintf(
			"degraded: %d calls pending, none applied for %s",
			pending,
			stalledFor.Round(time.Millisecond),
		)
		allOK = false
	} else {
		checks["pipeline"] = fmt.Sprintf("ok (%d calls pending)", pending)
	}
	if !allOK {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "unhealthy",
			Checks:  checks,
			Message: "one or more checks failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}
