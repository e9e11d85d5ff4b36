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
	"encoding/json"
	"net/http"
)

// Error codes returned in JSON { "error": "...", "code": "..." }
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeTimeout        = "timeout"
	ErrCodeOutcomeUnknown = "outcome_unknown"
	ErrCodeInternal       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// Sequence is set when the call was queued but its outcome is unknown
	Sequence *uint64 `json:"sequence,omitempty"`
}

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is
// empty, a default is derived from the HTTP status.
func writeErr(w http.ResponseWriter, status int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(status)
	}
	writeJSON(w, status, errorResponse{Error: message, Code: errCode})
}

func defaultErrCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeTimeout
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
