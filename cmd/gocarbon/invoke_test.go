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

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/gocarbon/internal/api"
	test_ledger "github.com/blinklabs-io/gocarbon/internal/test/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/registry"
	"github.com/blinklabs-io/gocarbon/ledger/token"
	"github.com/blinklabs-io/gocarbon/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTypedArgs(t *testing.T) {
	testDefs := []struct {
		name     string
		argTypes []string
		raw      []string
		expected []any
		wantErr  bool
	}{
		{
			name:     "numeric description stays a string",
			argTypes: []string{"string"},
			raw:      []string{"2024"},
			expected: []any{"2024"},
		},
		{
			name:     "numeric identity stays a string",
			argTypes: []string{"uint", "identity"},
			raw:      []string{"5", "42"},
			expected: []any{json.Number("5"), "42"},
		},
		{
			name:     "extra args are strings",
			argTypes: []string{"uint"},
			raw:      []string{"1", "2"},
			expected: []any{json.Number("1"), "2"},
		},
		{
			name:     "unknown operation",
			raw:      []string{"7"},
			expected: []any{"7"},
		},
		{
			name:     "non-numeric uint",
			argTypes: []string{"uint"},
			raw:      []string{"five"},
			wantErr:  true,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			args, err := typedArgs(testDef.argTypes, testDef.raw)
			if testDef.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, args)
		})
	}
}

func TestFetchArgTypes(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := test_ledger.NewLedger(t)
	p := pipeline.NewCallPipeline(pipeline.WithLedger(l))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	defer func() { _ = p.Stop() }()
	s, err := api.NewServer(api.Config{Ledger: l, Submitter: p})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	defer client.CloseIdleConnections()

	argTypes, err := fetchArgTypes(client, srv.URL, token.ContractName, token.OpMint)
	require.NoError(t, err)
	assert.Equal(t, []string{"uint", "identity"}, argTypes)

	argTypes, err = fetchArgTypes(client, srv.URL, registry.ContractName, registry.OpRegisterProject)
	require.NoError(t, err)
	assert.Equal(t, []string{"string"}, argTypes)

	argTypes, err = fetchArgTypes(client, srv.URL, "carbon-credit-bridge", "bridge")
	require.NoError(t, err)
	assert.Empty(t, argTypes)
}
