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

package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/gocarbon/internal/api"
	"github.com/blinklabs-io/gocarbon/internal/test"
	test_ledger "github.com/blinklabs-io/gocarbon/internal/test/ledger"
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/ledger/market"
	"github.com/blinklabs-io/gocarbon/ledger/registry"
	"github.com/blinklabs-io/gocarbon/ledger/token"
	"github.com/blinklabs-io/gocarbon/pipeline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fixture struct {
	ledger   *ledger.Ledger
	pipeline *pipeline.CallPipeline
	handler  http.Handler
	cancel   context.CancelFunc
}

func newFixture(t *testing.T, metricsEnabled bool) *fixture {
	t.Helper()
	l := test_ledger.NewLedger(t)
	p := pipeline.NewCallPipeline(pipeline.WithLedger(l))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	s, err := api.NewServer(api.Config{
		Ledger:         l,
		Submitter:      p,
		MetricsEnabled: metricsEnabled,
	})
	require.NoError(t, err)
	return &fixture{
		ledger:   l,
		pipeline: p,
		handler:  s.Handler(),
		cancel:   cancel,
	}
}

func (f *fixture) close() {
	_ = f.pipeline.Stop()
	f.cancel()
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) invoke(contract string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/contracts/"+contract+"/invoke",
		strings.NewReader(body),
	)
	req.Header.Set("Content-Type", "application/json")
	return f.do(req)
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

type invokeBody struct {
	RequestId string `json:"requestId"`
	Sequence  uint64 `json:"sequence"`
	Receipt   struct {
		Ok        bool            `json:"ok"`
		Value     json.RawMessage `json:"value"`
		ErrorKind string          `json:"errorKind"`
		ErrorCode uint            `json:"errorCode"`
		Message   string          `json:"message"`
	} `json:"receipt"`
}

func decodeInvoke(t *testing.T, rec *httptest.ResponseRecorder) invokeBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ret invokeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	return ret
}

func mintBody(amount string, recipient common.Identity) string {
	return `{"operation":"mint","caller":"` + string(test.ContractOwner) +
		`","args":[` + amount + `,"` + string(recipient) + `"]}`
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := api.NewServer(api.Config{})
	assert.ErrorIs(t, err, api.ErrMissingLedger)
	_, err = api.NewServer(api.Config{Ledger: test_ledger.NewLedger(t)})
	assert.ErrorIs(t, err, api.ErrMissingSubmitter)
}

func TestInvokeMintAndBalance(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	rec := f.invoke(token.ContractName, mintBody("100", test.User1))
	body := decodeInvoke(t, rec)
	assert.True(t, body.Receipt.Ok)
	assert.Equal(t, uint64(0), body.Sequence)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), body.RequestId)
	_, err := uuid.Parse(body.RequestId)
	assert.NoError(t, err)

	rec = f.invoke(
		token.ContractName,
		`{"operation":"get-balance","caller":"`+string(test.User2)+
			`","args":["`+string(test.User1)+`"]}`,
	)
	body = decodeInvoke(t, rec)
	assert.True(t, body.Receipt.Ok)
	assert.Equal(t, uint64(1), body.Sequence)
	assert.JSONEq(t, "100", string(body.Receipt.Value))
}

func TestInvokeTypedFailures(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	decodeInvoke(t, f.invoke(token.ContractName, mintBody("100", test.User1)))

	testDefs := []struct {
		name     string
		contract string
		body     string
		kind     string
		code     uint
	}{
		{
			name:     "insufficient balance",
			contract: token.ContractName,
			body: `{"operation":"transfer","caller":"` + string(test.User1) +
				`","args":[150,"` + string(test.User1) + `","` + string(test.User2) + `"]}`,
			kind: "InsufficientBalance",
			code: token.ErrCodeInsufficientBalance,
		},
		{
			name:     "not owner",
			contract: registry.ContractName,
			body:     `{"operation":"verify-project","caller":"` + string(test.User1) + `","args":[1]}`,
			kind:     "Unauthorized",
			code:     registry.ErrCodeOwnerOnly,
		},
		{
			name:     "listing not found",
			contract: market.ContractName,
			body:     `{"operation":"buy-credits","caller":"` + string(test.User1) + `","args":[7]}`,
			kind:     "NotFound",
			code:     market.ErrCodeNotFound,
		},
		{
			name:     "unknown operation",
			contract: market.ContractName,
			body:     `{"operation":"delist","caller":"` + string(test.User1) + `","args":[1]}`,
			kind:     "UnknownOperation",
		},
		{
			name:     "unknown contract",
			contract: "carbon-credit-bridge",
			body:     `{"operation":"bridge","caller":"` + string(test.User1) + `"}`,
			kind:     "UnknownContract",
		},
		{
			name:     "negative amount",
			contract: token.ContractName,
			body:     mintBody("-5", test.User1),
			kind:     "InvalidArguments",
		},
		{
			name:     "fractional amount",
			contract: token.ContractName,
			body:     mintBody("1.5", test.User1),
			kind:     "InvalidArguments",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			body := decodeInvoke(t, f.invoke(testDef.contract, testDef.body))
			assert.False(t, body.Receipt.Ok)
			assert.Equal(t, testDef.kind, body.Receipt.ErrorKind)
			assert.Equal(t, testDef.code, body.Receipt.ErrorCode)
			assert.NotEmpty(t, body.Receipt.Message)
		})
	}

	// None of the failures changed the minted balance
	rec := f.invoke(
		token.ContractName,
		`{"operation":"get-balance","caller":"`+string(test.User1)+
			`","args":["`+string(test.User1)+`"]}`,
	)
	assert.JSONEq(t, "100", string(decodeInvoke(t, rec).Receipt.Value))
}

func TestInvokeMalformedRequest(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	testDefs := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{"operation":`},
		{name: "missing caller", body: `{"operation":"mint","args":[1]}`},
		{name: "missing operation", body: `{"caller":"someone"}`},
		{name: "unknown field", body: `{"operation":"mint","caller":"someone","extra":true}`},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			rec := f.invoke(token.ContractName, testDef.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, api.ErrCodeInvalidRequest, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}

	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/contracts/"+token.ContractName+"/invoke",
		strings.NewReader(mintBody("1", test.User1)),
	)
	req.Header.Set("Content-Type", "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, f.do(req).Code)

	// Nothing reached the pipeline
	assert.Equal(t, uint64(0), f.pipeline.Stats().CallsSubmitted)
}

func TestRequestIdPassthrough(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", id)
	assert.Equal(t, id, f.do(req).Header().Get("X-Request-Id"))

	// A value that is not a UUID is replaced
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	got := f.do(req).Header().Get("X-Request-Id")
	assert.NotEqual(t, "not-a-uuid", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestStateRoot(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	decodeInvoke(t, f.invoke(token.ContractName, mintBody("100", test.User1)))

	rec := f.get("/v1/state/root")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Root   string `json:"root"`
		Bech32 string `json:"bech32"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	expected, err := f.ledger.StateRoot()
	require.NoError(t, err)
	assert.Equal(t, expected.String(), body.Root)
	assert.True(t, strings.HasPrefix(body.Bech32, common.StateRootPrefix+"1"))
}

func TestListContracts(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	rec := f.get("/v1/contracts")
	require.Equal(t, http.StatusOK, rec.Code)
	var body []struct {
		Name       string `json:"name"`
		Operations []struct {
			Name string   `json:"name"`
			Args []string `json:"args"`
		} `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 3)
	assert.Equal(t, market.ContractName, body[0].Name)
	assert.Equal(t, token.ContractName, body[1].Name)
	assert.Equal(t, registry.ContractName, body[2].Name)
	assert.Len(t, body[2].Operations, 4)
	for _, op := range body[1].Operations {
		if op.Name == token.OpMint {
			assert.Equal(t, []string{"uint", "identity"}, op.Args)
		}
	}
}

func TestHealth(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	rec := f.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["ledger"])
	assert.Contains(t, body.Checks, "pipeline")
}

func TestMetrics(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, true)
	defer f.close()

	decodeInvoke(t, f.invoke(token.ContractName, mintBody("100", test.User1)))
	decodeInvoke(t, f.invoke(token.ContractName, mintBody("100", test.User1)))
	decodeInvoke(
		t,
		f.invoke("carbon-credit-bridge", `{"operation":"bridge","caller":"`+string(test.User1)+`"}`),
	)

	scrape := func() string {
		rec := f.get("/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		out, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		return string(out)
	}
	// Pipeline counters are recorded after the caller is released
	require.Eventually(t, func() bool {
		return f.pipeline.Stats().CallsApplied == 2
	}, 5*time.Second, 10*time.Millisecond)
	text := scrape()
	assert.Contains(
		t,
		text,
		`gocarbon_invocations_total{contract="carbon-credit-token",operation="mint",result="ok"} 2`,
	)
	assert.Contains(
		t,
		text,
		`gocarbon_invocations_total{contract="unknown",operation="unknown",result="UnknownContract"} 1`,
	)
	assert.Contains(t, text, "gocarbon_http_request_duration_seconds")
	assert.Contains(t, text, "gocarbon_pipeline_calls_applied_total 2")
	assert.Contains(t, text, "gocarbon_pipeline_calls_rejected_total 1")
}

func TestMetricsDisabled(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	assert.Equal(t, http.StatusNotFound, f.get("/metrics").Code)
}

type stoppedSubmitter struct{}

func (stoppedSubmitter) SubmitAndWait(context.Context, []byte) (*pipeline.CallItem, error) {
	return nil, pipeline.ErrPipelineStopped
}

func (stoppedSubmitter) Stats() pipeline.PipelineStats {
	return pipeline.PipelineStats{}
}

func (stoppedSubmitter) PendingCount() int {
	return 0
}

func TestInvokeStoppedPipeline(t *testing.T) {
	s, err := api.NewServer(api.Config{
		Ledger:    test_ledger.NewLedger(t),
		Submitter: stoppedSubmitter{},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/contracts/"+token.ContractName+"/invoke",
		strings.NewReader(mintBody("1", test.User1)),
	)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), api.ErrCodeUnavailable)
}

// timedOutSubmitter queues the call but gives up waiting for it
type timedOutSubmitter struct {
	seq uint64
}

func (s timedOutSubmitter) SubmitAndWait(_ context.Context, raw []byte) (*pipeline.CallItem, error) {
	return pipeline.NewCallItem(raw, s.seq), context.DeadlineExceeded
}

func (timedOutSubmitter) Stats() pipeline.PipelineStats {
	return pipeline.PipelineStats{}
}

func (timedOutSubmitter) PendingCount() int {
	return 1
}

func TestInvokeQueuedOutcomeUnknown(t *testing.T) {
	s, err := api.NewServer(api.Config{
		Ledger:    test_ledger.NewLedger(t),
		Submitter: timedOutSubmitter{seq: 7},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/contracts/"+token.ContractName+"/invoke",
		strings.NewReader(mintBody("1", test.User1)),
	)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	var body struct {
		Code     string  `json:"code"`
		Sequence *uint64 `json:"sequence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, api.ErrCodeOutcomeUnknown, body.Code)
	require.NotNil(t, body.Sequence)
	assert.Equal(t, uint64(7), *body.Sequence)
}

func TestInvokeNotQueuedTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t, false)
	defer f.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequestWithContext(
		ctx,
		http.MethodPost,
		"/v1/contracts/"+token.ContractName+"/invoke",
		strings.NewReader(mintBody("1", test.User1)),
	)
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(req)
	assert.Contains(t, []int{http.StatusOK, http.StatusGatewayTimeout}, rec.Code)

	// A cancelled request never blocks the ones behind it
	body := decodeInvoke(t, f.invoke(token.ContractName, mintBody("5", test.User1)))
	assert.True(t, body.Receipt.Ok)
}

// stalledSubmitter reports calls pending while nothing gets applied
type stalledSubmitter struct {
	mu      sync.Mutex
	applied uint64
}

func (*stalledSubmitter) SubmitAndWait(context.Context, []byte) (*pipeline.CallItem, error) {
	return nil, pipeline.ErrPipelineStopped
}

func (s *stalledSubmitter) Stats() pipeline.PipelineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pipeline.PipelineStats{CallsApplied: s.applied}
}

func (*stalledSubmitter) PendingCount() int {
	return 3
}

func (s *stalledSubmitter) apply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied++
}

func TestHealthReportsStalledPipeline(t *testing.T) {
	sub := &stalledSubmitter{}
	s, err := api.NewServer(api.Config{
		Ledger:       test_ledger.NewLedger(t),
		Submitter:    sub,
		StallTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	handler := s.Handler()
	health := func() (int, map[string]string) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body struct {
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body.Checks
	}

	require.Eventually(t, func() bool {
		code, _ := health()
		return code == http.StatusServiceUnavailable
	}, 2*time.Second, 10*time.Millisecond)
	_, checks := health()
	assert.Contains(t, checks["pipeline"], "degraded")
	assert.Equal(t, "ok", checks["ledger"])

	sub.apply()
	code, checks := health()
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, checks["pipeline"], "ok")
}
