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
	"net/http"
	"strconv"
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/pipeline"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "gocarbon"
	// Label used for contract and operation names that do not exist
	unknownLabel = "unknown"
)

// Metrics holds the server's collectors. Each server has its own registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	invocations     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with
// gauges for the pipeline statistics returned by stats
func NewMetrics(stats func() pipeline.PipelineStats) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invocations_total",
				Help:      "Invocations by contract, operation and result",
			},
			[]string{"contract", "operation", "result"},
		),
	}
	if stats != nil {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_queue_depth",
				Help:      "Calls waiting between pipeline stages",
			},
			func() float64 { return float64(stats().CurrentQueueDepth) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_calls_applied_total",
				Help:      "Calls applied by the pipeline",
			},
			func() float64 { return float64(stats().CallsApplied) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_calls_rejected_total",
				Help:      "Calls rejected by decoding or validation",
			},
			func() float64 {
				s := stats()
				return float64(s.DecodeErrors + s.ValidationErrors)
			},
		)
	}
	return m
}

// Registry returns the registry backing /metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// middleware records request duration labelled by route pattern
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		path := unknownLabel
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		m.requestDuration.WithLabelValues(
			r.Method,
			path,
			strconv.Itoa(ww.Status()),
		).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) recordInvocation(inv ledger.Invocation, receipt ledger.Receipt) {
	contract := inv.Contract
	operation := inv.Operation
	switch receipt.ErrorKind {
	case common.ErrorKindUnknownContract:
		contract = unknownLabel
		operation = unknownLabel
	case common.ErrorKindUnknownOperation:
		operation = unknownLabel
	}
	result := "ok"
	if !receipt.Ok {
		result = receipt.ErrorKind.String()
	}
	m.invocations.WithLabelValues(contract, operation, result).Inc()
}
