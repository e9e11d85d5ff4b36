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

// Package api exposes the carbon credit ledger over HTTP
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/pipeline"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ErrMissingLedger    = errors.New("api: ledger not configured")
	ErrMissingSubmitter = errors.New("api: submitter not configured")
)

// Submitter queues encoded invocations and waits for their outcome.
// *pipeline.CallPipeline implements it.
type Submitter interface {
	SubmitAndWait(ctx context.Context, rawCbor []byte) (*pipeline.CallItem, error)
	Stats() pipeline.PipelineStats
	PendingCount() int
}

// DefaultStallTimeout is how long calls may stay pending without any being
// applied before /health reports the pipeline as stalled
const DefaultStallTimeout = 30 * time.Second

type Config struct {
	Ledger    *ledger.Ledger
	Submitter Submitter
	Logger    *slog.Logger
	// MetricsEnabled mounts the Prometheus handler at /metrics
	MetricsEnabled bool
	// RequestTimeout bounds each request. Zero disables the timeout.
	RequestTimeout time.Duration
	// StallTimeout defaults to DefaultStallTimeout
	StallTimeout time.Duration
}

type Server struct {
	ledger    *ledger.Ledger
	submitter Submitter
	logger    *slog.Logger
	validate  *validator.Validate
	metrics   *Metrics
	config    Config
	progress  *progressTracker
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Ledger == nil {
		return nil, ErrMissingLedger
	}
	if cfg.Submitter == nil {
		return nil, ErrMissingSubmitter
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = DefaultStallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ledger:    cfg.Ledger,
		submitter: cfg.Submitter,
		logger:    logger,
		validate:  validator.New(),
		metrics:   NewMetrics(cfg.Submitter.Stats),
		config:    cfg,
		progress:  newProgressTracker(cfg.StallTimeout),
	}, nil
}

// Metrics returns the collectors registered by the server
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimid.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimid.Recoverer)
	r.Use(s.metrics.middleware)
	if s.config.RequestTimeout > 0 {
		r.Use(chimid.Timeout(s.config.RequestTimeout))
	}

	r.Get("/health", s.health)
	if s.config.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/contracts", s.listContracts)
		r.With(chimid.AllowContentType("application/json")).
			Post("/contracts/{contract}/invoke", s.invoke)
		r.Get("/state/root", s.stateRoot)
	})
	return r
}
