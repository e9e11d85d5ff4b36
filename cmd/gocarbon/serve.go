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
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/blinklabs-io/gocarbon/internal/api"
	"github.com/blinklabs-io/gocarbon/internal/config"
	"github.com/blinklabs-io/gocarbon/journal"
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
	"github.com/blinklabs-io/gocarbon/pipeline"
)

type serveFlags struct {
	flagset         *flag.FlagSet
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
}

func newServeFlags() *serveFlags {
	f := &serveFlags{
		flagset: flag.NewFlagSet("serve", flag.ExitOnError),
	}
	f.flagset.DurationVar(
		&f.requestTimeout,
		"request-timeout",
		30*time.Second,
		"maximum duration of a single HTTP request",
	)
	f.flagset.DurationVar(
		&f.shutdownTimeout,
		"shutdown-timeout",
		15*time.Second,
		"time allowed for in-flight requests and queued calls on shutdown",
	)
	return f
}

func runServe(f *globalFlags) {
	serveFlags := newServeFlags()
	err := serveFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	cfg, logger := loadConfig(f)
	if err := serve(serveFlags, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func serve(
	flags *serveFlags,
	cfg *config.Config,
	logger *slog.Logger,
) error {
	j, err := journal.Open(
		cfg.Journal.Path,
		journal.Options{Logger: logger, SyncWrites: cfg.Journal.SyncWrites},
	)
	if err != nil {
		return err
	}
	defer j.Close()

	l, err := ledger.New(ledger.Config{
		PrivilegedIdentity: common.Identity(cfg.PrivilegedIdentity),
	})
	if err != nil {
		return err
	}
	count, err := j.Replay(l)
	if err != nil {
		return fmt.Errorf("replay journal: %w", err)
	}
	root, err := l.StateRoot()
	if err != nil {
		return err
	}
	logger.Info(
		"ledger restored",
		"entries", count,
		"state_root", root.String(),
	)

	p := pipeline.NewCallPipeline(
		pipeline.WithDecodeWorkers(cfg.Pipeline.DecodeWorkers),
		pipeline.WithValidateWorkers(cfg.Pipeline.ValidateWorkers),
		pipeline.WithMaxPendingCalls(cfg.Pipeline.MaxPending),
		pipeline.WithChecker(l),
		pipeline.WithApplyFunc(j.ApplyFunc(l)),
		pipeline.WithLogger(logger),
	)
	// The pipeline outlives the signal context so that queued calls can
	// drain during shutdown
	if err := p.Start(context.Background()); err != nil {
		return err
	}
	var drainWg sync.WaitGroup
	drainWg.Add(1)
	go func() {
		defer drainWg.Done()
		consumePipeline(p, logger)
	}()

	srv, err := api.NewServer(api.Config{
		Ledger:         l,
		Submitter:      p,
		Logger:         logger,
		MetricsEnabled: cfg.Metrics.Enabled,
		RequestTimeout: flags.requestTimeout,
	})
	if err != nil {
		_ = p.Stop()
		drainWg.Wait()
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", cfg.ListenAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), flags.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	if err := p.WaitForDrain(shutdownCtx); err != nil {
		logger.Warn("pipeline did not drain", "error", err)
	}
	if err := p.Stop(); err != nil {
		logger.Warn("failed to stop pipeline", "error", err)
	}
	drainWg.Wait()
	return serveErr
}

// consumePipeline reads results and errors until the pipeline is stopped.
// Outcomes are already delivered to waiting requests.
func consumePipeline(p *pipeline.CallPipeline, logger *slog.Logger) {
	results := p.Results()
	errs := p.Errors()
	for results != nil || errs != nil {
		select {
		case item, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if receipt := item.Receipt(); receipt != nil && !receipt.Ok {
				logger.Debug(
					"invocation failed",
					"seq", item.SequenceNumber(),
					"kind", receipt.ErrorKind.String(),
					"message", receipt.Message,
				)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("pipeline error", "error", err)
		}
	}
}
