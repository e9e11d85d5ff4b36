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
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/gocarbon/internal/config"
	"github.com/blinklabs-io/gocarbon/journal"
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/blinklabs-io/gocarbon/ledger/common"
)

type replayFlags struct {
	flagset  *flag.FlagSet
	snapshot string
}

func newReplayFlags() *replayFlags {
	f := &replayFlags{
		flagset: flag.NewFlagSet("replay", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.snapshot,
		"snapshot",
		"",
		"write the replayed ledger state as CBOR to this file",
	)
	return f
}

func runReplay(f *globalFlags) {
	replayFlags := newReplayFlags()
	err := replayFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	cfg, logger := loadConfig(f)
	if cfg.Journal.Path == "" {
		fmt.Printf("ERROR: journal.path is not configured\n")
		os.Exit(1)
	}

	if err := replay(cfg, logger, replayFlags.snapshot); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
}

func replay(cfg *config.Config, logger *slog.Logger, snapshot string) error {
	j, err := journal.Open(cfg.Journal.Path, journal.Options{Logger: logger})
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
		return fmt.Errorf("replay failed after %d entries: %w", count, err)
	}
	root, err := l.StateRoot()
	if err != nil {
		return err
	}
	fmt.Printf("Replayed %d entries\n", count)
	fmt.Printf("State root: %s\n", root.String())
	fmt.Printf("State root (bech32): %s\n", root.Bech32(common.StateRootPrefix))

	if snapshot != "" {
		data, err := l.Snapshot().Cbor()
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := os.WriteFile(snapshot, data, 0o600); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Printf("Snapshot written to %s\n", snapshot)
	}
	return nil
}
