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
)

type globalFlags struct {
	flagset    *flag.FlagSet
	configFile string
	debug      bool
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.configFile,
		"config",
		"",
		"path to the config file (settings can also come from "+config.EnvPrefix+"_ environment variables)",
	)
	f.flagset.BoolVar(
		&f.debug,
		"debug",
		false,
		"enable debug logging. this overrides the configured log level",
	)
	return f
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}

	if len(f.flagset.Args()) > 0 {
		switch f.flagset.Arg(0) {
		case "serve":
			runServe(f)
		case "replay":
			runReplay(f)
		case "invoke":
			runInvoke(f)
		default:
			fmt.Printf("Unknown subcommand: %s\n", f.flagset.Arg(0))
			os.Exit(1)
		}
	} else {
		fmt.Printf("You must specify a subcommand (serve, replay or invoke)\n")
		os.Exit(1)
	}
}

// loadConfig loads the config and builds the logger it describes
func loadConfig(f *globalFlags) (*config.Config, *slog.Logger) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		fmt.Printf("ERROR: invalid configuration: %s\n", err)
		os.Exit(1)
	}
	level, _ := cfg.LogLevel()
	if f.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(logger)
	return cfg, logger
}
