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

// Package config loads the service configuration from an optional file,
// GOCARBON_ environment variables and defaults
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const EnvPrefix = "GOCARBON"

const (
	DefaultListenAddress   = ":8080"
	DefaultDecodeWorkers   = 2
	DefaultValidateWorkers = 2
	DefaultMaxPending      = 1024
	DefaultLogLevel        = "info"
)

type Config struct {
	PrivilegedIdentity string         `mapstructure:"privileged_identity"`
	ListenAddress      string         `mapstructure:"listen_address"`
	Journal            JournalConfig  `mapstructure:"journal"`
	Pipeline           PipelineConfig `mapstructure:"pipeline"`
	Metrics            MetricsConfig  `mapstructure:"metrics"`
	Log                LogConfig      `mapstructure:"log"`
}

type JournalConfig struct {
	// Path is the journal directory. Empty keeps the journal in memory.
	Path       string `mapstructure:"path"`
	SyncWrites bool   `mapstructure:"sync_writes"`
}

type PipelineConfig struct {
	DecodeWorkers   int `mapstructure:"decode_workers"`
	ValidateWorkers int `mapstructure:"validate_workers"`
	MaxPending      int `mapstructure:"max_pending"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Every key needs a default so that AutomaticEnv picks it up on Unmarshal
	v.SetDefault("privileged_identity", "")
	v.SetDefault("listen_address", DefaultListenAddress)
	v.SetDefault("journal.path", "")
	v.SetDefault("journal.sync_writes", false)
	v.SetDefault("pipeline.decode_workers", DefaultDecodeWorkers)
	v.SetDefault("pipeline.validate_workers", DefaultValidateWorkers)
	v.SetDefault("pipeline.max_pending", DefaultMaxPending)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", DefaultLogLevel)
	return v
}

// Load reads the configuration. configFile may be empty, in which case only
// environment variables and defaults are used. The result is validated.
func Load(configFile string) (*Config, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.PrivilegedIdentity == "" {
		errs = multierror.Append(errs, errors.New("privileged_identity is required"))
	}
	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("listen_address %q: %w", c.ListenAddress, err))
	}
	if c.Pipeline.DecodeWorkers <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("pipeline.decode_workers must be positive, got %d", c.Pipeline.DecodeWorkers))
	}
	if c.Pipeline.ValidateWorkers < 0 {
		errs = multierror.Append(errs, fmt.Errorf("pipeline.validate_workers must not be negative, got %d", c.Pipeline.ValidateWorkers))
	}
	if c.Pipeline.MaxPending <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("pipeline.max_pending must be positive, got %d", c.Pipeline.MaxPending))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// LogLevel parses the configured log level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
