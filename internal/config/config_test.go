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

package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/gocarbon/internal/config"
	"github.com/blinklabs-io/gocarbon/internal/test"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOCARBON_PRIVILEGED_IDENTITY", string(test.ContractOwner))
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, string(test.ContractOwner), cfg.PrivilegedIdentity)
	assert.Equal(t, config.DefaultListenAddress, cfg.ListenAddress)
	assert.Equal(t, "", cfg.Journal.Path)
	assert.Equal(t, config.DefaultDecodeWorkers, cfg.Pipeline.DecodeWorkers)
	assert.Equal(t, config.DefaultValidateWorkers, cfg.Pipeline.ValidateWorkers)
	assert.Equal(t, config.DefaultMaxPending, cfg.Pipeline.MaxPending)
	assert.True(t, cfg.Metrics.Enabled)
	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFileAndEnv(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "gocarbon.yaml")
	configData := []byte(`
privileged_identity: ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM
listen_address: 127.0.0.1:9090
journal:
  path: /var/lib/gocarbon
pipeline:
  decode_workers: 8
metrics:
  enabled: false
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(configFile, configData, 0o600))
	// Environment variables take precedence over the file
	t.Setenv("GOCARBON_PIPELINE_DECODE_WORKERS", "3")

	cfg, err := config.Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, string(test.ContractOwner), cfg.PrivilegedIdentity)
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddress)
	assert.Equal(t, "/var/lib/gocarbon", cfg.Journal.Path)
	assert.Equal(t, 3, cfg.Pipeline.DecodeWorkers)
	assert.Equal(t, config.DefaultMaxPending, cfg.Pipeline.MaxPending)
	assert.False(t, cfg.Metrics.Enabled)
	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := config.Config{
		ListenAddress: "no-port",
		Pipeline: config.PipelineConfig{
			DecodeWorkers:   0,
			ValidateWorkers: -1,
			MaxPending:      0,
		},
		Log: config.LogConfig{Level: "loud"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 6)
}

func TestLoadRequiresPrivilegedIdentity(t *testing.T) {
	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "privileged_identity is required")
}
