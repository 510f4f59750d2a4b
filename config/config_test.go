// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.API.ListenAddr)
	require.Equal(t, 5*time.Minute, cfg.API.CacheTTL)
	require.Equal(t, []string{"resample", "pivot"}, cfg.API.DefaultOperators)
	require.Empty(t, cfg.API.APIKeys)
	require.Equal(t, 8090, cfg.Health.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHARTRUNNER_API_LISTEN_ADDR", ":9000")
	t.Setenv("CHARTRUNNER_API_API_KEYS", "key-one, key-two")
	t.Setenv("CHARTRUNNER_API_CACHE_TTL", "30s")
	t.Setenv("CHARTRUNNER_API_DEFAULT_OPERATORS", "resample")
	t.Setenv("CHARTRUNNER_HEALTH_PORT", "9191")
	t.Setenv("CHARTRUNNER_DEBUG_PPROF_PORT", "6060")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.API.ListenAddr)
	require.Equal(t, []string{"key-one", "key-two"}, cfg.API.APIKeys)
	require.Equal(t, 30*time.Second, cfg.API.CacheTTL)
	require.Equal(t, []string{"resample"}, cfg.API.DefaultOperators)
	require.Equal(t, 9191, cfg.Health.Port)
	require.Equal(t, 6060, cfg.Debug.PprofPort)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chartrunner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  listen_addr: ":7070"
  cache_capacity: 12
  api_keys:
    - alpha
    - beta
health:
  port: 7171
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.API.ListenAddr)
	require.Equal(t, uint64(12), cfg.API.CacheCapacity)
	require.Equal(t, []string{"alpha", "beta"}, cfg.API.APIKeys)
	require.Equal(t, 7171, cfg.Health.Port)
	require.Equal(t, 5*time.Minute, cfg.API.CacheTTL, "unset keys keep defaults")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
