package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/annotate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

func TestLoadRuntimeConfig_Defaults(t *testing.T) {
	cfg := LoadRuntimeConfig(memory.NewConfigStore(nil))

	assert.Equal(t, DefaultRemoteBaseURL, cfg.RemoteBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, DefaultRatePerSecond, cfg.RatePerSecond)
	assert.Equal(t, DefaultMigrationWorkers, cfg.MigrationWorkers)
	assert.Empty(t, cfg.DataDir)
}

func TestLoadRuntimeConfig_Overrides(t *testing.T) {
	cfg := LoadRuntimeConfig(memory.NewConfigStore(map[string]any{
		driven.ConfigRemoteBaseURL:        "https://annotate.example.com",
		driven.ConfigRemoteTimeoutSeconds: int64(5),
		driven.ConfigRemoteRatePerSecond:  2.5,
		driven.ConfigMigrationWorkers:     2,
		driven.ConfigStorageDataDir:       "/tmp/annotate",
	}))

	assert.Equal(t, "https://annotate.example.com", cfg.RemoteBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 2.5, cfg.RatePerSecond)
	assert.Equal(t, 2, cfg.MigrationWorkers)
	assert.Equal(t, "/tmp/annotate", cfg.DataDir)
}

func TestLoadRuntimeConfig_ClampsWorkers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"unset", 0, DefaultMigrationWorkers},
		{"negative", -3, 1},
		{"too many", 64, MaxMigrationWorkers},
		{"in range", 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadRuntimeConfig(memory.NewConfigStore(map[string]any{
				driven.ConfigMigrationWorkers: tt.workers,
			}))
			assert.Equal(t, tt.want, cfg.MigrationWorkers)
		})
	}
}

func TestLoadRuntimeConfig_ExplicitRateKept(t *testing.T) {
	cfg := LoadRuntimeConfig(memory.NewConfigStore(map[string]any{
		driven.ConfigRemoteRatePerSecond: -1,
	}))
	assert.Equal(t, -1.0, cfg.RatePerSecond)
}
