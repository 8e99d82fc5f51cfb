package services

import (
	"time"

	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Runtime defaults used when the config file leaves a key unset.
const (
	DefaultRemoteBaseURL        = "http://localhost:8000"
	DefaultRemoteTimeoutSeconds = 30
	DefaultRatePerSecond        = 10.0
	DefaultMigrationWorkers     = 4
	MaxMigrationWorkers         = 8
)

// RuntimeConfig is the resolved application configuration.
type RuntimeConfig struct {
	RemoteBaseURL    string
	RemoteTimeout    time.Duration
	RatePerSecond    float64
	MigrationWorkers int

	// DataDir holds the local database. Empty means the application directory.
	DataDir string
}

// LoadRuntimeConfig reads the runtime configuration, filling in defaults.
func LoadRuntimeConfig(store driven.ConfigStore) RuntimeConfig {
	r := configReader{store: store}
	workers := r.getInt(driven.ConfigMigrationWorkers, DefaultMigrationWorkers)
	return RuntimeConfig{
		RemoteBaseURL:    r.getString(driven.ConfigRemoteBaseURL, DefaultRemoteBaseURL),
		RemoteTimeout:    time.Duration(r.getInt(driven.ConfigRemoteTimeoutSeconds, DefaultRemoteTimeoutSeconds)) * time.Second,
		RatePerSecond:    r.getFloat(driven.ConfigRemoteRatePerSecond, DefaultRatePerSecond),
		MigrationWorkers: min(max(workers, 1), MaxMigrationWorkers),
		DataDir:          store.GetString(driven.ConfigStorageDataDir),
	}
}

type configReader struct {
	store driven.ConfigStore
}

func (r configReader) getString(key, defaultVal string) string {
	val := r.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (r configReader) getInt(key string, defaultVal int) int {
	val := r.store.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat keeps an explicit zero; a negative rate disables throttling.
func (r configReader) getFloat(key string, defaultVal float64) float64 {
	if _, exists := r.store.Get(key); !exists {
		return defaultVal
	}
	return r.store.GetFloat(key)
}
