package driven

// Configuration keys understood by the application.
const (
	ConfigRemoteBaseURL        = "remote.base_url"
	ConfigRemoteTimeoutSeconds = "remote.timeout_seconds"
	ConfigRemoteRatePerSecond  = "remote.rate_per_second"
	ConfigMigrationWorkers     = "migration.workers"
	ConfigStorageDataDir       = "storage.data_dir"
)

// ConfigStore provides access to application configuration.
// Keys are dot-separated paths into the configuration file.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if unset.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if unset.
	GetInt(key string) int

	// GetFloat retrieves a numeric value, or 0 if unset.
	GetFloat(key string) float64

	// Set stores a configuration value and persists it.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
