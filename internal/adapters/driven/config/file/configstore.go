package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	// DirName is the application directory under the user's home.
	DirName = ".annotate"

	// EnvPrefix prefixes environment overrides. The key "remote.base_url"
	// is overridden by ANNOTATE_REMOTE_BASE_URL.
	EnvPrefix = "ANNOTATE_"

	configFile = "config.toml"
)

// ConfigStore reads and writes config.toml. Nested tables are addressed with
// dot-separated keys, and environment overrides win over the file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	values   map[string]any
}

// DefaultDir returns ~/.annotate.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// NewConfigStore opens config.toml in dir, creating dir if needed.
// An empty dir means DefaultDir.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{filePath: filepath.Join(dir, configFile)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnvKey returns the environment variable that overrides key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Get returns the value for key. Environment overrides are returned as strings.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := os.LookupEnv(EnvKey(key)); ok {
		return v, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the string at key, or "" when unset or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt returns the integer at key. Floats are truncated.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

// GetFloat returns the number at key. Integers are widened.
func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Set stores value under key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.write()
}

// write replaces the file atomically. Caller holds the lock.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nest(s.values))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), configFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load rereads the file. A missing file is an empty configuration.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.values = map[string]any{}
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.values = flatten(doc, "", map[string]any{})
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flatten turns {"remote": {"base_url": "x"}} into {"remote.base_url": "x"}.
func flatten(doc map[string]any, prefix string, into map[string]any) map[string]any {
	for k, v := range doc {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(table, k, into)
			continue
		}
		into[k] = v
	}
	return into
}

// nest is the inverse of flatten, so the file keeps its [table] layout.
// A key that is both a value and a table prefix keeps the value.
func nest(values map[string]any) map[string]any {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := map[string]any{}
	for _, key := range keys {
		parts := strings.Split(key, ".")
		if table := tableFor(doc, parts[:len(parts)-1]); table != nil {
			table[parts[len(parts)-1]] = values[key]
		}
	}
	return doc
}

// tableFor walks path, creating tables as needed. It returns nil when a
// value already sits on the path.
func tableFor(doc map[string]any, path []string) map[string]any {
	table := doc
	for _, p := range path {
		v, exists := table[p]
		if !exists {
			next := map[string]any{}
			table[p] = next
			table = next
			continue
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		table = next
	}
	return table
}
