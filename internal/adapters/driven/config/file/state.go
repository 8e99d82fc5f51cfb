package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure StateStore implements the interface.
var _ driven.WorkspaceStateStore = (*StateStore)(nil)

// StateFileName is the workspace state file inside the application directory.
const StateFileName = "state.toml"

// DefaultSettle is how long Watch waits for writes to settle before reloading.
const DefaultSettle = 50 * time.Millisecond

// StateStore persists the local workspace catalogue and the active workspace
// in a TOML file. Writes are atomic (temp file and rename), so a watcher in
// another process never reads a half-written file.
type StateStore struct {
	mu       sync.Mutex
	dir      string
	filePath string
	written  []byte
	settle   time.Duration
}

// NewStateStore creates a state store in dir. If dir is empty, defaults to ~/.annotate.
func NewStateStore(dir string) (*StateStore, error) {
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
	return &StateStore{
		dir:      dir,
		filePath: filepath.Join(dir, StateFileName),
		settle:   DefaultSettle,
	}, nil
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.filePath
}

// Load reads the state. A missing file yields an empty state.
func (s *StateStore) Load(_ context.Context) (*domain.WorkspaceState, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return &domain.WorkspaceState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading workspace state: %w", err)
	}
	return decodeState(data)
}

// Save writes the state atomically.
func (s *StateStore) Save(_ context.Context, state domain.WorkspaceState) error {
	data, err := toml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling workspace state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, StateFileName+".*")
	if err != nil {
		return fmt.Errorf("writing workspace state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing workspace state: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing workspace state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing workspace state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.filePath); err != nil {
		return fmt.Errorf("replacing workspace state: %w", err)
	}

	s.written = data
	return nil
}

// Watch calls fn whenever another process rewrites the state file.
// Writes made through this store are not reported. Watch blocks until ctx
// is cancelled.
func (s *StateStore) Watch(ctx context.Context, fn func(domain.WorkspaceState)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the file's inode.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != StateFileName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = time.After(s.settle)

		case <-pending:
			pending = nil
			state, changed, err := s.reload()
			if err != nil {
				logger.Warn("reloading workspace state: %v", err)
				continue
			}
			if changed {
				fn(*state)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("workspace state watcher: %v", err)
		}
	}
}

// reload reads the file and reports whether it differs from this store's last write.
func (s *StateStore) reload() (*domain.WorkspaceState, bool, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	own := bytes.Equal(data, s.written)
	if !own {
		s.written = data
	}
	s.mu.Unlock()
	if own {
		return nil, false, nil
	}

	state, err := decodeState(data)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

func decodeState(data []byte) (*domain.WorkspaceState, error) {
	var state domain.WorkspaceState
	if err := toml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing workspace state: %w", err)
	}
	return &state, nil
}
