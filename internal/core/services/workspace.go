package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure WorkspaceService implements the interface.
var _ driving.WorkspaceService = (*WorkspaceService)(nil)

// LocalWorkspacePrefix prefixes the ids of workspaces kept on this device.
const LocalWorkspacePrefix = "local-"

// WorkspaceService manages the workspace catalogue and the active selection.
// Local workspaces live in the state file; remote ones in the remote store.
type WorkspaceService struct {
	mu     sync.Mutex
	states driven.WorkspaceStateStore
	remote driven.WorkspaceStore
	tokens driven.TokenProvider
	active *ActiveWorkspace
	local  driven.Backend
}

// NewWorkspaceService creates a workspace service. remote may be nil when no
// remote store is configured.
func NewWorkspaceService(
	states driven.WorkspaceStateStore,
	remote driven.WorkspaceStore,
	tokens driven.TokenProvider,
	active *ActiveWorkspace,
	local driven.Backend,
) *WorkspaceService {
	return &WorkspaceService{
		states: states,
		remote: remote,
		tokens: tokens,
		active: active,
		local:  local,
	}
}

// Active returns the active workspace, loading the persisted selection on first use.
func (s *WorkspaceService) Active(ctx context.Context) (*domain.Workspace, error) {
	if ws := s.active.Snapshot(); ws != nil {
		return ws, nil
	}
	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	ws := selected(state)
	if ws == nil {
		return nil, domain.ErrNoActiveWorkspace
	}
	s.active.Set(ws)
	return ws, nil
}

// selected returns the workspace the state points at, if it is usable.
func selected(state *domain.WorkspaceState) *domain.Workspace {
	if state.ActiveID == "" {
		return nil
	}
	if ws, ok := state.FindLocal(state.ActiveID); ok {
		return ws
	}
	if state.Active != nil && state.Active.ID == state.ActiveID {
		ws := *state.Active
		return &ws
	}
	return nil
}

// EnsureDefault activates the persisted selection, or creates the default
// local workspace on first run.
func (s *WorkspaceService) EnsureDefault(ctx context.Context) (*domain.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ws := selected(state); ws != nil {
		s.active.Set(ws)
		return ws, nil
	}

	var ws domain.Workspace
	if i := slices.IndexFunc(state.Local, func(w domain.Workspace) bool { return w.IsDefault }); i >= 0 {
		ws = state.Local[i]
	} else if len(state.Local) > 0 {
		ws = state.Local[0]
	} else {
		ws, err = newLocalWorkspace(domain.DefaultLocalWorkspaceName, "")
		if err != nil {
			return nil, err
		}
		ws.IsDefault = true
		state.Local = append(state.Local, ws)
		logger.Info("created default workspace %s", ws.ID)
	}

	if err := s.activate(ctx, state, ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// List returns local workspaces followed by remote ones when signed in.
// A failing remote listing is logged and leaves only the local workspaces.
func (s *WorkspaceService) List(ctx context.Context) ([]domain.Workspace, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	result := slices.Clone(state.Local)

	if s.remote == nil || requireToken(ctx, s.tokens) != nil {
		return result, nil
	}
	remote, err := s.remote.List(ctx)
	if err != nil {
		if degradable(err) {
			logger.Warn("list remote workspaces: %v", err)
			return result, nil
		}
		return nil, err
	}
	return append(result, remote...), nil
}

// Create creates a workspace in the store named by its storage kind.
// It does not change the active workspace.
func (s *WorkspaceService) Create(ctx context.Context, ws domain.Workspace) (*domain.Workspace, error) {
	if err := check(ws); err != nil {
		return nil, err
	}

	if ws.StorageKind == domain.StorageRemote {
		if err := s.requireRemote(ctx); err != nil {
			return nil, err
		}
		ws.IsDefault = false
		return s.remote.Create(ctx, ws)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	created, err := newLocalWorkspace(ws.Name, ws.Description)
	if err != nil {
		return nil, err
	}
	state.Local = append(state.Local, created)
	if err := s.states.Save(ctx, *state); err != nil {
		return nil, err
	}
	return &created, nil
}

// Switch makes the workspace with the given id active and persists the choice.
func (s *WorkspaceService) Switch(ctx context.Context, id string) (*domain.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}

	ws, ok := state.FindLocal(id)
	if !ok {
		if !isLocalID(id) && s.remote != nil {
			if err := requireToken(ctx, s.tokens); err != nil {
				return nil, err
			}
			ws, err = s.remote.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("workspace %s: %w", id, err)
			}
		} else {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
	}

	if err := s.activate(ctx, state, *ws); err != nil {
		return nil, err
	}
	logger.Info("switched to workspace %s (%s)", ws.Name, ws.StorageKind)
	return ws, nil
}

// Rename changes a workspace's name and description.
func (s *WorkspaceService) Rename(ctx context.Context, id, name, description string) error {
	if name == "" {
		return fmt.Errorf("%w: Name is required", domain.ErrValidationFailure)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return err
	}

	var renamed domain.Workspace
	if i := slices.IndexFunc(state.Local, func(w domain.Workspace) bool { return w.ID == id }); i >= 0 {
		state.Local[i].Name = name
		state.Local[i].Description = description
		state.Local[i].UpdatedAt = time.Now().UTC()
		renamed = state.Local[i]
	} else {
		if isLocalID(id) {
			return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		if err := s.requireRemote(ctx); err != nil {
			return err
		}
		ws, err := s.remote.Get(ctx, id)
		if err != nil {
			return err
		}
		ws.Name = name
		ws.Description = description
		if err := s.remote.Update(ctx, *ws); err != nil {
			return err
		}
		renamed = *ws
	}

	if state.ActiveID == id {
		state.Active = &renamed
		s.active.Set(&renamed)
	}
	return s.states.Save(ctx, *state)
}

// Delete removes a workspace. Deleting a local workspace also deletes its
// local data. The active workspace cannot be deleted.
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return err
	}
	if state.ActiveID == id {
		return fmt.Errorf("%w: cannot delete the active workspace", domain.ErrInvalidInput)
	}

	i := slices.IndexFunc(state.Local, func(w domain.Workspace) bool { return w.ID == id })
	if i < 0 {
		if isLocalID(id) {
			return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		if err := s.requireRemote(ctx); err != nil {
			return err
		}
		return s.remote.Delete(ctx, id)
	}

	if err := purgeLocal(ctx, s.local, id); err != nil {
		return fmt.Errorf("deleting data of workspace %s: %w", id, err)
	}
	state.Local = slices.Delete(state.Local, i, i+1)
	return s.states.Save(ctx, *state)
}

func (s *WorkspaceService) requireRemote(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("%w: no remote store configured", domain.ErrUnsupportedStorage)
	}
	return requireToken(ctx, s.tokens)
}

// activate persists ws as the active workspace and swaps the in-process selection.
// Callers hold s.mu.
func (s *WorkspaceService) activate(ctx context.Context, state *domain.WorkspaceState, ws domain.Workspace) error {
	state.ActiveID = ws.ID
	state.Active = &ws
	if err := s.states.Save(ctx, *state); err != nil {
		return err
	}
	s.active.Set(&ws)
	return nil
}

func newLocalWorkspace(name, description string) (domain.Workspace, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("generating workspace id: %w", err)
	}
	now := time.Now().UTC()
	return domain.Workspace{
		ID:          LocalWorkspacePrefix + id.String(),
		Name:        name,
		Description: description,
		StorageKind: domain.StorageLocal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func isLocalID(id string) bool {
	return strings.HasPrefix(id, LocalWorkspacePrefix)
}

// purgeLocal deletes every top-level record of a workspace. Store cascades
// remove the children; a record another cascade already took is skipped.
func purgeLocal(ctx context.Context, backend driven.Backend, workspaceID string) error {
	if backend == nil {
		return nil
	}
	filter := driven.ListFilter{WorkspaceID: workspaceID}

	ads, err := backend.AnnotatedDatasets().List(ctx, filter)
	if err != nil {
		return err
	}
	for _, ad := range ads {
		if err := backend.AnnotatedDatasets().Delete(ctx, ad.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	datasets, err := backend.Datasets().List(ctx, filter)
	if err != nil {
		return err
	}
	for _, d := range datasets {
		if err := backend.Datasets().Delete(ctx, d.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	profiles, err := backend.Profiles().List(ctx, filter)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := backend.Profiles().Delete(ctx, p.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return nil
}
