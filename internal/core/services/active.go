package services

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/logger"
)

// ActiveWorkspace holds the selected workspace. Swaps are atomic: a call
// that already took a snapshot keeps its workspace after a switch.
type ActiveWorkspace struct {
	current atomic.Pointer[domain.Workspace]
}

// NewActiveWorkspace creates a holder, optionally seeded with ws.
func NewActiveWorkspace(ws *domain.Workspace) *ActiveWorkspace {
	a := &ActiveWorkspace{}
	a.Set(ws)
	return a
}

// Snapshot returns a copy of the active workspace, or nil when none is selected.
func (a *ActiveWorkspace) Snapshot() *domain.Workspace {
	ws := a.current.Load()
	if ws == nil {
		return nil
	}
	cp := *ws
	return &cp
}

// Set replaces the active workspace. Nil clears the selection.
func (a *ActiveWorkspace) Set(ws *domain.Workspace) {
	if ws == nil {
		a.current.Store(nil)
		return
	}
	cp := *ws
	a.current.Store(&cp)
}

// Follow applies workspace switches made by other processes until ctx is cancelled.
func (a *ActiveWorkspace) Follow(ctx context.Context, states driven.WorkspaceStateStore) error {
	return states.Watch(ctx, func(state domain.WorkspaceState) {
		if state.ActiveID == "" {
			a.Set(nil)
			return
		}
		if state.Active == nil || state.Active.ID != state.ActiveID {
			return
		}
		logger.Info("active workspace changed to %s (%s)", state.Active.Name, state.Active.StorageKind)
		a.Set(state.Active)
	})
}
