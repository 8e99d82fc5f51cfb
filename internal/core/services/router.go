package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Router decides which backend serves a call. It holds no state besides the
// active workspace and never caches or retries.
type Router struct {
	active *ActiveWorkspace
	local  driven.Backend
	remote driven.Backend
	tokens driven.TokenProvider
}

// NewRouter creates a router. remote may be nil when no remote store is configured.
func NewRouter(
	active *ActiveWorkspace,
	local driven.Backend,
	remote driven.Backend,
	tokens driven.TokenProvider,
) *Router {
	return &Router{
		active: active,
		local:  local,
		remote: remote,
		tokens: tokens,
	}
}

// route is one call's view of the world: the workspace snapshot taken when
// the call started and the backend it resolved to.
type route struct {
	workspace domain.Workspace
	backend   driven.Backend
}

func (rt route) filter(mode domain.Mode) driven.ListFilter {
	return driven.ListFilter{WorkspaceID: rt.workspace.ID, Mode: mode}
}

func (rt route) isLocal() bool {
	return rt.backend.Kind() == domain.StorageLocal
}

// ResolveStorageKind returns the storage kind serving ws.
func ResolveStorageKind(ws *domain.Workspace) (domain.StorageKind, error) {
	if ws == nil {
		return "", domain.ErrNoActiveWorkspace
	}
	if !ws.StorageKind.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedStorage, ws.StorageKind)
	}
	return ws.StorageKind, nil
}

// Backend returns the backend for a storage kind.
func (r *Router) Backend(kind domain.StorageKind) (driven.Backend, error) {
	switch kind {
	case domain.StorageLocal:
		if r.local != nil {
			return r.local, nil
		}
	case domain.StorageRemote:
		if r.remote != nil {
			return r.remote, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedStorage, kind)
}

// Active returns a snapshot of the active workspace.
func (r *Router) Active() (*domain.Workspace, error) {
	ws := r.active.Snapshot()
	if ws == nil {
		return nil, domain.ErrNoActiveWorkspace
	}
	return ws, nil
}

// resolve snapshots the active workspace and picks its backend.
func (r *Router) resolve() (route, error) {
	ws := r.active.Snapshot()
	kind, err := ResolveStorageKind(ws)
	if err != nil {
		return route{}, err
	}
	backend, err := r.Backend(kind)
	if err != nil {
		return route{}, err
	}
	return route{workspace: *ws, backend: backend}, nil
}

// resolveWrite is resolve plus the credential check for remote writes.
// It fails before any I/O against the store.
func (r *Router) resolveWrite(ctx context.Context) (route, error) {
	rt, err := r.resolve()
	if err != nil {
		return route{}, err
	}
	if rt.isLocal() {
		return rt, nil
	}
	if err := requireToken(ctx, r.tokens); err != nil {
		return route{}, err
	}
	return rt, nil
}

// requireToken fails with ErrUnauthenticated unless tokens yields a bearer token.
func requireToken(ctx context.Context, tokens driven.TokenProvider) error {
	if tokens == nil {
		return domain.ErrUnauthenticated
	}
	token, err := tokens.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if token == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

// requireParent checks that a parent record exists in the route's store and
// belongs to its workspace.
func requireParent[T any](
	ctx context.Context,
	rt route,
	owned func(context.Context, route, string) (*T, error),
	kind, id string,
) error {
	if _, err := owned(ctx, rt, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", domain.ErrCrossStoreReference, kind, id)
		}
		return err
	}
	return nil
}

// listScoped lists the route's workspace. On the local store an empty mode
// unions one query per mode. Results are sorted by id.
func listScoped[T any](
	ctx context.Context,
	rt route,
	mode domain.Mode,
	list func(context.Context, driven.ListFilter) ([]T, error),
	id func(T) string,
) ([]T, error) {
	var out []T
	if mode == "" && rt.isLocal() {
		for _, m := range domain.AllModes() {
			items, err := list(ctx, rt.filter(m))
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
	} else {
		items, err := list(ctx, rt.filter(mode))
		if err != nil {
			return nil, err
		}
		out = items
	}
	return sortByID(out, id), nil
}

// sortByID sorts items by id and drops duplicates.
func sortByID[T any](items []T, id func(T) string) []T {
	slices.SortFunc(items, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return slices.CompactFunc(items, func(a, b T) bool { return id(a) == id(b) })
}
