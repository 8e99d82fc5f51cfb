package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

func sampleState() domain.WorkspaceState {
	local := domain.Workspace{
		ID:          "local-1",
		Name:        domain.DefaultLocalWorkspaceName,
		StorageKind: domain.StorageLocal,
		IsDefault:   true,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	return domain.WorkspaceState{
		ActiveID: local.ID,
		Active:   &local,
		Local:    []domain.Workspace{local},
	}
}

func TestStateStore_LoadMissingFile(t *testing.T) {
	store, err := NewStateStore(t.TempDir())
	require.NoError(t, err)

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.ActiveID)
	assert.Empty(t, state.Local)
}

func TestStateStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStateStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, StateFileName), store.Path())

	want := sampleState()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.ActiveID, got.ActiveID)
	require.NotNil(t, got.Active)
	assert.Equal(t, want.Active.Name, got.Active.Name)
	require.Len(t, got.Local, 1)
	assert.Equal(t, domain.StorageLocal, got.Local[0].StorageKind)
	assert.True(t, got.Local[0].IsDefault)
	assert.True(t, want.Local[0].CreatedAt.Equal(got.Local[0].CreatedAt))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStateStore_LoadCorrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("active_id = ["), 0600))

	store, err := NewStateStore(dir)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestStateStore_WatchReportsExternalWrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStateStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sampleState()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.WorkspaceState, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(s domain.WorkspaceState) { changes <- s })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	// Another process switches to a remote workspace.
	external := sampleState()
	remote := domain.Workspace{ID: "remote-1", Name: "Team", StorageKind: domain.StorageRemote}
	external.ActiveID = remote.ID
	external.Active = &remote
	data, err := toml.Marshal(external)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), data, 0600))

	select {
	case got := <-changes:
		assert.Equal(t, "remote-1", got.ActiveID)
		require.NotNil(t, got.Active)
		assert.Equal(t, domain.StorageRemote, got.Active.StorageKind)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the external write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestStateStore_WatchIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStateStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.WorkspaceState, 4)
	go func() {
		_ = store.Watch(ctx, func(s domain.WorkspaceState) { changes <- s })
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, store.Save(ctx, sampleState()))

	select {
	case <-changes:
		t.Fatal("own write was reported")
	case <-time.After(300 * time.Millisecond):
	}
}
