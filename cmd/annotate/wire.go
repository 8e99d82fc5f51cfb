package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/annotate/internal/adapters/driven/auth"
	"github.com/custodia-labs/annotate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/annotate/internal/adapters/driven/remote"
	"github.com/custodia-labs/annotate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/annotate/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/annotate/internal/adapters/driving/cli"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/core/services"
	"github.com/custodia-labs/annotate/internal/logger"
	"github.com/custodia-labs/annotate/internal/normalisers"
)

// localStores are the on-device stores picked by --ephemeral.
type localStores struct {
	backend driven.Backend
	creds   driven.CredentialsStore
	states  driven.WorkspaceStateStore
	close   func() error
}

func openLocal(dir, dataDir string, ephemeral bool) (*localStores, error) {
	if ephemeral {
		logger.Debug("using in-memory local stores")
		return &localStores{
			backend: memory.NewBackend(),
			creds:   memory.NewCredentialsStore(),
			states:  memory.NewWorkspaceStateStore(),
			close:   func() error { return nil },
		}, nil
	}

	states, err := file.NewStateStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening workspace state: %w", err)
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening local database: %w", err)
	}
	logger.Debug("local database at %s", store.Path())
	return &localStores{
		backend: store,
		creds:   store.CredentialsStore(),
		states:  states,
		close:   store.Close,
	}, nil
}

// buildServices wires the driven adapters into the core services.
func buildServices(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	dir, err := file.DefaultDir()
	if err != nil {
		return nil, nil, fmt.Errorf("locating application directory: %w", err)
	}
	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	rc := services.LoadRuntimeConfig(configStore)

	local, err := openLocal(dir, rc.DataDir, opts.Ephemeral)
	if err != nil {
		return nil, nil, err
	}

	tokens := auth.NewDefaultTokenProvider(local.creds)
	client := remote.NewClient(remote.Options{
		BaseURL:       rc.RemoteBaseURL,
		Timeout:       rc.RemoteTimeout,
		RatePerSecond: rc.RatePerSecond,
	}, tokens)

	active := services.NewActiveWorkspace(nil)
	workspaces := services.NewWorkspaceService(local.states, client, tokens, active, local.backend)
	ws, err := workspaces.EnsureDefault(ctx)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("selecting workspace: %w", err), local.close())
	}
	logger.Debug("active workspace %s (%s)", ws.Name, ws.StorageKind)

	// Pick up switches made by other processes, e.g. a second terminal.
	followCtx, stopFollow := context.WithCancel(ctx)
	go func() {
		if err := active.Follow(followCtx, local.states); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watching workspace state: %v", err)
		}
	}()

	router := services.NewRouter(active, local.backend, client, tokens)
	data := services.NewDataService(router)

	svcs := &cli.Services{
		Data:      data,
		Workspace: workspaces,
		Migration: services.NewMigrationService(services.MigrationConfig{
			Local:      local.backend,
			Remote:     client,
			Workspaces: client,
			States:     local.states,
			Active:     active,
			Tokens:     tokens,
			Workers:    rc.MigrationWorkers,
		}),
		Auth:     services.NewAuthService(local.creds, tokens),
		Settings: services.NewSettingsService(router),
		Import:   services.NewImportService(data, normalisers.NewDefaultRegistry()),
	}

	release := func() error {
		stopFollow()
		return local.close()
	}
	return svcs, release, nil
}
