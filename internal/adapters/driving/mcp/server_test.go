package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil data service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDataService)
	})

	t.Run("nil ports returns error", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.ErrorIs(t, err, ErrMissingDataService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Data: &mockDataService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Data: &mockDataService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestPorts_Validate(t *testing.T) {
	t.Run("data only is valid", func(t *testing.T) {
		ports := &Ports{Data: &mockDataService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Data:      &mockDataService{},
			Workspace: &mockWorkspaceService{},
			Migration: &mockMigrationService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
