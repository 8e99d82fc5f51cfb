package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/adapters/driven/remote"
	"github.com/custodia-labs/annotate/internal/adapters/driven/remote/remotetest"
	"github.com/custodia-labs/annotate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/annotate/internal/core/domain"
)

// staticToken implements driven.TokenProvider for testing.
type staticToken string

func (s staticToken) GetToken(_ context.Context) (string, error) {
	return string(s), nil
}

func localWorkspace(id string) domain.Workspace {
	return domain.Workspace{ID: id, Name: "Local " + id, StorageKind: domain.StorageLocal}
}

// localFixture is a router whose active workspace lives in a memory backend.
type localFixture struct {
	router *Router
	active *ActiveWorkspace
	local  *memory.Backend
	ws     domain.Workspace
}

func newLocalFixture(t *testing.T) *localFixture {
	t.Helper()
	ws := localWorkspace("local-1")
	active := NewActiveWorkspace(&ws)
	local := memory.NewBackend()
	return &localFixture{
		router: NewRouter(active, local, nil, nil),
		active: active,
		local:  local,
		ws:     ws,
	}
}

// remoteFixture is a router whose active workspace lives on a fake remote store.
type remoteFixture struct {
	router *Router
	active *ActiveWorkspace
	client *remote.Client
	srv    *remotetest.Server
	ws     domain.Workspace
}

func newRemoteFixture(t *testing.T, token string) *remoteFixture {
	t.Helper()
	srv := remotetest.New(t)
	client := remote.NewClient(remote.Options{BaseURL: srv.URL, RatePerSecond: -1}, staticToken(token))

	ws := domain.Workspace{ID: "remote-ws", Name: "Team", StorageKind: domain.StorageRemote}
	if token != "" {
		created, err := client.Create(context.Background(), domain.Workspace{Name: "Team"})
		require.NoError(t, err)
		ws = *created
	}

	active := NewActiveWorkspace(&ws)
	return &remoteFixture{
		router: NewRouter(active, memory.NewBackend(), client, staticToken(token)),
		active: active,
		client: client,
		srv:    srv,
		ws:     ws,
	}
}

func extractionProfile(name string) domain.Profile {
	return domain.Profile{Name: name, Mode: domain.ModeExtraction}
}

func point(profileID, name string) domain.ProfilePoint {
	return domain.ProfilePoint{ProfileID: profileID, Name: name, Datatype: "text"}
}

func pointNames(points []domain.ProfilePoint) []string {
	names := make([]string, 0, len(points))
	for _, p := range points {
		names = append(names, p.Name)
	}
	return names
}

// remoteFailure fails every matching request with a 500.
func remoteFailure(method, collection string) remotetest.Failure {
	return remotetest.Failure{Method: method, Collection: collection}
}
