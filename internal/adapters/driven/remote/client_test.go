package remote_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/adapters/driven/remote"
	"github.com/custodia-labs/annotate/internal/adapters/driven/remote/remotetest"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// staticToken implements driven.TokenProvider for testing.
type staticToken string

func (s staticToken) GetToken(_ context.Context) (string, error) {
	return string(s), nil
}

func newClient(t *testing.T, token string) (*remote.Client, *remotetest.Server) {
	t.Helper()
	srv := remotetest.New(t)
	return remote.NewClient(remote.Options{BaseURL: srv.URL, RatePerSecond: -1}, staticToken(token)), srv
}

func newWorkspace(t *testing.T, c *remote.Client) *domain.Workspace {
	t.Helper()
	ws, err := c.Create(context.Background(), domain.Workspace{Name: "Team"})
	require.NoError(t, err)
	return ws
}

func TestClient_ImplementsPorts(t *testing.T) {
	var _ driven.Backend = (*remote.Client)(nil)
	var _ driven.WorkspaceStore = (*remote.Client)(nil)

	c, _ := newClient(t, "tok")
	assert.Equal(t, domain.StorageRemote, c.Kind())
}

func TestClient_NoTokenMakesNoRequests(t *testing.T) {
	c, srv := newClient(t, "")
	ctx := context.Background()

	_, err := c.Profiles().Create(ctx, domain.Profile{Name: "A", Mode: domain.ModeExtraction})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = c.Datasets().List(ctx, driven.ListFilter{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = c.List(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.Equal(t, 0, srv.Requests())
}

// failingToken fails every lookup, like a credentials store that cannot be read.
type failingToken struct{ err error }

func (f failingToken) GetToken(_ context.Context) (string, error) {
	return "", f.err
}

func TestClient_TokenLookupFailureIsUnauthenticated(t *testing.T) {
	srv := remotetest.New(t)
	lookupErr := errors.New("keyring locked")
	c := remote.NewClient(remote.Options{BaseURL: srv.URL, RatePerSecond: -1}, failingToken{err: lookupErr})

	_, err := c.Profiles().List(context.Background(), driven.ListFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, err, lookupErr)
	assert.True(t, domain.IsPrecondition(err))
	assert.Equal(t, 0, srv.Requests())
}

func TestClient_Workspaces(t *testing.T) {
	c, _ := newClient(t, "tok")
	ctx := context.Background()

	ws := newWorkspace(t, c)
	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, domain.StorageRemote, ws.StorageKind)
	assert.Equal(t, "tok", ws.OwnerID)

	ws.Name = "Renamed"
	require.NoError(t, c.Update(ctx, *ws))

	got, err := c.Get(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.Delete(ctx, ws.ID))
	_, err = c.Get(ctx, ws.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_ProfilesFilteredByWorkspaceAndMode(t *testing.T) {
	c, srv := newClient(t, "tok")
	ctx := context.Background()
	ws := newWorkspace(t, c)
	other := newWorkspace(t, c)

	extraction, err := c.Profiles().Create(ctx, domain.Profile{
		ID: "local-id", WorkspaceID: ws.ID, Name: "Vitals", Mode: domain.ModeExtraction,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "local-id", extraction.ID, "the server assigns ids")

	_, err = c.Profiles().Create(ctx, domain.Profile{WorkspaceID: ws.ID, Name: "Sections", Mode: domain.ModeSegmentation})
	require.NoError(t, err)
	_, err = c.Profiles().Create(ctx, domain.Profile{WorkspaceID: other.ID, Name: "Else", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	all, err := c.Profiles().List(ctx, driven.ListFilter{WorkspaceID: ws.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyExtraction, err := c.Profiles().List(ctx, driven.ListFilter{WorkspaceID: ws.ID, Mode: domain.ModeExtraction})
	require.NoError(t, err)
	require.Len(t, onlyExtraction, 1)
	assert.Equal(t, extraction.ID, onlyExtraction[0].ID)
	assert.Equal(t, domain.ModeExtraction, onlyExtraction[0].Mode)

	stored := srv.Records("tok", remotetest.Profiles)
	assert.Equal(t, "datapoint_extraction", stored[0]["mode"])
}

func TestClient_PointsSortedAndPointersCleared(t *testing.T) {
	c, _ := newClient(t, "tok")
	ctx := context.Background()
	ws := newWorkspace(t, c)

	p, err := c.Profiles().Create(ctx, domain.Profile{WorkspaceID: ws.ID, Name: "P", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	second, err := c.ProfilePoints().Create(ctx, domain.ProfilePoint{ProfileID: p.ID, Name: "B", Datatype: "text", Order: 2000})
	require.NoError(t, err)
	first, err := c.ProfilePoints().Create(ctx, domain.ProfilePoint{
		ProfileID: p.ID, Name: "A", Datatype: "text", Order: 1000, NextPointID: second.ID,
	})
	require.NoError(t, err)

	points, err := c.ProfilePoints().ListByProfile(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "A", points[0].Name)
	assert.Equal(t, "B", points[1].Name)

	first.NextPointID = ""
	first.Order = 3000
	second.Order = 1500
	require.NoError(t, c.ProfilePoints().UpdateBatch(ctx, []domain.ProfilePoint{*first, *second}))

	got, err := c.ProfilePoints().Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, got.NextPointID)
	assert.Equal(t, int64(3000), got.Order)
}

func TestClient_UpdateBatchStopsAtFirstFailure(t *testing.T) {
	c, srv := newClient(t, "tok")
	ctx := context.Background()
	ws := newWorkspace(t, c)

	p, err := c.Profiles().Create(ctx, domain.Profile{WorkspaceID: ws.ID, Name: "P", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	a, err := c.ProfilePoints().Create(ctx, domain.ProfilePoint{ProfileID: p.ID, Name: "A", Datatype: "text", Order: 1000})
	require.NoError(t, err)
	b, err := c.ProfilePoints().Create(ctx, domain.ProfilePoint{ProfileID: p.ID, Name: "B", Datatype: "text", Order: 2000})
	require.NoError(t, err)

	srv.Fail(remotetest.Failure{Method: http.MethodPut, Collection: remotetest.ProfilePoints, Nth: 2})

	a.Order, b.Order = 5000, 6000
	err = c.ProfilePoints().UpdateBatch(ctx, []domain.ProfilePoint{*a, *b})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)

	gotA, err := c.ProfilePoints().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), gotA.Order, "earlier updates are not rolled back")
}

func TestClient_DatasetCascade(t *testing.T) {
	c, srv := newClient(t, "tok")
	ctx := context.Background()
	ws := newWorkspace(t, c)

	d, err := c.Datasets().Create(ctx, domain.Dataset{WorkspaceID: ws.ID, Name: "D", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	txt, err := c.Texts().Create(ctx, domain.Text{DatasetID: d.ID, Filename: "a.txt", Text: "hello"})
	require.NoError(t, err)

	texts, err := c.Texts().ListByDataset(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, txt.ID, texts[0].ID)

	require.NoError(t, c.Datasets().Delete(ctx, d.ID))
	assert.Equal(t, 0, srv.Count("tok", remotetest.Texts))
}

func TestClient_AnnotationChain(t *testing.T) {
	c, _ := newClient(t, "tok")
	ctx := context.Background()
	ws := newWorkspace(t, c)

	p, err := c.Profiles().Create(ctx, domain.Profile{WorkspaceID: ws.ID, Name: "P", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	pt, err := c.ProfilePoints().Create(ctx, domain.ProfilePoint{ProfileID: p.ID, Name: "Age", Datatype: "number", Order: 1000})
	require.NoError(t, err)
	d, err := c.Datasets().Create(ctx, domain.Dataset{WorkspaceID: ws.ID, Name: "D", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	txt, err := c.Texts().Create(ctx, domain.Text{DatasetID: d.ID, Filename: "a.txt", Text: "aged 42"})
	require.NoError(t, err)

	ad, err := c.AnnotatedDatasets().Create(ctx, domain.AnnotatedDataset{
		WorkspaceID: ws.ID, DatasetID: d.ID, ProfileID: p.ID, Name: "Run", Mode: domain.ModeExtraction,
	})
	require.NoError(t, err)
	at, err := c.AnnotatedTexts().Create(ctx, domain.AnnotatedText{AnnotatedDatasetID: ad.ID, TextID: txt.ID})
	require.NoError(t, err)
	dp, err := c.DataPoints().Create(ctx, domain.DataPoint{
		AnnotatedTextID: at.ID, Name: "Age", Value: "42", Match: []int{5, 7}, ProfilePointID: pt.ID,
	})
	require.NoError(t, err)

	ats, err := c.AnnotatedTexts().ListByAnnotatedDataset(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, ats, 1)
	assert.Equal(t, txt.ID, ats[0].TextID)

	dps, err := c.DataPoints().ListByAnnotatedText(ctx, at.ID)
	require.NoError(t, err)
	require.Len(t, dps, 1)
	assert.Equal(t, dp.ID, dps[0].ID)
	assert.Equal(t, pt.ID, dps[0].ProfilePointID)
	assert.Equal(t, []int{5, 7}, dps[0].Match)
}

func TestClient_ServerRejectsMissingParent(t *testing.T) {
	c, _ := newClient(t, "tok")

	_, err := c.Texts().Create(context.Background(), domain.Text{DatasetID: "missing", Filename: "a.txt"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailure)
	assert.Contains(t, err.Error(), "dataset_id references a missing record")
}

func TestClient_RecordsScopedToToken(t *testing.T) {
	srv := remotetest.New(t)
	alice := remote.NewClient(remote.Options{BaseURL: srv.URL}, staticToken("alice"))
	bob := remote.NewClient(remote.Options{BaseURL: srv.URL}, staticToken("bob"))
	ctx := context.Background()

	ws, err := alice.Create(ctx, domain.Workspace{Name: "Alice"})
	require.NoError(t, err)

	_, err = bob.Get(ctx, ws.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := bob.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_SettingsDefaults(t *testing.T) {
	c, _ := newClient(t, "tok")
	ctx := context.Background()

	settings, err := c.Settings().GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.TutorialCompleted)

	cfg, err := c.Settings().GetLLMConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLLMConfig(), *cfg)

	require.NoError(t, c.Settings().PutSettings(ctx, domain.UserSettings{TutorialCompleted: true}))
	settings, err = c.Settings().GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.TutorialCompleted)

	custom := domain.LLMConfig{Provider: domain.AIProviderOpenAI, Model: "gpt-4o", BatchSize: 5, MaxTokens: 1000}
	require.NoError(t, c.Settings().PutLLMConfig(ctx, custom))
	cfg, err = c.Settings().GetLLMConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, *cfg)
}
