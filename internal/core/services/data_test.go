package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/adapters/driven/remote/remotetest"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

func TestDataService_NoActiveWorkspace(t *testing.T) {
	ctx := context.Background()
	svc := NewDataService(NewRouter(NewActiveWorkspace(nil), nil, nil, nil))

	_, err := svc.CreateProfile(ctx, extractionProfile("A"))
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)

	_, err = svc.ListProfiles(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)

	_, err = svc.GetDataset(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)
}

func TestDataService_CreateInjectsActiveWorkspace(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	p := extractionProfile("A")
	p.WorkspaceID = "someone-else"
	created, err := svc.CreateProfile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, created.WorkspaceID)

	stored, err := f.local.Profiles().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, stored.WorkspaceID)

	d, err := svc.CreateDataset(ctx, domain.Dataset{WorkspaceID: "x", Name: "D", Mode: domain.ModeSegmentation})
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, d.WorkspaceID)

	ad, err := svc.CreateAnnotatedDataset(ctx, domain.AnnotatedDataset{
		WorkspaceID: "x", DatasetID: d.ID, ProfileID: created.ID, Name: "AD", Mode: domain.ModeExtraction,
	})
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, ad.WorkspaceID)

	created.WorkspaceID = "moved"
	require.NoError(t, svc.UpdateProfile(ctx, *created))
	stored, err = f.local.Profiles().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, stored.WorkspaceID)
}

func TestDataService_ValidationFailsWithoutIO(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, domain.Profile{Mode: domain.ModeExtraction})
	assert.ErrorIs(t, err, domain.ErrValidationFailure)

	_, err = svc.CreateDataset(ctx, domain.Dataset{Name: "D", Mode: "translation"})
	assert.ErrorIs(t, err, domain.ErrValidationFailure)

	_, err = svc.AddPoint(ctx, domain.ProfilePoint{ProfileID: "p1", Datatype: "text"})
	assert.ErrorIs(t, err, domain.ErrValidationFailure)

	profiles, err := f.local.Profiles().List(ctx, driven.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestDataService_ListProfilesUnionsModesSorted(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	for _, p := range []domain.Profile{
		{ID: "c", WorkspaceID: f.ws.ID, Name: "C", Mode: domain.ModeSegmentation},
		{ID: "a", WorkspaceID: f.ws.ID, Name: "A", Mode: domain.ModeExtraction},
		{ID: "b", WorkspaceID: f.ws.ID, Name: "B", Mode: domain.ModeSegmentation},
		{ID: "z", WorkspaceID: "other", Name: "Z", Mode: domain.ModeExtraction},
	} {
		_, err := f.local.Profiles().Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := svc.ListProfiles(ctx, "")
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	seg, err := svc.ListProfiles(ctx, domain.ModeSegmentation)
	require.NoError(t, err)
	assert.Len(t, seg, 2)
}

func TestDataService_EmptyListIsNotAnError(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)

	profiles, err := svc.ListProfiles(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestDataService_GetHidesOtherWorkspaces(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	_, err := f.local.Profiles().Create(ctx, domain.Profile{
		ID: "p-other", WorkspaceID: "other", Name: "X", Mode: domain.ModeExtraction,
	})
	require.NoError(t, err)

	_, err = svc.GetProfile(ctx, "p-other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDataService_ParentsMustResolveInSameStore(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	_, err := svc.AddPoint(ctx, point("remote-profile", "x"))
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	_, err = svc.CreateText(ctx, domain.Text{DatasetID: "remote-dataset", Filename: "a.txt"})
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	p, err := svc.CreateProfile(ctx, extractionProfile("P"))
	require.NoError(t, err)
	_, err = svc.CreateAnnotatedDataset(ctx, domain.AnnotatedDataset{
		DatasetID: "remote-dataset", ProfileID: p.ID, Name: "AD", Mode: domain.ModeExtraction,
	})
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)
}

func TestDataService_PointLifecycle(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, extractionProfile("P"))
	require.NoError(t, err)

	ids := map[string]string{}
	for _, name := range []string{"a", "b", "c"} {
		pt, err := svc.AddPoint(ctx, point(p.ID, name))
		require.NoError(t, err)
		ids[name] = pt.ID
	}

	_, err = svc.MovePoint(ctx, ids["c"], "", ids["a"])
	require.NoError(t, err)

	b, err := svc.GetPoint(ctx, ids["b"])
	require.NoError(t, err)
	b.Explanation = "second"
	b.Order = 1
	b.PreviousPointID = ""
	b.NextPointID = ""
	require.NoError(t, svc.UpdatePoint(ctx, *b))

	points, err := svc.ListPoints(ctx, p.ID)
	require.NoError(t, err)
	walked, err := WalkChain(points)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, pointNames(walked))
	assert.Equal(t, "second", walked[2].Explanation)

	require.NoError(t, svc.DeletePoint(ctx, ids["a"]))
	points, err = svc.ListPoints(ctx, p.ID)
	require.NoError(t, err)
	walked, err = WalkChain(points)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, pointNames(walked))
}

func TestDataService_DatasetCascade(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, extractionProfile("P"))
	require.NoError(t, err)
	d, err := svc.CreateDataset(ctx, domain.Dataset{Name: "D", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	text, err := svc.CreateText(ctx, domain.Text{DatasetID: d.ID, Filename: "a.txt", Text: "hello"})
	require.NoError(t, err)
	ad, err := svc.CreateAnnotatedDataset(ctx, domain.AnnotatedDataset{
		DatasetID: d.ID, ProfileID: p.ID, Name: "AD", Mode: domain.ModeExtraction,
	})
	require.NoError(t, err)
	at, err := svc.CreateAnnotatedText(ctx, domain.AnnotatedText{AnnotatedDatasetID: ad.ID, TextID: text.ID})
	require.NoError(t, err)
	_, err = svc.CreateDataPoint(ctx, domain.DataPoint{AnnotatedTextID: at.ID, Name: "x", Value: "1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDataset(ctx, d.ID))

	texts, err := svc.ListTexts(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, texts)
	ads, err := svc.ListAnnotatedDatasets(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ads)
	dps, err := svc.ListDataPoints(ctx, at.ID)
	require.NoError(t, err)
	assert.Empty(t, dps)

	_, err = svc.GetProfile(ctx, p.ID)
	assert.NoError(t, err)
}

func TestDataService_RemoteWritesRequireToken(t *testing.T) {
	f := newRemoteFixture(t, "")
	svc := NewDataService(f.router)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, extractionProfile("A"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.AddPoint(ctx, point("p1", "x"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.CreateDataset(ctx, domain.Dataset{Name: "D", Mode: domain.ModeExtraction})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	err = svc.DeleteDataset(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.ListProfiles(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "preconditions are not degraded")

	assert.Equal(t, 0, f.srv.Requests())
}

func TestDataService_RemoteRoundTrip(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, extractionProfile("Remote"))
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, p.WorkspaceID)

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.AddPoint(ctx, point(p.ID, name))
		require.NoError(t, err)
	}
	points, err := svc.ListPoints(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.MovePoint(ctx, points[0].ID, points[1].ID, points[2].ID)
	require.NoError(t, err)

	points, err = svc.ListPoints(ctx, p.ID)
	require.NoError(t, err)
	walked, err := WalkChain(points)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, pointNames(walked))

	got, err := svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)

	list, err := svc.ListProfiles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDataService_RemoteReadsDegrade(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)
	ctx := context.Background()

	f.srv.Fail(remotetest.Failure{Method: http.MethodGet, Collection: remotetest.Profiles})

	profiles, err := svc.ListProfiles(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, profiles)

	p, err := svc.GetProfile(ctx, "anything")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestDataService_RemoteNotFoundPropagates(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)

	_, err := svc.GetDataset(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDataService_RemoteWriteFailuresPropagate(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)

	f.srv.Fail(remotetest.Failure{Method: http.MethodPost, Collection: remotetest.Datasets, Status: http.StatusBadRequest})

	_, err := svc.CreateDataset(context.Background(), domain.Dataset{Name: "D", Mode: domain.ModeExtraction})
	require.Error(t, err)
	assert.True(t, domain.IsFailure(err))
	assert.ErrorIs(t, err, domain.ErrValidationFailure)
}

func TestDataService_SwitchDoesNotRedirectInFlightRoute(t *testing.T) {
	f := newLocalFixture(t)
	rt, err := f.router.resolve()
	require.NoError(t, err)

	other := localWorkspace("local-2")
	f.active.Set(&other)

	assert.Equal(t, f.ws.ID, rt.workspace.ID)
	next, err := f.router.resolve()
	require.NoError(t, err)
	assert.Equal(t, "local-2", next.workspace.ID)
}

// otherRecords are records owned by a second local workspace.
type otherRecords struct {
	profile *domain.Profile
	point   *domain.ProfilePoint
	dataset *domain.Dataset
	text    *domain.Text
	ad      *domain.AnnotatedDataset
	at      *domain.AnnotatedText
	dp      *domain.DataPoint
}

// seedOtherWorkspace fills local-2 with one record of every kind and switches
// back to the fixture's workspace.
func seedOtherWorkspace(t *testing.T, f *localFixture, svc *DataService) otherRecords {
	t.Helper()
	ctx := context.Background()

	other := localWorkspace("local-2")
	f.active.Set(&other)
	defer f.active.Set(&f.ws)

	var r otherRecords
	var err error
	r.profile, err = svc.CreateProfile(ctx, extractionProfile("Theirs"))
	require.NoError(t, err)
	r.point, err = svc.AddPoint(ctx, point(r.profile.ID, "a"))
	require.NoError(t, err)
	r.dataset, err = svc.CreateDataset(ctx, domain.Dataset{Name: "D", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	r.text, err = svc.CreateText(ctx, domain.Text{DatasetID: r.dataset.ID, Filename: "a.txt", Text: "hello"})
	require.NoError(t, err)
	r.ad, err = svc.CreateAnnotatedDataset(ctx, domain.AnnotatedDataset{
		DatasetID: r.dataset.ID, ProfileID: r.profile.ID, Name: "AD", Mode: domain.ModeExtraction,
	})
	require.NoError(t, err)
	r.at, err = svc.CreateAnnotatedText(ctx, domain.AnnotatedText{AnnotatedDatasetID: r.ad.ID, TextID: r.text.ID})
	require.NoError(t, err)
	r.dp, err = svc.CreateDataPoint(ctx, domain.DataPoint{AnnotatedTextID: r.at.ID, Name: "x", Value: "1"})
	require.NoError(t, err)
	return r
}

func TestDataService_WritesCannotReachOtherWorkspaces(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()
	theirs := seedOtherWorkspace(t, f, svc)

	profile := *theirs.profile
	profile.Name = "hijacked"
	assert.ErrorIs(t, svc.UpdateProfile(ctx, profile), domain.ErrNotFound)

	pt := *theirs.point
	pt.Explanation = "hijacked"
	assert.ErrorIs(t, svc.UpdatePoint(ctx, pt), domain.ErrNotFound)
	_, err := svc.MovePoint(ctx, pt.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dataset := *theirs.dataset
	dataset.Name = "hijacked"
	assert.ErrorIs(t, svc.UpdateDataset(ctx, dataset), domain.ErrNotFound)

	text := *theirs.text
	text.Text = "hijacked"
	assert.ErrorIs(t, svc.UpdateText(ctx, text), domain.ErrNotFound)

	ad := *theirs.ad
	ad.Name = "hijacked"
	assert.ErrorIs(t, svc.UpdateAnnotatedDataset(ctx, ad), domain.ErrNotFound)

	at := *theirs.at
	at.AIFaulty = true
	assert.ErrorIs(t, svc.UpdateAnnotatedText(ctx, at), domain.ErrNotFound)

	dp := *theirs.dp
	dp.Value = "hijacked"
	assert.ErrorIs(t, svc.UpdateDataPoint(ctx, dp), domain.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteDataPoint(ctx, dp.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAnnotatedText(ctx, at.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAnnotatedDataset(ctx, ad.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteText(ctx, text.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteDataset(ctx, dataset.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeletePoint(ctx, pt.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProfile(ctx, profile.ID), domain.ErrNotFound)

	storedProfile, err := f.local.Profiles().Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", storedProfile.Name)
	assert.Equal(t, "local-2", storedProfile.WorkspaceID)

	storedPoint, err := f.local.ProfilePoints().Get(ctx, pt.ID)
	require.NoError(t, err)
	assert.Empty(t, storedPoint.Explanation)

	storedText, err := f.local.Texts().Get(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", storedText.Text)

	storedDP, err := f.local.DataPoints().Get(ctx, dp.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", storedDP.Value)

	_, err = f.local.Datasets().Get(ctx, dataset.ID)
	assert.NoError(t, err)
	_, err = f.local.AnnotatedDatasets().Get(ctx, ad.ID)
	assert.NoError(t, err)
}

func TestDataService_ChildrenNeedParentsInActiveWorkspace(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()
	theirs := seedOtherWorkspace(t, f, svc)

	_, err := svc.AddPoint(ctx, point(theirs.profile.ID, "x"))
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	_, err = svc.CreateText(ctx, domain.Text{DatasetID: theirs.dataset.ID, Filename: "b.txt"})
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	mine, err := svc.CreateProfile(ctx, extractionProfile("Mine"))
	require.NoError(t, err)
	_, err = svc.CreateAnnotatedDataset(ctx, domain.AnnotatedDataset{
		DatasetID: theirs.dataset.ID, ProfileID: mine.ID, Name: "AD", Mode: domain.ModeExtraction,
	})
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	_, err = svc.CreateAnnotatedText(ctx, domain.AnnotatedText{AnnotatedDatasetID: theirs.ad.ID, TextID: theirs.text.ID})
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	_, err = svc.CreateDataPoint(ctx, domain.DataPoint{AnnotatedTextID: theirs.at.ID, Name: "x", Value: "1"})
	assert.ErrorIs(t, err, domain.ErrCrossStoreReference)

	// A text of the active workspace cannot be moved under a foreign dataset.
	d, err := svc.CreateDataset(ctx, domain.Dataset{Name: "Mine", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	text, err := svc.CreateText(ctx, domain.Text{DatasetID: d.ID, Filename: "mine.txt"})
	require.NoError(t, err)
	text.DatasetID = theirs.dataset.ID
	assert.ErrorIs(t, svc.UpdateText(ctx, *text), domain.ErrCrossStoreReference)

	texts, err := f.local.Texts().ListByDataset(ctx, theirs.dataset.ID)
	require.NoError(t, err)
	assert.Len(t, texts, 1)
}

func TestDataService_ChildReadsHideOtherWorkspaces(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()
	theirs := seedOtherWorkspace(t, f, svc)

	_, err := svc.GetPoint(ctx, theirs.point.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetText(ctx, theirs.text.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetAnnotatedDataset(ctx, theirs.ad.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	points, err := svc.ListPoints(ctx, theirs.profile.ID)
	require.NoError(t, err)
	assert.Empty(t, points)
	texts, err := svc.ListTexts(ctx, theirs.dataset.ID)
	require.NoError(t, err)
	assert.Empty(t, texts)
	ats, err := svc.ListAnnotatedTexts(ctx, theirs.ad.ID)
	require.NoError(t, err)
	assert.Empty(t, ats)
	dps, err := svc.ListDataPoints(ctx, theirs.at.ID)
	require.NoError(t, err)
	assert.Empty(t, dps)

	other := localWorkspace("local-2")
	f.active.Set(&other)
	texts, err = svc.ListTexts(ctx, theirs.dataset.ID)
	require.NoError(t, err)
	assert.Len(t, texts, 1)
}

func TestDataService_DeleteMissingIsNotFound(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewDataService(f.router)
	ctx := context.Background()

	d, err := svc.CreateDataset(ctx, domain.Dataset{Name: "D", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDataset(ctx, d.ID))
	assert.ErrorIs(t, svc.DeleteDataset(ctx, d.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProfile(ctx, "missing"), domain.ErrNotFound)
}

// ==================== Remote chain repair ====================

func remoteChain(t *testing.T, svc *DataService, names ...string) (*domain.Profile, map[string]string) {
	t.Helper()
	ctx := context.Background()
	p, err := svc.CreateProfile(ctx, extractionProfile("P"))
	require.NoError(t, err)
	ids := make(map[string]string, len(names))
	for _, n := range names {
		pt, err := svc.AddPoint(ctx, point(p.ID, n))
		require.NoError(t, err)
		ids[n] = pt.ID
	}
	return p, ids
}

func remoteWalk(t *testing.T, svc *DataService, profileID string) []string {
	t.Helper()
	points, err := svc.ListPoints(context.Background(), profileID)
	require.NoError(t, err)
	walked, err := WalkChain(points)
	require.NoError(t, err)
	return pointNames(walked)
}

func TestDataService_RemoteAppendRemovesUnlinkedPoint(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)
	ctx := context.Background()
	p, _ := remoteChain(t, svc, "one")

	f.srv.Fail(remotetest.Failure{Method: http.MethodPut, Collection: remotetest.ProfilePoints, Nth: 1})

	_, err := svc.AddPoint(ctx, point(p.ID, "two"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linking point")

	assert.Equal(t, []string{"one"}, remoteWalk(t, svc, p.ID))
}

func TestDataService_RemoteDeleteRestoresPartialUnlink(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)
	ctx := context.Background()
	p, ids := remoteChain(t, svc, "one", "two", "three")

	// The first neighbour update lands, the second fails.
	f.srv.Fail(remotetest.Failure{Method: http.MethodPut, Collection: remotetest.ProfilePoints, Nth: 2})

	require.Error(t, svc.DeletePoint(ctx, ids["two"]))
	assert.Equal(t, []string{"one", "two", "three"}, remoteWalk(t, svc, p.ID))
}

func TestDataService_RemoteDeleteRestoresWhenDeleteFails(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)
	ctx := context.Background()
	p, ids := remoteChain(t, svc, "one", "two", "three")

	f.srv.Fail(remoteFailure(http.MethodDelete, remotetest.ProfilePoints))

	require.Error(t, svc.DeletePoint(ctx, ids["two"]))
	assert.Equal(t, []string{"one", "two", "three"}, remoteWalk(t, svc, p.ID))
}

func TestDataService_RemoteMoveRestoresPartialBatch(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewDataService(f.router)
	ctx := context.Background()
	p, ids := remoteChain(t, svc, "one", "two", "three")

	f.srv.Fail(remotetest.Failure{Method: http.MethodPut, Collection: remotetest.ProfilePoints, Nth: 2})

	_, err := svc.MovePoint(ctx, ids["three"], "", ids["one"])
	require.Error(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, remoteWalk(t, svc, p.ID))
}
