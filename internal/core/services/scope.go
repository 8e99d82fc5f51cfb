package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// The owned* lookups resolve a record and walk up to the top-level record
// that carries the workspace. A record owned by another workspace is
// reported as ErrNotFound, the same as a missing one.

func ownedProfile(ctx context.Context, rt route, id string) (*domain.Profile, error) {
	p, err := rt.backend.Profiles().Get(ctx, id)
	return inWorkspace(rt, p, func(p *domain.Profile) string { return p.WorkspaceID }, err)
}

func ownedPoint(ctx context.Context, rt route, id string) (*domain.ProfilePoint, error) {
	pt, err := rt.backend.ProfilePoints().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedProfile(ctx, rt, pt.ProfileID); err != nil {
		return nil, err
	}
	return pt, nil
}

func ownedDataset(ctx context.Context, rt route, id string) (*domain.Dataset, error) {
	d, err := rt.backend.Datasets().Get(ctx, id)
	return inWorkspace(rt, d, func(d *domain.Dataset) string { return d.WorkspaceID }, err)
}

func ownedText(ctx context.Context, rt route, id string) (*domain.Text, error) {
	t, err := rt.backend.Texts().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedDataset(ctx, rt, t.DatasetID); err != nil {
		return nil, err
	}
	return t, nil
}

func ownedAnnotatedDataset(ctx context.Context, rt route, id string) (*domain.AnnotatedDataset, error) {
	ad, err := rt.backend.AnnotatedDatasets().Get(ctx, id)
	return inWorkspace(rt, ad, func(ad *domain.AnnotatedDataset) string { return ad.WorkspaceID }, err)
}

func ownedAnnotatedText(ctx context.Context, rt route, id string) (*domain.AnnotatedText, error) {
	at, err := rt.backend.AnnotatedTexts().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedAnnotatedDataset(ctx, rt, at.AnnotatedDatasetID); err != nil {
		return nil, err
	}
	return at, nil
}

func ownedDataPoint(ctx context.Context, rt route, id string) (*domain.DataPoint, error) {
	dp, err := rt.backend.DataPoints().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedAnnotatedText(ctx, rt, dp.AnnotatedTextID); err != nil {
		return nil, err
	}
	return dp, nil
}

// visibleParent reports whether a child listing should go to the store.
// A missing or foreign parent lists as empty.
func visibleParent[T any](
	ctx context.Context,
	rt route,
	owned func(context.Context, route, string) (*T, error),
	id string,
) (bool, error) {
	if _, err := owned(ctx, rt, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
