package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/normalisers"
)

func newImportFixture(t *testing.T) (*localFixture, *DataService, *ImportService) {
	t.Helper()
	f := newLocalFixture(t)
	data := NewDataService(f.router)
	return f, data, NewImportService(data, normalisers.NewDefaultRegistry())
}

func TestImportService_ImportTexts(t *testing.T) {
	_, data, svc := newImportFixture(t)
	ctx := context.Background()

	ds, err := data.CreateDataset(ctx, domain.Dataset{Name: "Letters", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	result, err := svc.ImportTexts(ctx, ds.ID, []domain.RawFile{
		{Filename: "one.txt", Content: []byte("Age: 54\r\n")},
		{Filename: "scan.png", Content: []byte{0x89, 'P', 'N', 'G'}},
		{Filename: "two.md", Content: []byte("# Weight\n\n72 kg")},
	})
	require.NoError(t, err)

	require.Len(t, result.Imported, 2)
	assert.Equal(t, "one.txt", result.Imported[0].Filename)
	assert.Equal(t, "Age: 54\n", result.Imported[0].Text)
	assert.Equal(t, "Weight\n\n72 kg", result.Imported[1].Text)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "scan.png", result.Failed[0].Filename)
	assert.ErrorIs(t, result.Failed[0].Err, domain.ErrInvalidInput)

	texts, err := data.ListTexts(ctx, ds.ID)
	require.NoError(t, err)
	assert.Len(t, texts, 2)
}

func TestImportService_UnknownDataset(t *testing.T) {
	_, _, svc := newImportFixture(t)

	_, err := svc.ImportTexts(context.Background(), "missing", []domain.RawFile{{Filename: "a.txt"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ImportTexts(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImportService_NoActiveWorkspace(t *testing.T) {
	f, _, svc := newImportFixture(t)
	f.active.Set(nil)

	_, err := svc.ImportTexts(context.Background(), "ds", []domain.RawFile{{Filename: "a.txt"}})
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)
}

func TestImportService_StopsOnCancel(t *testing.T) {
	_, data, svc := newImportFixture(t)
	ds, err := data.CreateDataset(context.Background(), domain.Dataset{Name: "D", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.ImportTexts(ctx, ds.ID, []domain.RawFile{{Filename: "a.txt", Content: []byte("x")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Imported)
}
