package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ImportService creates dataset texts from files.
type ImportService struct {
	data     driving.DataService
	registry driven.NormaliserRegistry
}

// NewImportService creates a new import service.
func NewImportService(data driving.DataService, registry driven.NormaliserRegistry) *ImportService {
	return &ImportService{data: data, registry: registry}
}

// ImportTexts extracts and stores the text of each file in order.
func (s *ImportService) ImportTexts(
	ctx context.Context,
	datasetID string,
	files []domain.RawFile,
) (*domain.ImportResult, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("%w: dataset id is required", domain.ErrInvalidInput)
	}

	ds, err := s.data.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("dataset %s: %w", datasetID, domain.ErrNotFound)
	}

	result := &domain.ImportResult{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		extracted, err := s.registry.Normalise(ctx, &f)
		if err != nil {
			logger.Warn("skipping %s: %v", f.Filename, err)
			result.Failed = append(result.Failed, domain.ImportFailure{Filename: f.Filename, Err: err})
			continue
		}

		text, err := s.data.CreateText(ctx, domain.Text{
			DatasetID: datasetID,
			Filename:  f.Filename,
			Text:      extracted.Text,
		})
		if err != nil {
			return result, fmt.Errorf("importing %s: %w", f.Filename, err)
		}
		logger.Debug("imported %s as %s text %s", f.Filename, extracted.Format, text.ID)
		result.Imported = append(result.Imported, *text)
	}

	return result, nil
}
