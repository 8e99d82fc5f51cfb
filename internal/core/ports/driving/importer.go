package driving

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// ImportService turns files into texts of a dataset.
type ImportService interface {
	// ImportTexts extracts the text of each file and adds it to the dataset.
	// Files whose text cannot be extracted are reported in the result; a
	// failed write aborts the import and returns what was imported so far.
	ImportTexts(ctx context.Context, datasetID string, files []domain.RawFile) (*domain.ImportResult, error)
}
