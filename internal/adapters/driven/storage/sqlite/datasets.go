package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// ==================== Dataset Store ====================

type datasetStore struct {
	store *Store
}

var _ driven.DatasetStore = (*datasetStore)(nil)

const datasetColumns = "id, workspace_id, name, description, mode"

// Create stores a new dataset.
func (s *datasetStore) Create(ctx context.Context, d domain.Dataset) (*domain.Dataset, error) {
	if d.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		d.ID = id
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO datasets (id, workspace_id, name, description, mode)
		VALUES (?, ?, ?, ?, ?)
	`, d.ID, d.WorkspaceID, d.Name, d.Description, string(d.Mode))
	if err != nil {
		return nil, fmt.Errorf("inserting dataset: %w", err)
	}
	return &d, nil
}

// Get retrieves a dataset by ID.
func (s *datasetStore) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+datasetColumns+" FROM datasets WHERE id = ?", id)
	d, err := scanDataset(row)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

// List returns datasets matching the filter, ordered by id.
func (s *datasetStore) List(ctx context.Context, filter driven.ListFilter) ([]domain.Dataset, error) {
	where, args := filterClause(filter)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+datasetColumns+" FROM datasets"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var datasets []domain.Dataset //nolint:prealloc // size unknown from query
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}
	return datasets, nil
}

// Update replaces a dataset.
func (s *datasetStore) Update(ctx context.Context, d domain.Dataset) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE datasets SET
			workspace_id = ?, name = ?, description = ?, mode = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, d.WorkspaceID, d.Name, d.Description, string(d.Mode), d.ID)
	if err != nil {
		return fmt.Errorf("updating dataset: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a dataset. Texts and annotated datasets cascade.
func (s *datasetStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "datasets", id)
}

func scanDataset(row rowScanner) (*domain.Dataset, error) {
	var d domain.Dataset
	var mode string
	if err := row.Scan(&d.ID, &d.WorkspaceID, &d.Name, &d.Description, &mode); err != nil {
		if noRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning dataset: %w", err)
	}
	d.Mode = domain.Mode(mode)
	return &d, nil
}

// ==================== Text Store ====================

type textStore struct {
	store *Store
}

var _ driven.TextStore = (*textStore)(nil)

// Create stores a new text.
func (s *textStore) Create(ctx context.Context, t domain.Text) (*domain.Text, error) {
	if t.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		t.ID = id
	}

	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO texts (id, dataset_id, filename, text) VALUES (?, ?, ?, ?)",
		t.ID, t.DatasetID, t.Filename, t.Text)
	if err != nil {
		return nil, fmt.Errorf("inserting text: %w", err)
	}
	return &t, nil
}

// Get retrieves a text by ID.
func (s *textStore) Get(ctx context.Context, id string) (*domain.Text, error) {
	var t domain.Text
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, dataset_id, filename, text FROM texts WHERE id = ?", id).
		Scan(&t.ID, &t.DatasetID, &t.Filename, &t.Text)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning text: %w", err)
	}
	return &t, nil
}

// ListByDataset returns a dataset's texts ordered by id.
func (s *textStore) ListByDataset(ctx context.Context, datasetID string) ([]domain.Text, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, dataset_id, filename, text FROM texts WHERE dataset_id = ? ORDER BY id", datasetID)
	if err != nil {
		return nil, fmt.Errorf("querying texts: %w", err)
	}
	defer rows.Close()

	var texts []domain.Text //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.Text
		if err := rows.Scan(&t.ID, &t.DatasetID, &t.Filename, &t.Text); err != nil {
			return nil, fmt.Errorf("scanning text: %w", err)
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating texts: %w", err)
	}
	return texts, nil
}

// Update replaces a text.
func (s *textStore) Update(ctx context.Context, t domain.Text) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE texts SET dataset_id = ?, filename = ?, text = ? WHERE id = ?",
		t.DatasetID, t.Filename, t.Text, t.ID)
	if err != nil {
		return fmt.Errorf("updating text: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a text.
func (s *textStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "texts", id)
}
