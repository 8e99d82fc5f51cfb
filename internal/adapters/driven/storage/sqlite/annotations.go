package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// ==================== Annotated Dataset Store ====================

type annotatedDatasetStore struct {
	store *Store
}

var _ driven.AnnotatedDatasetStore = (*annotatedDatasetStore)(nil)

const annotatedDatasetColumns = "id, workspace_id, dataset_id, profile_id, name, description, mode"

// Create stores a new annotated dataset.
func (s *annotatedDatasetStore) Create(
	ctx context.Context, ad domain.AnnotatedDataset,
) (*domain.AnnotatedDataset, error) {
	if ad.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		ad.ID = id
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO annotated_datasets (`+annotatedDatasetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ad.ID, ad.WorkspaceID, ad.DatasetID, ad.ProfileID, ad.Name, ad.Description, string(ad.Mode))
	if err != nil {
		return nil, fmt.Errorf("inserting annotated dataset: %w", err)
	}
	return &ad, nil
}

// Get retrieves an annotated dataset by ID.
func (s *annotatedDatasetStore) Get(ctx context.Context, id string) (*domain.AnnotatedDataset, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+annotatedDatasetColumns+" FROM annotated_datasets WHERE id = ?", id)
	ad, err := scanAnnotatedDataset(row)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	return ad, err
}

// List returns annotated datasets matching the filter, ordered by id.
func (s *annotatedDatasetStore) List(
	ctx context.Context, filter driven.ListFilter,
) ([]domain.AnnotatedDataset, error) {
	where, args := filterClause(filter)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+annotatedDatasetColumns+" FROM annotated_datasets"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying annotated datasets: %w", err)
	}
	defer rows.Close()

	var out []domain.AnnotatedDataset //nolint:prealloc // size unknown from query
	for rows.Next() {
		ad, err := scanAnnotatedDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotated datasets: %w", err)
	}
	return out, nil
}

// Update replaces an annotated dataset.
func (s *annotatedDatasetStore) Update(ctx context.Context, ad domain.AnnotatedDataset) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE annotated_datasets SET
			workspace_id = ?, dataset_id = ?, profile_id = ?, name = ?, description = ?, mode = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, ad.WorkspaceID, ad.DatasetID, ad.ProfileID, ad.Name, ad.Description, string(ad.Mode), ad.ID)
	if err != nil {
		return fmt.Errorf("updating annotated dataset: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an annotated dataset. Annotated texts and data points cascade.
func (s *annotatedDatasetStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "annotated_datasets", id)
}

func scanAnnotatedDataset(row rowScanner) (*domain.AnnotatedDataset, error) {
	var ad domain.AnnotatedDataset
	var mode string
	if err := row.Scan(&ad.ID, &ad.WorkspaceID, &ad.DatasetID, &ad.ProfileID,
		&ad.Name, &ad.Description, &mode); err != nil {
		if noRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning annotated dataset: %w", err)
	}
	ad.Mode = domain.Mode(mode)
	return &ad, nil
}

// ==================== Annotated Text Store ====================

type annotatedTextStore struct {
	store *Store
}

var _ driven.AnnotatedTextStore = (*annotatedTextStore)(nil)

const annotatedTextColumns = "id, annotated_dataset_id, text_id, verified, ai_faulty"

// Create stores a new annotated text.
func (s *annotatedTextStore) Create(ctx context.Context, at domain.AnnotatedText) (*domain.AnnotatedText, error) {
	if at.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		at.ID = id
	}

	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO annotated_texts ("+annotatedTextColumns+") VALUES (?, ?, ?, ?, ?)",
		at.ID, at.AnnotatedDatasetID, at.TextID, at.Verified, at.AIFaulty)
	if err != nil {
		return nil, fmt.Errorf("inserting annotated text: %w", err)
	}
	return &at, nil
}

// Get retrieves an annotated text by ID.
func (s *annotatedTextStore) Get(ctx context.Context, id string) (*domain.AnnotatedText, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+annotatedTextColumns+" FROM annotated_texts WHERE id = ?", id)
	at, err := scanAnnotatedText(row)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	return at, err
}

// ListByAnnotatedDataset returns an annotated dataset's texts ordered by id.
func (s *annotatedTextStore) ListByAnnotatedDataset(
	ctx context.Context, annotatedDatasetID string,
) ([]domain.AnnotatedText, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+annotatedTextColumns+" FROM annotated_texts WHERE annotated_dataset_id = ? ORDER BY id",
		annotatedDatasetID)
	if err != nil {
		return nil, fmt.Errorf("querying annotated texts: %w", err)
	}
	defer rows.Close()

	var out []domain.AnnotatedText //nolint:prealloc // size unknown from query
	for rows.Next() {
		at, err := scanAnnotatedText(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotated texts: %w", err)
	}
	return out, nil
}

// Update replaces an annotated text.
func (s *annotatedTextStore) Update(ctx context.Context, at domain.AnnotatedText) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE annotated_texts SET annotated_dataset_id = ?, text_id = ?, verified = ?, ai_faulty = ?
		WHERE id = ?
	`, at.AnnotatedDatasetID, at.TextID, at.Verified, at.AIFaulty, at.ID)
	if err != nil {
		return fmt.Errorf("updating annotated text: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an annotated text. Data points cascade.
func (s *annotatedTextStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "annotated_texts", id)
}

func scanAnnotatedText(row rowScanner) (*domain.AnnotatedText, error) {
	var at domain.AnnotatedText
	if err := row.Scan(&at.ID, &at.AnnotatedDatasetID, &at.TextID, &at.Verified, &at.AIFaulty); err != nil {
		if noRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning annotated text: %w", err)
	}
	return &at, nil
}

// ==================== Data Point Store ====================

type dataPointStore struct {
	store *Store
}

var _ driven.DataPointStore = (*dataPointStore)(nil)

const dataPointColumns = "id, annotated_text_id, name, value, match, profile_point_id, verified"

// Create stores a new data point.
func (s *dataPointStore) Create(ctx context.Context, dp domain.DataPoint) (*domain.DataPoint, error) {
	if dp.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		dp.ID = id
	}

	match, err := marshalNullable(dp.Match, dp.Match == nil)
	if err != nil {
		return nil, fmt.Errorf("marshalling match: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx,
		"INSERT INTO data_points ("+dataPointColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		dp.ID, dp.AnnotatedTextID, dp.Name, dp.Value, match, nullString(dp.ProfilePointID), dp.Verified)
	if err != nil {
		return nil, fmt.Errorf("inserting data point: %w", err)
	}
	return &dp, nil
}

// Get retrieves a data point by ID.
func (s *dataPointStore) Get(ctx context.Context, id string) (*domain.DataPoint, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+dataPointColumns+" FROM data_points WHERE id = ?", id)
	dp, err := scanDataPoint(row)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	return dp, err
}

// ListByAnnotatedText returns an annotated text's data points ordered by id.
func (s *dataPointStore) ListByAnnotatedText(ctx context.Context, annotatedTextID string) ([]domain.DataPoint, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+dataPointColumns+" FROM data_points WHERE annotated_text_id = ? ORDER BY id",
		annotatedTextID)
	if err != nil {
		return nil, fmt.Errorf("querying data points: %w", err)
	}
	defer rows.Close()

	var out []domain.DataPoint //nolint:prealloc // size unknown from query
	for rows.Next() {
		dp, err := scanDataPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *dp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating data points: %w", err)
	}
	return out, nil
}

// Update replaces a data point.
func (s *dataPointStore) Update(ctx context.Context, dp domain.DataPoint) error {
	match, err := marshalNullable(dp.Match, dp.Match == nil)
	if err != nil {
		return fmt.Errorf("marshalling match: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE data_points SET
			annotated_text_id = ?, name = ?, value = ?, match = ?, profile_point_id = ?, verified = ?
		WHERE id = ?
	`, dp.AnnotatedTextID, dp.Name, dp.Value, match, nullString(dp.ProfilePointID), dp.Verified, dp.ID)
	if err != nil {
		return fmt.Errorf("updating data point: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a data point.
func (s *dataPointStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "data_points", id)
}

func scanDataPoint(row rowScanner) (*domain.DataPoint, error) {
	var dp domain.DataPoint
	var match, profilePointID sql.NullString
	if err := row.Scan(&dp.ID, &dp.AnnotatedTextID, &dp.Name, &dp.Value,
		&match, &profilePointID, &dp.Verified); err != nil {
		if noRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning data point: %w", err)
	}
	if err := unmarshalNullable(match, &dp.Match); err != nil {
		return nil, fmt.Errorf("unmarshalling match: %w", err)
	}
	dp.ProfilePointID = profilePointID.String
	return &dp, nil
}
