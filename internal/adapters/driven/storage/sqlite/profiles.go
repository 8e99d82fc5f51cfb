package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// ==================== Profile Store ====================

type profileStore struct {
	store *Store
}

var _ driven.ProfileStore = (*profileStore)(nil)

const profileColumns = "id, workspace_id, name, description, mode, example"

// Create stores a new profile.
func (s *profileStore) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	if p.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		p.ID = id
	}

	example, err := marshalNullable(p.Example, p.Example == nil)
	if err != nil {
		return nil, fmt.Errorf("marshalling example: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO profiles (id, workspace_id, name, description, mode, example)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.WorkspaceID, p.Name, p.Description, string(p.Mode), example)
	if err != nil {
		return nil, fmt.Errorf("inserting profile: %w", err)
	}
	return &p, nil
}

// Get retrieves a profile by ID.
func (s *profileStore) Get(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	p, err := scanProfile(row)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// List returns profiles matching the filter, ordered by id.
func (s *profileStore) List(ctx context.Context, filter driven.ListFilter) ([]domain.Profile, error) {
	where, args := filterClause(filter)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile //nolint:prealloc // size unknown from query
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return profiles, nil
}

// Update replaces a profile.
func (s *profileStore) Update(ctx context.Context, p domain.Profile) error {
	example, err := marshalNullable(p.Example, p.Example == nil)
	if err != nil {
		return fmt.Errorf("marshalling example: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE profiles SET
			workspace_id = ?, name = ?, description = ?, mode = ?, example = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.WorkspaceID, p.Name, p.Description, string(p.Mode), example, p.ID)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a profile; its points cascade.
func (s *profileStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "profiles", id)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var mode string
	var example sql.NullString
	if err := row.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &mode, &example); err != nil {
		if noRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.Mode = domain.Mode(mode)
	if example.Valid && example.String != jsonNull {
		p.Example = &domain.ProfileExample{}
		if err := json.Unmarshal([]byte(example.String), p.Example); err != nil {
			return nil, fmt.Errorf("unmarshalling example: %w", err)
		}
	}
	return &p, nil
}

// ==================== Profile Point Store ====================

type pointStore struct {
	store *Store
}

var (
	_ driven.ProfilePointStore = (*pointStore)(nil)
	_ driven.LinkedPointStore  = (*pointStore)(nil)
)

const pointColumns = `id, profile_id, name, explanation, synonyms, datatype, valueset, unit,
	sort_order, previous_point_id, next_point_id`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create stores a new point.
func (s *pointStore) Create(ctx context.Context, p domain.ProfilePoint) (*domain.ProfilePoint, error) {
	return insertPoint(ctx, s.store.db, p)
}

func insertPoint(ctx context.Context, ex execer, p domain.ProfilePoint) (*domain.ProfilePoint, error) {
	if p.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	if len(p.Synonyms) == 0 {
		p.Synonyms = nil
	}

	args, err := pointArgs(p)
	if err != nil {
		return nil, err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO profile_points (`+pointColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, append([]any{p.ID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("inserting profile point: %w", err)
	}
	return &p, nil
}

// CreateLinked inserts the point and its link updates in one transaction.
func (s *pointStore) CreateLinked(
	ctx context.Context,
	p domain.ProfilePoint,
	link func(created domain.ProfilePoint) []domain.ProfilePoint,
) (*domain.ProfilePoint, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	created, err := insertPoint(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	updates := link(*created)
	if err := updatePoints(ctx, tx, updates); err != nil {
		return nil, err
	}
	for _, u := range updates {
		if u.ID == created.ID {
			*created = u
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return created, nil
}

// Get retrieves a point by ID.
func (s *pointStore) Get(ctx context.Context, id string) (*domain.ProfilePoint, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+pointColumns+" FROM profile_points WHERE id = ?", id)
	p, err := scanPoint(row)
	if noRows(err) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// ListByProfile returns a profile's points in ascending order.
func (s *pointStore) ListByProfile(ctx context.Context, profileID string) ([]domain.ProfilePoint, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+pointColumns+" FROM profile_points WHERE profile_id = ? ORDER BY sort_order, id",
		profileID)
	if err != nil {
		return nil, fmt.Errorf("querying profile points: %w", err)
	}
	defer rows.Close()

	var points []domain.ProfilePoint //nolint:prealloc // size unknown from query
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile points: %w", err)
	}
	return points, nil
}

const updatePointSQL = `
	UPDATE profile_points SET
		profile_id = ?, name = ?, explanation = ?, synonyms = ?, datatype = ?,
		valueset = ?, unit = ?, sort_order = ?, previous_point_id = ?, next_point_id = ?
	WHERE id = ?
`

// Update replaces a point.
func (s *pointStore) Update(ctx context.Context, p domain.ProfilePoint) error {
	args, err := pointArgs(p)
	if err != nil {
		return err
	}
	res, err := s.store.db.ExecContext(ctx, updatePointSQL, append(args, p.ID)...)
	if err != nil {
		return fmt.Errorf("updating profile point: %w", err)
	}
	return expectAffected(res)
}

// UpdateBatch replaces several points in one transaction.
func (s *pointStore) UpdateBatch(ctx context.Context, points []domain.ProfilePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := updatePoints(ctx, tx, points); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// updatePoints replaces points inside tx. Every point must exist.
func updatePoints(ctx context.Context, tx *sql.Tx, points []domain.ProfilePoint) error {
	if len(points) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, updatePointSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		args, err := pointArgs(p)
		if err != nil {
			return err
		}
		res, err := stmt.ExecContext(ctx, append(args, p.ID)...)
		if err != nil {
			return fmt.Errorf("updating profile point %s: %w", p.ID, err)
		}
		if err := expectAffected(res); err != nil {
			return fmt.Errorf("updating profile point %s: %w", p.ID, err)
		}
	}
	return nil
}

// Delete removes a point.
func (s *pointStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.store.db, "profile_points", id)
}

// DeleteLinked removes the point and applies updates in one transaction.
func (s *pointStore) DeleteLinked(ctx context.Context, id string, updates []domain.ProfilePoint) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteByID(ctx, tx, "profile_points", id); err != nil {
		return err
	}
	if err := updatePoints(ctx, tx, updates); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// pointArgs returns the column values after id, in pointColumns order.
func pointArgs(p domain.ProfilePoint) ([]any, error) {
	synonyms := p.Synonyms
	if synonyms == nil {
		synonyms = []string{}
	}
	synonymsJSON, err := json.Marshal(synonyms)
	if err != nil {
		return nil, fmt.Errorf("marshalling synonyms: %w", err)
	}
	valueset, err := marshalNullable(p.Valueset, p.Valueset == nil)
	if err != nil {
		return nil, fmt.Errorf("marshalling valueset: %w", err)
	}
	return []any{
		p.ProfileID, p.Name, p.Explanation, string(synonymsJSON), p.Datatype,
		valueset, nullStringPtr(p.Unit), p.Order,
		nullString(p.PreviousPointID), nullString(p.NextPointID),
	}, nil
}

func scanPoint(row rowScanner) (*domain.ProfilePoint, error) {
	var p domain.ProfilePoint
	var synonyms string
	var valueset, unit, prev, next sql.NullString
	if err := row.Scan(&p.ID, &p.ProfileID, &p.Name, &p.Explanation, &synonyms, &p.Datatype,
		&valueset, &unit, &p.Order, &prev, &next); err != nil {
		if noRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning profile point: %w", err)
	}

	var syn []string
	if err := json.Unmarshal([]byte(synonyms), &syn); err != nil {
		return nil, fmt.Errorf("unmarshalling synonyms: %w", err)
	}
	if len(syn) > 0 {
		p.Synonyms = syn
	}
	if valueset.Valid && valueset.String != jsonNull {
		p.Valueset = []string{}
		if err := json.Unmarshal([]byte(valueset.String), &p.Valueset); err != nil {
			return nil, fmt.Errorf("unmarshalling valueset: %w", err)
		}
	}
	if unit.Valid {
		p.Unit = domain.StringPtr(unit.String)
	}
	p.PreviousPointID = prev.String
	p.NextPointID = next.String
	return &p, nil
}
