package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/annotate/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is the local SQLite backend. It provides access to every
// entity store through wrapper types sharing one connection pool.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.Backend = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.annotate/data/local.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".annotate", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "local.db")

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Kind reports the local storage kind.
func (s *Store) Kind() domain.StorageKind {
	return domain.StorageLocal
}

// Profiles returns a ProfileStore backed by this store.
func (s *Store) Profiles() driven.ProfileStore {
	return &profileStore{store: s}
}

// ProfilePoints returns a ProfilePointStore backed by this store.
func (s *Store) ProfilePoints() driven.ProfilePointStore {
	return &pointStore{store: s}
}

// Datasets returns a DatasetStore backed by this store.
func (s *Store) Datasets() driven.DatasetStore {
	return &datasetStore{store: s}
}

// Texts returns a TextStore backed by this store.
func (s *Store) Texts() driven.TextStore {
	return &textStore{store: s}
}

// AnnotatedDatasets returns an AnnotatedDatasetStore backed by this store.
func (s *Store) AnnotatedDatasets() driven.AnnotatedDatasetStore {
	return &annotatedDatasetStore{store: s}
}

// AnnotatedTexts returns an AnnotatedTextStore backed by this store.
func (s *Store) AnnotatedTexts() driven.AnnotatedTextStore {
	return &annotatedTextStore{store: s}
}

// DataPoints returns a DataPointStore backed by this store.
func (s *Store) DataPoints() driven.DataPointStore {
	return &dataPointStore{store: s}
}

// Settings returns a SettingsStore backed by this store.
func (s *Store) Settings() driven.SettingsStore {
	return &settingsStore{store: s}
}

// CredentialsStore returns a CredentialsStore backed by this store.
func (s *Store) CredentialsStore() driven.CredentialsStore {
	return &credentialsStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// newID returns a time-ordered UUID for a new local row.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id.String(), nil
}

// filterClause builds a WHERE clause from a list filter.
func filterClause(filter driven.ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.WorkspaceID != "" {
		conds = append(conds, "workspace_id = ?")
		args = append(args, filter.WorkspaceID)
	}
	if filter.Mode != "" {
		conds = append(conds, "mode = ?")
		args = append(args, string(filter.Mode))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// expectAffected maps an update or delete that touched no row to ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// deleteByID removes one row of table, or fails with ErrNotFound.
func deleteByID(ctx context.Context, ex execer, table, id string) error {
	res, err := ex.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return expectAffected(res)
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// marshalNullable encodes v as JSON, storing NULL for nil values.
func marshalNullable(v any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalNullable decodes a JSON column into dst, leaving dst untouched for NULL.
func unmarshalNullable(col sql.NullString, dst any) error {
	if !col.Valid || col.String == jsonNull {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}
