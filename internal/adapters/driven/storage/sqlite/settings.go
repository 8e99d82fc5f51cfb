package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Keys in the settings table.
const (
	settingsKeyUser = "user_settings"
	settingsKeyLLM  = "llm_config"
)

// ==================== Settings Store ====================

type settingsStore struct {
	store *Store
}

var _ driven.SettingsStore = (*settingsStore)(nil)

// GetSettings returns the stored user settings or defaults.
func (s *settingsStore) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	var settings domain.UserSettings
	if _, err := s.get(ctx, settingsKeyUser, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// PutSettings upserts the user settings.
func (s *settingsStore) PutSettings(ctx context.Context, settings domain.UserSettings) error {
	return s.put(ctx, settingsKeyUser, settings)
}

// GetLLMConfig returns the stored LLM configuration, or defaults when none
// was ever stored. A stored configuration is returned as written.
func (s *settingsStore) GetLLMConfig(ctx context.Context) (*domain.LLMConfig, error) {
	var cfg domain.LLMConfig
	found, err := s.get(ctx, settingsKeyLLM, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = domain.DefaultLLMConfig()
	}
	return &cfg, nil
}

// PutLLMConfig upserts the LLM configuration.
func (s *settingsStore) PutLLMConfig(ctx context.Context, cfg domain.LLMConfig) error {
	return s.put(ctx, settingsKeyLLM, cfg)
}

func (s *settingsStore) get(ctx context.Context, key string, dst any) (bool, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if noRows(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("unmarshalling %s: %w", key, err)
	}
	return true, nil
}

func (s *settingsStore) put(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", key, err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// ==================== Credentials Store ====================

type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// Save stores the session, replacing any existing one.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.AccessToken == "" {
		return domain.ErrInvalidInput
	}
	if creds.TokenType == "" {
		creds.TokenType = "Bearer"
	}
	if creds.CreatedAt.IsZero() {
		creds.CreatedAt = time.Now().UTC()
	}

	var expiry sql.NullTime
	if !creds.Expiry.IsZero() {
		expiry = sql.NullTime{Time: creds.Expiry, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, token_type, account_identifier, expiry, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			account_identifier = excluded.account_identifier,
			expiry = excluded.expiry,
			created_at = excluded.created_at
	`, creds.AccessToken, creds.TokenType, creds.AccountIdentifier, expiry, creds.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get returns the session, or nil when signed out.
func (s *credentialsStore) Get(ctx context.Context) (*domain.Credentials, error) {
	var creds domain.Credentials
	var expiry sql.NullTime
	err := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, token_type, account_identifier, expiry, created_at
		FROM credentials WHERE id = 1
	`).Scan(&creds.AccessToken, &creds.TokenType, &creds.AccountIdentifier, &expiry, &creds.CreatedAt)
	if noRows(err) {
		return nil, nil // Signed out is valid
	}
	if err != nil {
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}
	if expiry.Valid {
		creds.Expiry = expiry.Time
	}
	return &creds, nil
}

// Delete removes the session.
func (s *credentialsStore) Delete(ctx context.Context) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = 1")
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}
