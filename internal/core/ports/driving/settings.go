package driving

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// SettingsService manages user settings in the active workspace's store.
type SettingsService interface {
	// Get returns the user settings. Falls back to defaults on read failure.
	Get(ctx context.Context) (*domain.UserSettings, error)

	// Save upserts the user settings.
	Save(ctx context.Context, settings domain.UserSettings) error

	// GetLLMConfig returns the LLM configuration. Falls back to defaults on read failure.
	GetLLMConfig(ctx context.Context) (*domain.LLMConfig, error)

	// SaveLLMConfig upserts the LLM configuration.
	SaveLLMConfig(ctx context.Context, cfg domain.LLMConfig) error
}
