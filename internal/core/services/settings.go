package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService manages user settings in the active workspace's store.
// Local settings are device-wide; remote settings belong to the signed-in user.
type SettingsService struct {
	router *Router
}

// NewSettingsService creates a new settings service.
func NewSettingsService(router *Router) *SettingsService {
	return &SettingsService{router: router}
}

// Get retrieves the user settings.
func (s *SettingsService) Get(ctx context.Context) (*domain.UserSettings, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	settings, err := rt.backend.Settings().GetSettings(ctx)
	if err != nil {
		if degradable(err) {
			logger.Warn("get settings: %v", err)
			return &domain.UserSettings{}, nil
		}
		return nil, err
	}
	return settings, nil
}

// Save persists the user settings.
func (s *SettingsService) Save(ctx context.Context, settings domain.UserSettings) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if err := rt.backend.Settings().PutSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// GetLLMConfig retrieves the LLM configuration.
func (s *SettingsService) GetLLMConfig(ctx context.Context) (*domain.LLMConfig, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	cfg, err := rt.backend.Settings().GetLLMConfig(ctx)
	if err != nil {
		if degradable(err) {
			logger.Warn("get llm config: %v", err)
			defaults := domain.DefaultLLMConfig()
			return &defaults, nil
		}
		return nil, err
	}
	return cfg, nil
}

// SaveLLMConfig persists the LLM configuration.
func (s *SettingsService) SaveLLMConfig(ctx context.Context, cfg domain.LLMConfig) error {
	if !cfg.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrValidationFailure, cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = domain.DefaultLLMModels()[cfg.Provider]
	}
	if cfg.BatchSize <= 0 || cfg.MaxTokens <= 0 {
		return fmt.Errorf("%w: batch size and max tokens must be positive", domain.ErrValidationFailure)
	}

	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if err := rt.backend.Settings().PutLLMConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save llm config: %w", err)
	}
	return nil
}

// CompleteTutorial marks the onboarding tutorial as finished.
func (s *SettingsService) CompleteTutorial(ctx context.Context) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}
	settings.TutorialCompleted = true
	return s.Save(ctx, *settings)
}
