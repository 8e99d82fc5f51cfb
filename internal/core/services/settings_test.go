package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

func TestSettingsService_LocalDefaults(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewSettingsService(f.router)
	ctx := context.Background()

	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, settings.TutorialCompleted)

	cfg, err := svc.GetLLMConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLLMConfig(), *cfg)
}

func TestSettingsService_SaveAndGet(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewSettingsService(f.router)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, domain.UserSettings{TutorialCompleted: true}))

	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings.TutorialCompleted)
}

func TestSettingsService_CompleteTutorial(t *testing.T) {
	f := newLocalFixture(t)
	svc := NewSettingsService(f.router)
	ctx := context.Background()

	require.NoError(t, svc.CompleteTutorial(ctx))

	stored, err := f.local.Settings().GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, stored.TutorialCompleted)
}

func TestSettingsService_SaveLLMConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       domain.LLMConfig
		wantErr   error
		wantModel string
	}{
		{
			name:      "valid",
			cfg:       domain.LLMConfig{Provider: domain.AIProviderOpenAI, Model: "gpt-4o", APIKey: "sk", BatchSize: 5, MaxTokens: 512},
			wantModel: "gpt-4o",
		},
		{
			name:      "empty model uses provider default",
			cfg:       domain.LLMConfig{Provider: domain.AIProviderAnthropic, BatchSize: 5, MaxTokens: 512},
			wantModel: domain.DefaultLLMModels()[domain.AIProviderAnthropic],
		},
		{
			name:    "unknown provider",
			cfg:     domain.LLMConfig{Provider: "mystery", Model: "m", BatchSize: 5, MaxTokens: 512},
			wantErr: domain.ErrValidationFailure,
		},
		{
			name:    "zero batch size",
			cfg:     domain.LLMConfig{Provider: domain.AIProviderOllama, Model: "m", MaxTokens: 512},
			wantErr: domain.ErrValidationFailure,
		},
		{
			name:    "negative max tokens",
			cfg:     domain.LLMConfig{Provider: domain.AIProviderOllama, Model: "m", BatchSize: 1, MaxTokens: -1},
			wantErr: domain.ErrValidationFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLocalFixture(t)
			svc := NewSettingsService(f.router)
			ctx := context.Background()

			err := svc.SaveLLMConfig(ctx, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, getErr := f.local.Settings().GetLLMConfig(ctx)
				require.NoError(t, getErr)
				assert.Equal(t, domain.DefaultLLMConfig(), *stored)
				return
			}
			require.NoError(t, err)

			stored, err := svc.GetLLMConfig(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Provider, stored.Provider)
			assert.Equal(t, tt.wantModel, stored.Model)
		})
	}
}

func TestSettingsService_NoActiveWorkspace(t *testing.T) {
	f := newLocalFixture(t)
	f.active.Set(nil)
	svc := NewSettingsService(f.router)

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveWorkspace)
}

func TestSettingsService_RemoteRoundTrip(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewSettingsService(f.router)
	ctx := context.Background()

	// Nothing stored yet: the remote answers 404 and defaults apply.
	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, settings.TutorialCompleted)

	require.NoError(t, svc.CompleteTutorial(ctx))
	settings, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings.TutorialCompleted)
}

func TestSettingsService_RemoteReadsDegrade(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewSettingsService(f.router)
	ctx := context.Background()

	f.srv.Fail(remoteFailure(http.MethodGet, "settings"))
	f.srv.Fail(remoteFailure(http.MethodGet, "llm-config"))

	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UserSettings{}, *settings)

	cfg, err := svc.GetLLMConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLLMConfig(), *cfg)
}

func TestSettingsService_RemoteWriteFailurePropagates(t *testing.T) {
	f := newRemoteFixture(t, "tok")
	svc := NewSettingsService(f.router)

	f.srv.Fail(remoteFailure(http.MethodPut, "settings"))

	err := svc.Save(context.Background(), domain.UserSettings{TutorialCompleted: true})
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestSettingsService_RemoteSaveRequiresToken(t *testing.T) {
	f := newRemoteFixture(t, "")
	svc := NewSettingsService(f.router)

	err := svc.Save(context.Background(), domain.UserSettings{TutorialCompleted: true})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, 0, f.srv.Requests())
}
