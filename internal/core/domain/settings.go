package domain

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider used for assisted annotation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// UserSettings holds per-user application state.
type UserSettings struct {
	// TutorialCompleted records whether the onboarding tutorial was finished.
	TutorialCompleted bool `json:"tutorialCompleted"`
}

// LLMConfig holds the per-user LLM configuration.
type LLMConfig struct {
	// Provider is the LLM service provider.
	Provider AIProvider `json:"provider"`

	// Model is the LLM model name.
	Model string `json:"model"`

	// BaseURL is the API endpoint (for Ollama or self-hosted gateways).
	BaseURL string `json:"baseUrl,omitempty"`

	// APIKey is the provider key. It stays on the device it was entered on
	// and is never copied by migration.
	APIKey string `json:"apiKey,omitempty"`

	// BatchSize is the number of texts sent per LLM request.
	BatchSize int `json:"batchSize"`

	// MaxTokens caps the completion length.
	MaxTokens int `json:"maxTokens"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMConfig) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// WithoutSecrets returns a copy of the configuration with the API key cleared.
func (l LLMConfig) WithoutSecrets() LLMConfig {
	l.APIKey = ""
	return l
}

// DefaultLLMConfig returns the configuration used before the user changes anything.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:  AIProviderOllama,
		Model:     DefaultLLMModels()[AIProviderOllama],
		BaseURL:   "http://localhost:11434",
		BatchSize: 10,
		MaxTokens: 4096,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
