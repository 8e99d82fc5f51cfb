package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// Flags for settings llm. Any flag set skips the interactive prompts.
var (
	llmProvider  string
	llmModel     string
	llmBaseURL   string
	llmAPIKey    string
	llmBatchSize int
	llmMaxTokens int
)

var tutorialReset bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage user settings",
	Long: `View and configure user settings of the active workspace.

Settings follow the workspace: a remote workspace keeps them in the remote
store, a local one on this device.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long: `Configure the LLM used for assisted annotation.

Without flags an interactive prompt asks for each value.

Examples:
  annotate settings llm
  annotate settings llm --provider openai --model gpt-4o --api-key sk-...`,
	RunE: runSettingsLLM,
}

var settingsTutorialCmd = &cobra.Command{
	Use:   "tutorial",
	Short: "Mark the onboarding tutorial as completed",
	RunE:  runSettingsTutorial,
}

func init() {
	settingsLLMCmd.Flags().StringVar(&llmProvider, "provider", "", "provider: ollama, openai or anthropic")
	settingsLLMCmd.Flags().StringVar(&llmModel, "model", "", "model name (default depends on the provider)")
	settingsLLMCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "API endpoint")
	settingsLLMCmd.Flags().StringVar(&llmAPIKey, "api-key", "", "provider API key")
	settingsLLMCmd.Flags().IntVar(&llmBatchSize, "batch-size", 0, "texts per request")
	settingsLLMCmd.Flags().IntVar(&llmMaxTokens, "max-tokens", 0, "completion length cap")
	settingsTutorialCmd.Flags().BoolVar(&tutorialReset, "reset", false, "mark the tutorial as not completed")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsTutorialCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	ctx := cmd.Context()

	settings, err := settingsService.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	llm, err := settingsService.GetLLMConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get LLM configuration: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[User]")
	cmd.Printf("  Tutorial completed: %s\n", yesNo(settings.TutorialCompleted))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", llm.Provider.Description())
	cmd.Printf("  Model: %s\n", llm.Model)
	if llm.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", llm.BaseURL)
	}
	if llm.Provider.RequiresAPIKey() {
		if llm.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(llm.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Batch size: %d\n", llm.BatchSize)
	cmd.Printf("  Max tokens: %d\n", llm.MaxTokens)
	status := "configured"
	if !llm.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	ctx := cmd.Context()

	current, err := settingsService.GetLLMConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get LLM configuration: %w", err)
	}

	var cfg domain.LLMConfig
	if anyChanged(cmd, "provider", "model", "base-url", "api-key", "batch-size", "max-tokens") {
		cfg = llmConfigFromFlags(*current)
	} else {
		cfg, err = promptLLMConfig(cmd, bufio.NewReader(cmd.InOrStdin()), *current)
		if err != nil {
			return err
		}
	}

	if err := settingsService.SaveLLMConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Printf("LLM provider configured: %s\n", cfg.Provider.Description())
	return nil
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// switchProvider drops the settings that belong to the previous provider.
// An empty model is filled in with the provider's default on save.
func switchProvider(cfg domain.LLMConfig, p domain.AIProvider) domain.LLMConfig {
	cfg.Provider = p
	cfg.Model = ""
	cfg.APIKey = ""
	cfg.BaseURL = ""
	if p == domain.AIProviderOllama {
		cfg.BaseURL = domain.DefaultLLMConfig().BaseURL
	}
	return cfg
}

// llmConfigFromFlags overlays the set flags on the current configuration.
func llmConfigFromFlags(current domain.LLMConfig) domain.LLMConfig {
	cfg := current
	if llmProvider != "" && domain.AIProvider(llmProvider) != cfg.Provider {
		cfg = switchProvider(cfg, domain.AIProvider(llmProvider))
	}
	if llmModel != "" {
		cfg.Model = llmModel
	}
	if llmBaseURL != "" {
		cfg.BaseURL = llmBaseURL
	}
	if llmAPIKey != "" {
		cfg.APIKey = llmAPIKey
	}
	if llmBatchSize != 0 {
		cfg.BatchSize = llmBatchSize
	}
	if llmMaxTokens != 0 {
		cfg.MaxTokens = llmMaxTokens
	}
	return cfg
}

func promptLLMConfig(cmd *cobra.Command, reader *bufio.Reader, current domain.LLMConfig) (domain.LLMConfig, error) {
	cfg := current

	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	defaultChoice := 1
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
		if p == current.Provider {
			defaultChoice = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	selected := providers[parseChoice(readLine(reader), len(providers), defaultChoice)-1]
	if selected != cfg.Provider {
		cfg = switchProvider(cfg, selected)
		cfg.Model = domain.DefaultLLMModels()[selected]
	}

	cmd.Printf("Enter model name [%s]: ", cfg.Model)
	if model := readLine(reader); model != "" {
		cfg.Model = model
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey != "" {
			cfg.APIKey = apiKey
		}
		if cfg.APIKey == "" {
			return cfg, errors.New("API key is required for this provider")
		}
	}

	cmd.Printf("Texts per request [%d]: ", cfg.BatchSize)
	if n, err := strconv.Atoi(readLine(reader)); err == nil && n > 0 {
		cfg.BatchSize = n
	}

	return cfg, nil
}

func runSettingsTutorial(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Save(cmd.Context(), domain.UserSettings{TutorialCompleted: !tutorialReset}); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if tutorialReset {
		cmd.Println("Tutorial will be shown again.")
	} else {
		cmd.Println("Tutorial marked as completed.")
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise a plain line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
