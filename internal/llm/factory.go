package llm

import (
	"fmt"
	"strings"

	"github.com/sant0-9/quill/internal/config"
)

// NewProvider creates a provider from config. It never touches the network
// and fails with ErrMissingAPIKey when a required credential is empty.
func NewProvider(cfg *config.Config) (Provider, error) {
	info := config.GetProvider(cfg.Provider)
	if info == nil {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	if info.NeedsAPIKey && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
	}

	baseURL := cfg.BaseURLFor()
	if baseURL == "" {
		return nil, fmt.Errorf("%s provider requires base_url", cfg.Provider)
	}

	model := cfg.Model
	if model == "" {
		model = info.DefaultModel
	}

	return NewOpenAIProvider(Options{
		Name:     info.ID,
		APIKey:   cfg.APIKey,
		Model:    model,
		BaseURL:  baseURL,
		Referer:  cfg.Referer,
		AppTitle: cfg.AppTitle,
		Timeout:  cfg.CompletionTimeout,
	}), nil
}
