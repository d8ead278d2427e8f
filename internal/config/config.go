package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`

	// Sent as HTTP-Referer / X-Title; OpenRouter uses them for attribution.
	Referer  string `yaml:"referer,omitempty"`
	AppTitle string `yaml:"app_title,omitempty"`

	Temperature       float64       `yaml:"temperature"`
	ScrapeTimeout     time.Duration `yaml:"scrape_timeout"`
	CompletionTimeout time.Duration `yaml:"completion_timeout"`

	OutputDir string `yaml:"output_dir,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:          "openrouter",
		Model:             "mistralai/mistral-7b-instruct",
		AppTitle:          "quill",
		Temperature:       0.7,
		ScrapeTimeout:     5 * time.Second,
		CompletionTimeout: 2 * time.Minute,
		OutputDir:         ".",
		LogLevel:          "INFO",
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "quill"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFrom reads path. A missing file yields (nil, nil).
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	// Unset keys keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overlays environment variables on top of the file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("QUILL_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("QUILL_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("QUILL_API_KEY"); v != "" {
		c.APIKey = v
	} else if v := os.Getenv("OPENROUTER_API_KEY"); v != "" && c.APIKey == "" && c.Provider == "openrouter" {
		c.APIKey = v
	}
}

// BaseURLFor returns the chat-completion base URL for the configured provider.
func (c *Config) BaseURLFor() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if p := GetProvider(c.Provider); p != nil {
		return p.BaseURL
	}
	return ""
}

// NeedsAPIKey reports whether the configured provider requires a credential.
// Unknown providers are assumed to need one.
func (c *Config) NeedsAPIKey() bool {
	p := GetProvider(c.Provider)
	return p == nil || p.NeedsAPIKey
}

func (c *Config) MaskedAPIKey() string {
	if c.APIKey == "" {
		return "Not set"
	}
	if len(c.APIKey) > 8 {
		return c.APIKey[:4] + "****" + c.APIKey[len(c.APIKey)-4:]
	}
	return "****"
}
