package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"strconv"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	FeedJSONPath string
	DownloadDir  string
	CatalogPath  string

	AnthropicKey   string
	BraveSearchKey string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Model   ModelConfig
	Profile ProfileConfig
}

// ModelConfig controls the hosted model used for recipe search and
// recommendations. A missing API key disables the model features but
// never prevents startup.
type ModelConfig struct {
	Name           string `yaml:"name"`
	MaxTokens      int    `yaml:"max_tokens"`
	MaxToolRounds  int    `yaml:"max_tool_rounds"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ProfileConfig holds the demo profile returned by /profile.
type ProfileConfig struct {
	UserID              string            `yaml:"user_id" json:"user_id"`
	Name                string            `yaml:"name" json:"name"`
	CreditsBalanceCents int               `yaml:"credits_balance_cents" json:"credits_balance_cents"`
	DefaultAddress      map[string]string `yaml:"default_address" json:"default_address"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		FeedJSONPath:             os.Getenv("FEED_JSON"),
		DownloadDir:              os.Getenv("DOWNLOAD_DIR"),
		CatalogPath:              os.Getenv("CATALOG_JSON"),
		AnthropicKey:             os.Getenv("ANTHROPIC_API_KEY"),
		BraveSearchKey:           os.Getenv("BRAVE_SEARCH_API_KEY"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	if v := os.Getenv("MODEL_MAX_TOOL_ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MODEL_MAX_TOOL_ROUNDS: %w", err)
		}
		cfg.Model.MaxToolRounds = n
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "haaangry-backend"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "0.1.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.FeedJSONPath == "" {
		cfg.FeedJSONPath = "./data/videos.json"
	}

	cfg.SetModelDefaults()
	cfg.SetProfileDefaults()

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Model   ModelConfig   `yaml:"model"`
		Profile ProfileConfig `yaml:"profile"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Model.Name != "" {
		c.Model.Name = yamlConfig.Model.Name
	}
	if yamlConfig.Model.MaxTokens > 0 {
		c.Model.MaxTokens = yamlConfig.Model.MaxTokens
	}
	if yamlConfig.Model.MaxToolRounds > 0 {
		c.Model.MaxToolRounds = yamlConfig.Model.MaxToolRounds
	}
	if yamlConfig.Model.TimeoutSeconds > 0 {
		c.Model.TimeoutSeconds = yamlConfig.Model.TimeoutSeconds
	}
	if yamlConfig.Profile.UserID != "" {
		c.Profile = yamlConfig.Profile
	}

	return nil
}

func (c *Config) SetModelDefaults() {
	if c.Model.Name == "" {
		c.Model.Name = "claude-haiku-4-5"
	}
	if c.Model.MaxTokens <= 0 {
		c.Model.MaxTokens = 1024
	}
	if c.Model.MaxToolRounds <= 0 {
		c.Model.MaxToolRounds = 3
	}
	if c.Model.TimeoutSeconds <= 0 {
		c.Model.TimeoutSeconds = 30
	}
}

func (c *Config) SetProfileDefaults() {
	if c.Profile.UserID == "" {
		c.Profile = ProfileConfig{
			UserID:              "u1",
			Name:                "Alex",
			CreditsBalanceCents: 3000,
			DefaultAddress: map[string]string{
				"line1": "1 Market St",
				"city":  "SF",
				"state": "CA",
				"zip":   "94105",
			},
		}
	}
}
