package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	VariantFacebook  = "facebook"
	VariantInstagram = "instagram"
)

// Config holds all configuration options for graphkit and graphctl
type Config struct {
	// Graph API application and client settings
	Graph GraphConfig `yaml:"graph" json:"graph"`

	// Retry configuration for transport failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Where graphctl keeps obtained tokens
	TokenStore TokenStoreConfig `yaml:"token_store" json:"token_store"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// GraphConfig holds Graph API specific configuration
type GraphConfig struct {
	Variant     string          `yaml:"variant" json:"variant"`
	AppID       string          `yaml:"app_id" json:"app_id"`
	AppSecret   string          `yaml:"app_secret" json:"app_secret"`
	AccessToken string          `yaml:"access_token" json:"access_token"`
	RedirectURI string          `yaml:"redirect_uri" json:"redirect_uri"`
	APIVersion  string          `yaml:"api_version" json:"api_version"`
	Scope       []string        `yaml:"scope" json:"scope"`
	Timeout     time.Duration   `yaml:"timeout" json:"timeout"`
	Tracing     bool            `yaml:"tracing" json:"tracing"`
	Endpoints   EndpointsConfig `yaml:"endpoints" json:"endpoints"`
}

// EndpointsConfig overrides the production base URLs. Empty values keep the default.
type EndpointsConfig struct {
	Graph          string `yaml:"graph" json:"graph"`
	Facebook       string `yaml:"facebook" json:"facebook"`
	InstagramAPI   string `yaml:"instagram_api" json:"instagram_api"`
	InstagramGraph string `yaml:"instagram_graph" json:"instagram_graph"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Strategy is smooth, fixed or sliding
	Strategy          string `yaml:"strategy" json:"strategy"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int    `yaml:"burst_size" json:"burst_size"`
}

// TokenStoreConfig selects the token storage backend
type TokenStoreConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			Variant:    VariantFacebook,
			APIVersion: "v20.0",
			Timeout:    30 * time.Second,
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Strategy:          "smooth",
			RequestsPerMinute: 200,
			BurstSize:         20,
		},
		TokenStore: TokenStoreConfig{
			Backend: "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("GRAPHKIT_VARIANT"); v != "" {
		c.Graph.Variant = v
	}
	if v := os.Getenv("GRAPHKIT_APP_ID"); v != "" {
		c.Graph.AppID = v
	}
	if v := os.Getenv("GRAPHKIT_APP_SECRET"); v != "" {
		c.Graph.AppSecret = v
	}
	if v := os.Getenv("GRAPHKIT_ACCESS_TOKEN"); v != "" {
		c.Graph.AccessToken = v
	}
	if v := os.Getenv("GRAPHKIT_REDIRECT_URI"); v != "" {
		c.Graph.RedirectURI = v
	}
	if v := os.Getenv("GRAPHKIT_API_VERSION"); v != "" {
		c.Graph.APIVersion = v
	}
	if v := os.Getenv("GRAPHKIT_SCOPE"); v != "" {
		c.Graph.Scope = splitList(v)
	}
	if v := os.Getenv("GRAPHKIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GRAPHKIT_TIMEOUT: %w", err)
		}
		c.Graph.Timeout = d
	}
	if v := os.Getenv("GRAPHKIT_TRACING"); v != "" {
		c.Graph.Tracing = strings.ToLower(v) == "true"
	}

	if v := os.Getenv("GRAPHKIT_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GRAPHKIT_REQUESTS_PER_MINUTE: %w", err)
		}
		if n > 0 {
			c.RateLimit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("GRAPHKIT_RATE_LIMIT_STRATEGY"); v != "" {
		c.RateLimit.Strategy = v
	}
	if v := os.Getenv("GRAPHKIT_RETRY_ENABLED"); v != "" {
		c.Retry.Enabled = strings.ToLower(v) == "true"
	}

	if v := os.Getenv("GRAPHKIT_TOKEN_STORE"); v != "" {
		c.TokenStore.Backend = v
	}
	if v := os.Getenv("GRAPHKIT_TOKEN_STORE_PATH"); v != "" {
		c.TokenStore.Path = v
	}

	if v := os.Getenv("GRAPHKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".graphkit.yaml",
		".graphkit.yml",
		filepath.Join(home, ".config", "graphkit", "config.yaml"),
		filepath.Join(home, ".config", "graphkit", "config.yml"),
		filepath.Join(home, ".graphkit.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Graph.Variant) {
	case VariantFacebook, VariantInstagram:
	default:
		errs = append(errs, fmt.Errorf("unknown graph variant %q", c.Graph.Variant))
	}
	if c.Graph.APIVersion != "" && !strings.HasPrefix(c.Graph.APIVersion, "v") {
		errs = append(errs, errors.New("api version must look like v20.0"))
	}
	if c.Graph.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.Retry.Enabled && c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max retry attempts must be positive when retry is enabled"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.BurstSize < 0 {
		errs = append(errs, errors.New("burst size cannot be negative"))
	}
	switch strings.ToLower(c.RateLimit.Strategy) {
	case "", "smooth", "fixed", "sliding":
	default:
		errs = append(errs, fmt.Errorf("unknown rate limit strategy %q", c.RateLimit.Strategy))
	}

	validBackends := map[string]bool{
		"auto": true, "keyring": true, "file": true, "sqlite": true, "env": true,
	}
	if !validBackends[strings.ToLower(c.TokenStore.Backend)] {
		errs = append(errs, fmt.Errorf("unknown token store backend %q", c.TokenStore.Backend))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may hold the app secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["variant"].(string); ok && v != "" {
		c.Graph.Variant = v
	}
	if v, ok := flags["app-id"].(string); ok && v != "" {
		c.Graph.AppID = v
	}
	if v, ok := flags["redirect-uri"].(string); ok && v != "" {
		c.Graph.RedirectURI = v
	}
	if v, ok := flags["api-version"].(string); ok && v != "" {
		c.Graph.APIVersion = v
	}
	if v, ok := flags["access-token"].(string); ok && v != "" {
		c.Graph.AccessToken = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["token-store"].(string); ok && v != "" {
		c.TokenStore.Backend = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".graphkit.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
