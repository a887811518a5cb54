// Package config loads application configuration from an optional YAML
// file overlaid with environment variables. Environment variables win.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything the application needs to run.
type Config struct {
	// Reddit holds the Reddit API credentials.
	Reddit RedditConfig `yaml:"reddit"`

	// Anthropic holds the LLM analysis settings.
	Anthropic AnthropicConfig `yaml:"anthropic"`

	// DatabasePath is where the encrypted token store lives.
	// Default: reddit-listener.db
	DatabasePath string `yaml:"database_path"`

	// EncryptionKey is a 64-char hex string (32 bytes) used to encrypt
	// stored OAuth tokens at rest. Required when user auth is used.
	EncryptionKey string `yaml:"encryption_key"`

	// AuthListenAddr is the bind address of the OAuth callback server.
	// Default: 127.0.0.1:8787
	AuthListenAddr string `yaml:"auth_listen_addr"`
}

// RedditConfig identifies the Reddit API application.
type RedditConfig struct {
	// ClientID and ClientSecret come from the Reddit app registration.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// UserAgent is sent with every API request. Reddit requires a
	// descriptive one. Default: reddit-listener/1.0
	UserAgent string `yaml:"user_agent"`

	// RedirectURI must match the app registration exactly.
	// Default: http://127.0.0.1:8787/oauth/reddit/callback
	RedirectURI string `yaml:"redirect_uri"`
}

// AnthropicConfig configures the analysis model.
type AnthropicConfig struct {
	// APIKey falls back to the ANTHROPIC_API_KEY environment variable
	// inside the SDK when empty.
	APIKey string `yaml:"api_key"`

	// Model overrides the default analysis model when set.
	Model string `yaml:"model"`

	// RequestsPerMinute caps analysis request throughput.
	// Default: 30, Range: 1-1000
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Default returns the baseline configuration before file and environment
// overlays.
func Default() Config {
	return Config{
		Reddit: RedditConfig{
			UserAgent:   "reddit-listener/1.0",
			RedirectURI: "http://127.0.0.1:8787/oauth/reddit/callback",
		},
		Anthropic: AnthropicConfig{
			RequestsPerMinute: 30,
		},
		DatabasePath:   "reddit-listener.db",
		AuthListenAddr: "127.0.0.1:8787",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty the file must exist; otherwise a missing file is
// fine), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Reddit.ClientID, "REDDIT_CLIENT_ID")
	setString(&c.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	setString(&c.Reddit.UserAgent, "REDDIT_USER_AGENT")
	setString(&c.Reddit.RedirectURI, "REDDIT_REDIRECT_URI")
	setString(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Anthropic.Model, "ANTHROPIC_MODEL")
	setInt(&c.Anthropic.RequestsPerMinute, "ANTHROPIC_REQUESTS_PER_MINUTE")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.EncryptionKey, "ENCRYPTION_KEY")
	setString(&c.AuthListenAddr, "AUTH_LISTEN_ADDR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the configuration for internally inconsistent or
// malformed values. Missing credentials are not an error here; the
// commands that need them check at use time.
func (c Config) Validate() error {
	if c.EncryptionKey != "" {
		key, err := hex.DecodeString(c.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption_key must be hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("encryption_key must be 32 bytes (64 hex chars), got %d bytes", len(key))
		}
	}
	if c.Anthropic.RequestsPerMinute < 1 || c.Anthropic.RequestsPerMinute > 1000 {
		return fmt.Errorf("requests_per_minute must be between 1 and 1000 (got %d)",
			c.Anthropic.RequestsPerMinute)
	}
	if c.Reddit.UserAgent == "" {
		return fmt.Errorf("reddit user_agent cannot be empty")
	}
	return nil
}

// RequireRedditApp errors unless the Reddit client credentials are set.
func (c Config) RequireRedditApp() error {
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set")
	}
	return nil
}
