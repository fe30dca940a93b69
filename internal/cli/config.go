package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/gatekeeper/internal/email"
)

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL   string `yaml:"server_url,omitempty"`
	APIKey      string `yaml:"api_key,omitempty"`
	CommunityID string `yaml:"community_id,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gk", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// loadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("GK_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return "http://localhost:8080"
}

// getAPIKey returns the API key from env var or config.
func getAPIKey() string {
	if v := os.Getenv("GK_API_KEY"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.APIKey
	}
	return ""
}

// getCommunityID returns the community from the --community flag, env var,
// or config.
func getCommunityID() string {
	if flagCommunity != "" {
		return flagCommunity
	}
	if v := os.Getenv("GK_COMMUNITY_ID"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.CommunityID
	}
	return ""
}

// isDevMode reports whether GK_DEV_MODE is set to a true value.
func isDevMode() bool {
	v, err := strconv.ParseBool(os.Getenv("GK_DEV_MODE"))
	return err == nil && v
}

// getSMTPConfig reads mail settings for overstay alerts from the environment.
func getSMTPConfig() email.SMTPConfig {
	return email.SMTPConfig{
		Host: os.Getenv("GK_SMTP_HOST"),
		Port: envOrDefault("GK_SMTP_PORT", "587"),
		User: os.Getenv("GK_SMTP_USER"),
		Pass: os.Getenv("GK_SMTP_PASS"),
		From: os.Getenv("GK_SMTP_FROM"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
