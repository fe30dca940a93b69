package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigSaveAndLoad(t *testing.T) {
	// Use a temp dir as home
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL: "http://myhost:9090",
		APIKey:    "gk_testapikey123",
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Verify file exists
	path := filepath.Join(tmp, ".config", "gk", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not found: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("server_url = %q, want %q", loaded.ServerURL, cfg.ServerURL)
	}
	if loaded.APIKey != cfg.APIKey {
		t.Errorf("api_key = %q, want %q", loaded.APIKey, cfg.APIKey)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.ServerURL != "" || cfg.APIKey != "" {
		t.Error("expected zero-value config for missing file")
	}
}

func TestGetServerURLFromEnv(t *testing.T) {
	t.Setenv("GK_SERVER_URL", "http://custom:1234")
	t.Setenv("HOME", t.TempDir())

	url := getServerURL()
	if url != "http://custom:1234" {
		t.Errorf("url = %q, want %q", url, "http://custom:1234")
	}
}

func TestGetServerURLDefault(t *testing.T) {
	t.Setenv("GK_SERVER_URL", "")
	t.Setenv("HOME", t.TempDir())

	url := getServerURL()
	if url != "http://localhost:8080" {
		t.Errorf("url = %q, want %q", url, "http://localhost:8080")
	}
}

func TestGetAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GK_API_KEY", "gk_envkey")
	t.Setenv("HOME", t.TempDir())

	key := getAPIKey()
	if key != "gk_envkey" {
		t.Errorf("key = %q, want %q", key, "gk_envkey")
	}
}

func TestGetAPIKeyFromConfig(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("GK_API_KEY", "")

	cfg := CLIConfig{APIKey: "gk_configkey"}
	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	key := getAPIKey()
	if key != "gk_configkey" {
		t.Errorf("key = %q, want %q", key, "gk_configkey")
	}
}

func TestGetAPIKeyEmpty(t *testing.T) {
	t.Setenv("GK_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	key := getAPIKey()
	if key != "" {
		t.Errorf("key = %q, want empty", key)
	}
}

func TestConfigCommunityRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GK_COMMUNITY_ID", "")
	setFlag(t, &flagCommunity, "")

	if err := saveConfig(CLIConfig{CommunityID: "c-config"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got := getCommunityID(); got != "c-config" {
		t.Errorf("community = %q, want %q", got, "c-config")
	}
}

func TestGetCommunityIDPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	setFlag(t, &flagCommunity, "")
	if err := saveConfig(CLIConfig{CommunityID: "c-config"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Setenv("GK_COMMUNITY_ID", "c-env")
	if got := getCommunityID(); got != "c-env" {
		t.Errorf("env: community = %q, want %q", got, "c-env")
	}

	setFlag(t, &flagCommunity, "c-flag")
	if got := getCommunityID(); got != "c-flag" {
		t.Errorf("flag: community = %q, want %q", got, "c-flag")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GK_SERVER_URL=http://fromdotenv:8080\nGK_COMMUNITY_ID=c-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("GK_SERVER_URL", "")
	t.Setenv("GK_COMMUNITY_ID", "c-already-set")
	// godotenv only fills variables that are not present at all.
	if err := os.Unsetenv("GK_SERVER_URL"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := os.Getenv("GK_SERVER_URL"); got != "http://fromdotenv:8080" {
		t.Errorf("GK_SERVER_URL = %q, want value from .env", got)
	}
	if got := os.Getenv("GK_COMMUNITY_ID"); got != "c-already-set" {
		t.Errorf("GK_COMMUNITY_ID = %q, want existing value kept", got)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should not error: %v", err)
	}
}

func TestIsDevMode(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"false", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("GK_DEV_MODE", tt.value)
			if got := isDevMode(); got != tt.want {
				t.Errorf("isDevMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

// setFlag sets a package-level flag variable for the duration of a test.
func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestGetSMTPConfig(t *testing.T) {
	t.Setenv("GK_SMTP_HOST", "smtp.example.com")
	t.Setenv("GK_SMTP_PORT", "")
	t.Setenv("GK_SMTP_FROM", "gate@example.com")

	cfg := getSMTPConfig()
	if !cfg.IsConfigured() {
		t.Error("expected SMTP configured")
	}
	if cfg.Port != "587" {
		t.Errorf("port = %q, want default 587", cfg.Port)
	}
}
