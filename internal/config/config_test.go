// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, env-only loading, and derived flags

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

sonarr:
  url: "http://sonarr:8989"
  api_key: "test-api-key"
  timeout: "15s"

oauth:
  client_id: "abc"
  client_secret: "s3cr3t"
  jwt_secret: "signing-secret"
  token_ttl_minutes: 30
  auth_password: "hunter2"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q, want %q", cfg.Server.Addr(), "127.0.0.1:9090")
	}
	if cfg.Sonarr.Timeout != 15*time.Second {
		t.Errorf("Sonarr.Timeout = %v, want 15s", cfg.Sonarr.Timeout)
	}
	if cfg.OAuth.TokenTTL() != 30*time.Minute {
		t.Errorf("TokenTTL() = %v, want 30m", cfg.OAuth.TokenTTL())
	}
	if !cfg.OAuth.OAuthEnabled() {
		t.Error("OAuthEnabled() = false, want true")
	}
	if !cfg.OAuth.AuthEnabled() {
		t.Error("AuthEnabled() = false, want true")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_SONARR_KEY", "expanded-key")

	configPath := writeConfig(t, `
sonarr:
  url: "http://sonarr:8989"
  api_key: "${TEST_SONARR_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sonarr.APIKey != "expanded-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Sonarr.APIKey, "expanded-key")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
sonarr:
  url: "http://sonarr:8989"
  api_key: "key"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.OAuth.TokenTTLMinutes != 60 {
		t.Errorf("TokenTTLMinutes = %d, want 60", cfg.OAuth.TokenTTLMinutes)
	}
	if cfg.Sonarr.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Sonarr.Timeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_GeneratesSigningSecret(t *testing.T) {
	configPath := writeConfig(t, `
sonarr:
  url: "http://sonarr:8989"
  api_key: "key"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OAuth.SigningSecret == "" {
		t.Fatal("SigningSecret not generated")
	}

	cfg2, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OAuth.SigningSecret == cfg2.OAuth.SigningSecret {
		t.Error("generated secrets should differ between loads")
	}
}

func TestLoad_MissingSonarr(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing url",
			content: "sonarr:\n  api_key: \"key\"\n",
			wantErr: "sonarr.url",
		},
		{
			name:    "missing api key",
			content: "sonarr:\n  url: \"http://sonarr:8989\"\n",
			wantErr: "sonarr.api_key",
		},
		{
			name:    "bad timeout",
			content: "sonarr:\n  url: \"http://sonarr:8989\"\n  api_key: \"key\"\n  timeout: \"nope\"\n",
			wantErr: "sonarr.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SONARR_URL", "http://sonarr:8989")
	t.Setenv("SONARR_API_KEY", "env-key")
	t.Setenv("OAUTH_CLIENT_ID", "abc")
	t.Setenv("OAUTH_CLIENT_SECRET", "s3cr3t")
	t.Setenv("OAUTH_AUTH_PASSWORD", "hunter2")
	t.Setenv("MCP_PORT", "9191")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Sonarr.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Sonarr.APIKey, "env-key")
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Server.Port)
	}
	if !cfg.OAuth.OAuthEnabled() {
		t.Error("OAuthEnabled() = false, want true")
	}
}

func TestOAuthEnabled_PartialConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  OAuthConfig
		want bool
	}{
		{"all present", OAuthConfig{ClientID: "a", ClientSecret: "b", AuthPassword: "c"}, true},
		{"missing password", OAuthConfig{ClientID: "a", ClientSecret: "b"}, false},
		{"missing secret", OAuthConfig{ClientID: "a", AuthPassword: "c"}, false},
		{"missing id", OAuthConfig{ClientSecret: "b", AuthPassword: "c"}, false},
		{"empty", OAuthConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.OAuthEnabled(); got != tt.want {
				t.Errorf("OAuthEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthEnabled_FallbackOnly(t *testing.T) {
	cfg := OAuthConfig{FallbackToken: "static-token"}
	if cfg.OAuthEnabled() {
		t.Error("OAuthEnabled() = true, want false")
	}
	if !cfg.AuthEnabled() {
		t.Error("AuthEnabled() = false, want true")
	}
}
