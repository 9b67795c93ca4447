// ABOUTME: Configuration loading and parsing for mcp-sonarr
// ABOUTME: Supports YAML files with environment variable expansion and a pure-env path

package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config represents the complete mcp-sonarr configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sonarr  SonarrConfig  `yaml:"sonarr"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Host string `yaml:"host" env:"MCP_HOST,default=0.0.0.0"`
	Port int    `yaml:"port" env:"MCP_PORT,default=8080"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SonarrConfig holds the upstream Sonarr connection configuration
type SonarrConfig struct {
	URL    string `yaml:"url" env:"SONARR_URL"`
	APIKey string `yaml:"api_key" env:"SONARR_API_KEY"`

	Timeout time.Duration `yaml:"-" env:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout" env:"SONARR_TIMEOUT,default=30s"`
}

// OAuthConfig holds the OAuth 2.0 authorization server configuration.
// OAuth endpoints are enabled only when client_id, client_secret, and
// auth_password are all present.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id" env:"OAUTH_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"OAUTH_CLIENT_SECRET"`

	// SigningSecret signs access tokens (HS256). Generated at load time
	// when empty; tokens then do not survive a restart.
	SigningSecret string `yaml:"jwt_secret" env:"OAUTH_JWT_SECRET"`

	// TokenTTLMinutes is the access token lifetime in minutes.
	TokenTTLMinutes int `yaml:"token_ttl_minutes" env:"OAUTH_ACCESS_TOKEN_EXPIRE_MINUTES,default=60"`

	// AuthPassword gates the authorization form. A value with a bcrypt
	// prefix ("$2") is treated as a password hash.
	AuthPassword string `yaml:"auth_password" env:"OAUTH_AUTH_PASSWORD"`

	// FallbackToken is an optional static bearer token accepted alongside
	// JWTs, for clients that cannot drive the authorization code flow.
	FallbackToken string `yaml:"fallback_token" env:"MCP_AUTH_TOKEN"`
}

// OAuthEnabled reports whether the authorization code flow is fully
// configured. Partial configuration does not enable anything.
func (o OAuthConfig) OAuthEnabled() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.AuthPassword != ""
}

// AuthEnabled reports whether any authentication gate applies to requests.
func (o OAuthConfig) AuthEnabled() bool {
	return o.OAuthEnabled() || o.FallbackToken != ""
}

// TokenTTL returns the access token lifetime as a duration.
func (o OAuthConfig) TokenTTL() time.Duration {
	return time.Duration(o.TokenTTLMinutes) * time.Minute
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"MCP_LOG_LEVEL,default=info"`
	Format string `yaml:"format" env:"MCP_LOG_FORMAT,default=text"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnv builds a Config entirely from environment variables. This matches
// container deployments where no config file is mounted.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// finalize applies defaults, generates the signing secret if absent, parses
// duration fields, and validates the result.
func (c *Config) finalize() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.OAuth.TokenTTLMinutes == 0 {
		c.OAuth.TokenTTLMinutes = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Sonarr.TimeoutRaw == "" {
		c.Sonarr.TimeoutRaw = "30s"
	}

	timeout, err := time.ParseDuration(c.Sonarr.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing sonarr.timeout %q: %w", c.Sonarr.TimeoutRaw, err)
	}
	c.Sonarr.Timeout = timeout

	if c.OAuth.SigningSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			return fmt.Errorf("generating signing secret: %w", err)
		}
		c.OAuth.SigningSecret = secret
	}

	return c.Validate()
}

// generateSecret returns a fresh random secret for token signing.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Sonarr.URL == "" {
		return fmt.Errorf("sonarr.url is required (SONARR_URL)")
	}
	if c.Sonarr.APIKey == "" {
		return fmt.Errorf("sonarr.api_key is required (SONARR_API_KEY)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.OAuth.TokenTTLMinutes < 0 {
		return fmt.Errorf("oauth.token_ttl_minutes must not be negative")
	}
	return nil
}
