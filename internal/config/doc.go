// Package config handles configuration loading for mcp-sonarr.
//
// # Overview
//
// Configuration comes from a YAML file with environment variable expansion,
// or entirely from the environment when no file is given. The package
// provides validation and sensible defaults.
//
// # Environment Variables
//
// The pure-environment path reads:
//
//	SONARR_URL                          Upstream Sonarr base URL (required)
//	SONARR_API_KEY                      Sonarr API key (required)
//	SONARR_TIMEOUT                      Upstream request timeout (default 30s)
//	MCP_HOST / MCP_PORT                 Listen address (default 0.0.0.0:8080)
//	OAUTH_CLIENT_ID                     OAuth client ID
//	OAUTH_CLIENT_SECRET                 OAuth client secret
//	OAUTH_JWT_SECRET                    Token signing secret (generated if unset)
//	OAUTH_ACCESS_TOKEN_EXPIRE_MINUTES   Token TTL in minutes (default 60)
//	OAUTH_AUTH_PASSWORD                 Authorization form password
//	MCP_AUTH_TOKEN                      Static fallback bearer token
//	MCP_LOG_LEVEL / MCP_LOG_FORMAT      Logging (default info / text)
//
// OAuth is enabled only when client id, client secret, and password are all
// present. A generated signing secret means issued tokens do not survive a
// process restart; set OAUTH_JWT_SECRET for stable deployments.
//
// # Environment Variable Expansion
//
// YAML configuration values can reference environment variables:
//
//	sonarr:
//	  api_key: "${SONARR_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	sonarr:
//	  timeout: "30s"
package config
