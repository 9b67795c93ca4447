// ABOUTME: Package documentation for the gateway orchestrator
// ABOUTME: Describes component wiring and the HTTP surface

// Package gateway wires the server together: the Sonarr client, the tool
// registry, the OAuth authorization server, and the MCP transport, all
// behind one HTTP server.
//
// The route surface:
//
//	/health                                health probe (checks Sonarr)
//	/info                                  server identity
//	/debug/series                          raw series listing for debugging
//	/oauth/authorize                       OAuth authorization endpoint
//	/oauth/token                           OAuth token endpoint
//	/.well-known/oauth-authorization-server  RFC 8414 metadata
//	/mcp                                   MCP Streamable HTTP endpoint
//
// Every route passes through the bearer middleware; only /mcp is actually
// gated, the rest are on the exempt list.
package gateway
