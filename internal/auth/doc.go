// Package auth provides authentication and authorization for mcp-sonarr.
//
// # Overview
//
// The package implements an OAuth 2.0 Authorization Code grant so that
// OAuth-capable clients (ChatGPT, Claude, other MCP hosts) can obtain access
// tokens, plus a request-gating middleware that protects every other
// endpoint of the gateway.
//
// # Authentication Methods
//
//   - OAuth 2.0 Authorization Code: the client is sent to /oauth/authorize,
//     a password form is shown, and a short-lived single-use code is issued.
//     The code plus client credentials are exchanged at /oauth/token for a
//     JWT access token signed with HS256.
//
//   - Static bearer token: an optional fallback token (MCP_AUTH_TOKEN) is
//     accepted on protected endpoints for clients that cannot drive the
//     authorization flow.
//
// # Components
//
//   - CodeStore: in-memory, mutex-guarded store of single-use authorization
//     codes bound to a client and redirect URI, expiring after ten minutes.
//
//   - TokenIssuer: issues and verifies stateless JWT access tokens carrying
//     sub, iat, exp, scope, and iss claims.
//
//   - Handler: the /oauth/authorize, /oauth/token, and
//     /.well-known/oauth-authorization-server HTTP endpoints.
//
//   - Middleware: wraps the gateway mux and rejects requests to non-exempt
//     paths that do not carry a valid bearer credential. On success an
//     AuthContext is attached to the request context.
//
// # Security Notes
//
// All secret comparisons (password, client credentials, fallback token) use
// constant-time comparison. There is no token revocation: a leaked JWT stays
// valid until its exp claim passes, so keep the configured TTL short.
package auth
