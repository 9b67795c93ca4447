// ABOUTME: HTTP middleware gating all non-exempt requests behind bearer auth
// ABOUTME: Accepts the static fallback token or a valid JWT access token

package auth

import (
	"net/http"
	"strings"
)

// exemptPaths are reachable without authentication: health/info/debug
// endpoints and the OAuth endpoints themselves, which must work before the
// client holds a token. Paths are matched with trailing slashes trimmed.
var exemptPaths = map[string]struct{}{
	"":                 {},
	"/health":          {},
	"/info":            {},
	"/debug/series":    {},
	"/oauth/authorize": {},
	"/oauth/token":     {},
	"/.well-known/oauth-authorization-server": {},
}

// Middleware wraps next with bearer authentication. Requests to exempt paths
// pass through untouched; when no authentication is configured everything
// passes. Otherwise the request must carry a valid bearer credential, and
// the resulting AuthContext is attached to the request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimRight(r.URL.Path, "/")
		if _, exempt := exemptPaths[path]; exempt {
			next.ServeHTTP(w, r)
			return
		}

		if !h.cfg.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-sonarr"`)
			writeOAuthError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// Static fallback token first: it is valid even when the OAuth
		// flow is not configured.
		if h.cfg.FallbackToken != "" && secureCompare(token, h.cfg.FallbackToken) {
			authCtx := &AuthContext{Subject: "bearer-token", Scope: "full"}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
			return
		}

		claims, err := h.tokens.Verify(token)
		if err == nil {
			authCtx := &AuthContext{Subject: claims.Subject, Scope: claims.Scope}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
			return
		}

		h.logger.Debug("rejected bearer token", "error", err)
		w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-sonarr", error="invalid_token"`)
		writeOAuthError(w, http.StatusUnauthorized, "invalid_token", "The access token is invalid or expired")
	})
}
