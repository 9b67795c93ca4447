// ABOUTME: HTTP handlers for the OAuth 2.0 authorize, token, and metadata endpoints
// ABOUTME: Implements the Authorization Code grant backed by CodeStore and TokenIssuer

package auth

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ZakiZtraki/mcp-sonarr/internal/config"
)

// Handler serves the OAuth 2.0 endpoints and owns the authorization code
// store and token issuer. Construct once at startup and share.
type Handler struct {
	cfg    config.OAuthConfig
	codes  *CodeStore
	tokens *TokenIssuer
	logger *slog.Logger
	tmpl   *template.Template
}

// NewHandler creates the OAuth handler from the given configuration.
func NewHandler(cfg config.OAuthConfig, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/authorize.html")
	if err != nil {
		return nil, fmt.Errorf("parsing authorize template: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		cfg:    cfg,
		codes:  NewCodeStore(),
		tokens: NewTokenIssuer([]byte(cfg.SigningSecret), cfg.TokenTTL()),
		logger: logger,
		tmpl:   tmpl,
	}, nil
}

// RegisterRoutes registers the OAuth endpoints on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/oauth/authorize", h.handleAuthorize)
	mux.HandleFunc("/oauth/token", h.handleToken)
	mux.HandleFunc("/.well-known/oauth-authorization-server", h.handleMetadata)
}

// formData is the template data for the authorization form. Rendering goes
// through html/template, so every field is escaped contextually.
type formData struct {
	ClientID     string
	RedirectURI  string
	State        string
	ResponseType string
	Error        string
}

// handleAuthorize is the OAuth 2.0 Authorization Endpoint.
// GET displays the password form; POST verifies the password and redirects
// back to the client with a fresh authorization code.
func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.OAuthEnabled() {
		writeOAuthError(w, http.StatusNotImplemented, "oauth_not_configured", "OAuth is not configured on this server")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.authorizeForm(w, r)
	case http.MethodPost:
		h.authorizeSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) authorizeForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("client_id")
	responseType := q.Get("response_type")
	if responseType == "" {
		responseType = "code"
	}

	if clientID != h.cfg.ClientID {
		writeOAuthError(w, http.StatusBadRequest, "invalid_client", "Unknown client_id")
		return
	}
	if responseType != "code" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_response_type", "Only 'code' response type is supported")
		return
	}

	h.renderForm(w, http.StatusOK, formData{
		ClientID:     clientID,
		RedirectURI:  q.Get("redirect_uri"),
		State:        q.Get("state"),
		ResponseType: responseType,
	})
}

func (h *Handler) authorizeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed form body")
		return
	}

	clientID := r.PostFormValue("client_id")
	redirectURI := r.PostFormValue("redirect_uri")
	state := r.PostFormValue("state")
	password := r.PostFormValue("password")

	if clientID != h.cfg.ClientID {
		writeOAuthError(w, http.StatusBadRequest, "invalid_client", "Unknown client_id")
		return
	}

	if !verifyPassword(password, h.cfg.AuthPassword) {
		h.logger.Warn("authorization rejected: wrong password", "client_id", clientID)
		h.renderForm(w, http.StatusUnauthorized, formData{
			ClientID:     clientID,
			RedirectURI:  redirectURI,
			State:        state,
			ResponseType: "code",
			Error:        "Invalid password. Please try again.",
		})
		return
	}

	code, err := h.codes.Issue(clientID, redirectURI)
	if err != nil {
		h.logger.Error("issuing authorization code", "error", err)
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "Failed to issue authorization code")
		return
	}

	params := url.Values{}
	params.Set("code", code)
	if state != "" {
		params.Set("state", state)
	}

	h.logger.Info("authorization code issued", "client_id", clientID)
	http.Redirect(w, r, redirectURI+"?"+params.Encode(), http.StatusFound)
}

// handleToken is the OAuth 2.0 Token Endpoint. It exchanges a valid
// authorization code plus client credentials for an access token.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.OAuthEnabled() {
		writeOAuthError(w, http.StatusNotImplemented, "oauth_not_configured", "OAuth is not configured on this server")
		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed form body")
		return
	}

	grantType := r.PostFormValue("grant_type")
	code := r.PostFormValue("code")
	redirectURI := r.PostFormValue("redirect_uri")
	clientID := r.PostFormValue("client_id")
	clientSecret := r.PostFormValue("client_secret")

	if grantType != "authorization_code" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Only 'authorization_code' grant type is supported")
		return
	}

	// Both checks always run so a wrong id and a wrong secret are
	// indistinguishable to the caller.
	idOK := secureCompare(clientID, h.cfg.ClientID)
	secretOK := secureCompare(clientSecret, h.cfg.ClientSecret)
	if !idOK || !secretOK {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Invalid client credentials")
		return
	}

	if !h.codes.Redeem(code, clientID, redirectURI) {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid or expired authorization code")
		return
	}

	token, expiresIn, err := h.tokens.Issue(clientID, nil)
	if err != nil {
		h.logger.Error("issuing access token", "error", err)
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "Failed to issue access token")
		return
	}

	h.logger.Info("access token issued", "client_id", clientID, "expires_in", expiresIn)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
	})
}

// handleMetadata publishes RFC 8414 authorization server metadata.
func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	baseURL := requestBaseURL(r)

	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                 baseURL,
		"authorization_endpoint": baseURL + "/oauth/authorize",
		"token_endpoint":         baseURL + "/oauth/token",
		"response_types_supported": []string{
			"code",
		},
		"grant_types_supported": []string{
			"authorization_code",
		},
		"token_endpoint_auth_methods_supported": []string{
			"client_secret_post",
		},
		"scopes_supported": []string{
			"full",
		},
	})
}

// requestBaseURL reconstructs the external base URL, honoring reverse proxy
// forwarding headers.
func requestBaseURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, data formData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.Execute(w, data); err != nil {
		h.logger.Warn("rendering authorization form", "error", err)
	}
}

// writeOAuthError writes a structured OAuth error body.
func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
