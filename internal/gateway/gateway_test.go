// ABOUTME: Tests for the gateway wiring and operational endpoints.
// ABOUTME: Runs the full handler stack against a fake Sonarr upstream.

package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakiZtraki/mcp-sonarr/internal/config"
)

func newFakeSonarr(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/system/status", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"4.0.10"}`))
	})
	mux.HandleFunc("/api/v3/series", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Severance"},{"id":2,"title":"Andor"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(sonarrURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Sonarr: config.SonarrConfig{URL: sonarrURL, APIKey: "k", Timeout: 5 * time.Second},
		OAuth: config.OAuthConfig{
			SigningSecret: "gateway-test-secret",
			FallbackToken: "static-token",
		},
	}
}

func newTestGateway(t *testing.T, cfg *config.Config) *Gateway {
	t.Helper()
	gw, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return gw
}

func TestNew_RegistersToolSet(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	gw := newTestGateway(t, testConfig(upstream.URL))

	assert.Equal(t, 25, gw.Registry().Count())
	assert.NotNil(t, gw.Registry().Get("sonarr_list_series"))
}

func TestHealth(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	gw := newTestGateway(t, testConfig(upstream.URL))

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, ServerName, body["server"])
	assert.Equal(t, "4.0.10", body["sonarr_version"])
}

func TestHealth_UpstreamDown(t *testing.T) {
	upstream := newFakeSonarr(t, false)
	gw := newTestGateway(t, testConfig(upstream.URL))

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestInfo(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	gw := newTestGateway(t, testConfig(upstream.URL))

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ServerName, body["name"])
	assert.Contains(t, body, "capabilities")
}

func TestDebugSeries(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	gw := newTestGateway(t, testConfig(upstream.URL))

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/series", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total  int      `json:"total"`
		Titles []string `json:"titles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, []string{"Severance", "Andor"}, body.Titles)
}

func TestMCP_RequiresBearer(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	gw := newTestGateway(t, testConfig(upstream.URL))

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMCP_FullRoundTrip(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	gw := newTestGateway(t, testConfig(upstream.URL))

	// initialize with the static bearer token
	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	req.Header.Set("Authorization", "Bearer static-token")
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)

	// tools/list through the authenticated stack
	req = httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	req.Header.Set("Authorization", "Bearer static-token")
	req.Header.Set("Mcp-Session-Id", sessionID)
	rec = httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Result.Tools, 25)

	// tools/call hits the fake upstream end to end
	req = httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"sonarr_get_all_series"}}`))
	req.Header.Set("Authorization", "Bearer static-token")
	req.Header.Set("Mcp-Session-Id", sessionID)
	rec = httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var call struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &call))
	require.Len(t, call.Result.Content, 1)
	assert.False(t, call.Result.IsError)
	assert.Contains(t, call.Result.Content[0].Text, "Severance")
}

func TestOAuthRoutesMounted(t *testing.T) {
	upstream := newFakeSonarr(t, true)
	cfg := testConfig(upstream.URL)
	cfg.OAuth.ClientID = "abc"
	cfg.OAuth.ClientSecret = "s3cr3t"
	cfg.OAuth.AuthPassword = "hunter2"
	gw := newTestGateway(t, cfg)

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/.well-known/oauth-authorization-server", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Contains(t, meta["authorization_endpoint"], "/oauth/authorize")
}
