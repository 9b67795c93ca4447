// ABOUTME: Tests for the MCP Streamable HTTP server.
// ABOUTME: Covers the handshake, session lifecycle, tool listing, and call dispatch.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakiZtraki/mcp-sonarr/internal/sonarr"
	"github.com/ZakiZtraki/mcp-sonarr/internal/tools"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := tools.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, reg.Register(&tools.Tool{
		Name:        "echo",
		Description: "echoes its arguments back",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(_ context.Context, args json.RawMessage) (any, error) {
			return map[string]any{"echoed": json.RawMessage(args)}, nil
		},
	}))
	require.NoError(t, reg.Register(&tools.Tool{
		Name:        "failing",
		Description: "always fails",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("internal failure")
		},
	}))
	require.NoError(t, reg.Register(&tools.Tool{
		Name:        "upstream_error",
		Description: "fails like sonarr",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return nil, &sonarr.APIError{StatusCode: 503, Body: "maintenance"}
		},
	}))

	srv, err := NewServer(Config{
		Registry:   reg,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		ServerName: "mcp-sonarr",
		Version:    "1.0.0",
	})
	require.NoError(t, err)
	return srv
}

func postRPC(t *testing.T, srv *Server, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	rec := httptest.NewRecorder()
	srv.handleMCP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONRPCResponse {
	t.Helper()
	var resp JSONRPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func initialize(t *testing.T, srv *Server) string {
	t.Helper()
	rec := postRPC(t, srv, "", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)
	return sessionID
}

func TestInitialize(t *testing.T) {
	srv := newTestServer(t)

	rec := postRPC(t, srv, "", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Mcp-Session-Id"))

	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]any)
	assert.Equal(t, latestProtocolVersion, result["protocolVersion"])
	info := result["serverInfo"].(map[string]any)
	assert.Equal(t, "mcp-sonarr", info["name"])
	assert.Equal(t, "1.0.0", info["version"])
}

func TestToolsList(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result ListToolsResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Result.Tools, 3)
	// Sorted by name
	assert.Equal(t, "echo", resp.Result.Tools[0].Name)
	assert.Equal(t, "failing", resp.Result.Tools[1].Name)
	assert.Equal(t, "upstream_error", resp.Result.Tools[2].Name)
	assert.NotEmpty(t, resp.Result.Tools[0].InputSchema)
}

func TestToolsCall(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"x":42}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result CallToolResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Result.Content, 1)
	assert.False(t, resp.Result.IsError)
	assert.Equal(t, "text", resp.Result.Content[0].Type)
	assert.JSONEq(t, `{"echoed":{"x":42}}`, resp.Result.Content[0].Text)
}

func TestToolsCall_UnknownTool(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCInvalidParams, resp.Error.Code)
}

func TestToolsCall_MissingName(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{}}`)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCInvalidParams, resp.Error.Code)
}

func TestToolsCall_HandlerFailure(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID,
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"failing"}}`)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCInternalError, resp.Error.Code)
}

func TestToolsCall_UpstreamErrorIsInBand(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID,
		`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"upstream_error"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result CallToolResult `json:"result"`
		Error  *JSONRPCError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	assert.True(t, resp.Result.IsError)
	require.Len(t, resp.Result.Content, 1)
	assert.Contains(t, resp.Result.Content[0].Text, "503")
	assert.Contains(t, resp.Result.Content[0].Text, "maintenance")
}

func TestSessionValidation(t *testing.T) {
	srv := newTestServer(t)

	// No session header on a non-initialize request
	rec := postRPC(t, srv, "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown session
	rec = postRPC(t, srv, "not-a-session", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationsAccepted(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProtocolVersionHeader(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Mcp-Session-Id", sessionID)
	req.Header.Set("Mcp-Protocol-Version", "1999-01-01")
	rec := httptest.NewRecorder()
	srv.handleMCP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Mcp-Session-Id", sessionID)
	req.Header.Set("Mcp-Protocol-Version", "2024-11-05")
	rec = httptest.NewRecorder()
	srv.handleMCP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMalformedRequests(t *testing.T) {
	srv := newTestServer(t)

	rec := postRPC(t, srv, "", `{not json`)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCParseError, resp.Error.Code)

	rec = postRPC(t, srv, "", `{"jsonrpc":"1.0","id":1,"method":"initialize"}`)
	resp = decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCInvalidRequest, resp.Error.Code)
}

func TestMethodNotFound(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	rec := postRPC(t, srv, sessionID, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCMethodNotFound, resp.Error.Code)
}

func TestBodySizeLimit(t *testing.T) {
	srv := newTestServer(t)

	big := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"pad":"%s"}}`,
		strings.Repeat("a", MaxRequestBodySize))
	rec := postRPC(t, srv, "", big)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, JSONRPCInvalidRequest, resp.Error.Code)
	assert.Equal(t, "request body too large", resp.Error.Message)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	sessionID := initialize(t, srv)

	// DELETE terminates the session
	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Header.Set("Mcp-Session-Id", sessionID)
	rec := httptest.NewRecorder()
	srv.handleMCP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Session is gone
	rec2 := postRPC(t, srv, sessionID, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, rec2.Code)

	// Deleting again is a 404
	rec = httptest.NewRecorder()
	srv.handleMCP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// DELETE without the header is a 400
	req = httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	rec = httptest.NewRecorder()
	srv.handleMCP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnsupportedMethods(t *testing.T) {
	srv := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch} {
		req := httptest.NewRequest(method, "/mcp", bytes.NewReader(nil))
		rec := httptest.NewRecorder()
		srv.handleMCP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestNewServer_RequiresRegistry(t *testing.T) {
	_, err := NewServer(Config{})
	require.Error(t, err)
}
