// ABOUTME: Package documentation for the MCP transport layer
// ABOUTME: Describes the Streamable HTTP endpoint and session model

// Package mcp implements the MCP Streamable HTTP transport over the tool
// registry.
//
// The server exposes a single /mcp endpoint speaking JSON-RPC 2.0:
// initialize creates an in-memory session and returns its ID in the
// Mcp-Session-Id header, tools/list enumerates the registered tools, and
// tools/call dispatches into the registry. DELETE terminates a session.
// Sonarr upstream failures surface as in-band tool errors (isError: true)
// so assistants can read and react to them; transport-level problems map
// to JSON-RPC error responses.
//
// Authentication is not handled here. The gateway wraps the /mcp route in
// bearer middleware before requests ever reach this server.
package mcp
