// ABOUTME: Package documentation for the MCP tool layer
// ABOUTME: Describes the registry and the Sonarr tool set

// Package tools defines the MCP tools the gateway exposes and the registry
// that dispatches them.
//
// The Registry holds in-process tools keyed by name. SonarrPack registers
// the full Sonarr tool set on it: system and configuration queries, series
// library management, episode and calendar lookups, download activity, and
// command triggers. Tools that return large upstream documents project them
// into compact summaries so results stay digestible for AI assistants.
package tools
