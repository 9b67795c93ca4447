// ABOUTME: Package documentation for the Sonarr API client
// ABOUTME: Describes the client surface and upstream error handling

// Package sonarr implements a client for the Sonarr v3 REST API.
//
// The client authenticates with the X-Api-Key header and exposes the
// endpoints the gateway proxies: library and episode listing, series
// lookup and add/remove, calendar, queue, history, wanted/missing, and
// the command endpoint for triggering searches and refreshes.
//
// Endpoints whose documents the gateway projects into summaries decode
// into typed structs; passthrough endpoints (system status, quality
// profiles, root folders, tags, lookup) return raw maps so no upstream
// field is lost. Non-2xx responses surface as *APIError carrying the
// upstream status code and body.
package sonarr
