// ABOUTME: Operational HTTP endpoints: health probe, server info, and series debug listing
// ABOUTME: All three are exempt from bearer auth

package gateway

import (
	"encoding/json"
	"net/http"
)

// healthResponse is the body of the /health endpoint.
type healthResponse struct {
	Status        string `json:"status"`
	Server        string `json:"server"`
	Version       string `json:"version"`
	SonarrVersion string `json:"sonarr_version,omitempty"`
	Error         string `json:"error,omitempty"`
}

// handleHealth probes Sonarr and reports gateway health. Returns 503 when
// the upstream is unreachable.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := g.sonarr.SystemStatus(r.Context())
	if err != nil {
		g.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unhealthy",
			Server: ServerName,
			Error:  err.Error(),
		})
		return
	}

	version, _ := status["version"].(string)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Server:        ServerName,
		Version:       Version,
		SonarrVersion: version,
	})
}

// handleInfo reports server identity and MCP capabilities.
func (g *Gateway) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":            ServerName,
		"version":         Version,
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
	})
}

// handleDebugSeries lists series titles directly, bypassing MCP. Useful for
// verifying Sonarr connectivity with curl.
func (g *Gateway) handleDebugSeries(w http.ResponseWriter, r *http.Request) {
	series, err := g.sonarr.GetAllSeries(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	titles := make([]string, len(series))
	for i, s := range series {
		titles[i] = s.Title
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":  len(titles),
		"titles": titles,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
