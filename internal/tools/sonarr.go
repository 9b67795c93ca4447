// ABOUTME: Sonarr tool set exposed over MCP.
// ABOUTME: Registration plus the system and configuration tools.

package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ZakiZtraki/mcp-sonarr/internal/sonarr"
)

// SonarrPack is the set of Sonarr tools backed by one API client.
type SonarrPack struct {
	client *sonarr.Client
	now    func() time.Time
}

// NewSonarrPack creates the Sonarr tool set.
func NewSonarrPack(client *sonarr.Client) *SonarrPack {
	return &SonarrPack{client: client, now: time.Now}
}

// Register adds every Sonarr tool to the registry.
func (p *SonarrPack) Register(r *Registry) error {
	all := []*Tool{
		// System
		{
			Name:        "sonarr_system_status",
			Description: "Get Sonarr system status including version, OS, and runtime information.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.systemStatus,
		},
		{
			Name:        "sonarr_health_check",
			Description: "Get Sonarr health check results showing any issues or warnings.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.healthCheck,
		},
		{
			Name:        "sonarr_get_statistics",
			Description: "Get library statistics: series and episode counts, disk usage, queue and missing totals.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.getStatistics,
		},
		{
			Name:        "sonarr_get_disk_space",
			Description: "Get disk space information for all root folders.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.getDiskSpace,
		},
		{
			Name:        "sonarr_get_root_folders",
			Description: "Get configured root folders where series are stored.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.getRootFolders,
		},
		{
			Name:        "sonarr_get_quality_profiles",
			Description: "Get available quality profiles for adding series.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.getQualityProfiles,
		},
		{
			Name:        "sonarr_get_tags",
			Description: "Get all configured tags.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.getTags,
		},
	}
	all = append(all, p.seriesTools()...)
	all = append(all, p.episodeTools()...)
	all = append(all, p.activityTools()...)
	all = append(all, p.commandTools()...)

	for _, t := range all {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func (p *SonarrPack) systemStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.SystemStatus(ctx)
}

func (p *SonarrPack) healthCheck(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.Health(ctx)
}

func (p *SonarrPack) getStatistics(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.GetStatistics(ctx)
}

func (p *SonarrPack) getDiskSpace(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.GetDiskSpace(ctx)
}

func (p *SonarrPack) getRootFolders(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.GetRootFolders(ctx)
}

func (p *SonarrPack) getQualityProfiles(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.GetQualityProfiles(ctx)
}

func (p *SonarrPack) getTags(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.client.GetTags(ctx)
}

// decodeArgs unmarshals tool arguments, treating an absent body as empty.
func decodeArgs(args json.RawMessage, out any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, out)
}
