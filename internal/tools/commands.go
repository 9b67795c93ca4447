// ABOUTME: Command tools that trigger Sonarr background jobs.
// ABOUTME: Searches, metadata refreshes, disk rescans, and RSS sync.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// CommandResult reports a queued Sonarr command back to the caller.
type CommandResult struct {
	Success   bool   `json:"success"`
	CommandID int    `json:"commandId,omitempty"`
	Message   string `json:"message"`
}

func successResult(message string, commandID int) CommandResult {
	return CommandResult{Success: true, CommandID: commandID, Message: message}
}

func (p *SonarrPack) commandTools() []*Tool {
	return []*Tool{
		{
			Name:        "sonarr_search_series",
			Description: "Trigger a search for all missing episodes of a series.",
			InputSchema: objectSchema(map[string]any{
				"series_id": map[string]any{"type": "integer", "description": "The Sonarr series ID to search"},
			}, "series_id"),
			Handler: p.searchSeries,
		},
		{
			Name:        "sonarr_search_season",
			Description: "Trigger a search for all episodes of a specific season.",
			InputSchema: objectSchema(map[string]any{
				"series_id":     map[string]any{"type": "integer", "description": "The Sonarr series ID"},
				"season_number": map[string]any{"type": "integer", "description": "Season number to search"},
			}, "series_id", "season_number"),
			Handler: p.searchSeason,
		},
		{
			Name:        "sonarr_refresh_series",
			Description: "Refresh series information from TVDB/TMDB.",
			InputSchema: objectSchema(map[string]any{
				"series_id": map[string]any{"type": "integer", "description": "Series ID to refresh (omit to refresh all)"},
			}),
			Handler: p.refreshSeries,
		},
		{
			Name:        "sonarr_rescan_series",
			Description: "Rescan disk for series files.",
			InputSchema: objectSchema(map[string]any{
				"series_id": map[string]any{"type": "integer", "description": "Series ID to rescan (omit to rescan all)"},
			}),
			Handler: p.rescanSeries,
		},
		{
			Name:        "sonarr_rss_sync",
			Description: "Trigger an RSS sync to check indexers for new releases.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.rssSync,
		},
	}
}

func (p *SonarrPack) searchSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID int `json:"series_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	cmd, err := p.client.SearchSeriesEpisodes(ctx, in.SeriesID)
	if err != nil {
		return nil, err
	}
	return successResult("Search initiated", cmd.ID), nil
}

func (p *SonarrPack) searchSeason(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID     int `json:"series_id"`
		SeasonNumber int `json:"season_number"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	cmd, err := p.client.SearchSeason(ctx, in.SeriesID, in.SeasonNumber)
	if err != nil {
		return nil, err
	}
	return successResult("Search initiated", cmd.ID), nil
}

func (p *SonarrPack) refreshSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID int `json:"series_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	cmd, err := p.client.RefreshSeries(ctx, in.SeriesID)
	if err != nil {
		return nil, err
	}
	return successResult("Refresh initiated", cmd.ID), nil
}

func (p *SonarrPack) rescanSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID int `json:"series_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	cmd, err := p.client.RescanSeries(ctx, in.SeriesID)
	if err != nil {
		return nil, err
	}
	return successResult("Rescan initiated", cmd.ID), nil
}

func (p *SonarrPack) rssSync(ctx context.Context, _ json.RawMessage) (any, error) {
	cmd, err := p.client.RSSSync(ctx)
	if err != nil {
		return nil, err
	}
	return successResult("RSS sync initiated", cmd.ID), nil
}
