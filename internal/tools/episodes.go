// ABOUTME: Episode and calendar tools.
// ABOUTME: Projects Sonarr episode documents into compact summaries.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// EpisodeSummary is the projected view of an episode.
type EpisodeSummary struct {
	ID            int    `json:"id"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
	HasFile       bool   `json:"hasFile"`
	Monitored     bool   `json:"monitored"`
}

// CalendarEntry is one upcoming or recent episode airing.
type CalendarEntry struct {
	SeriesTitle   string `json:"seriesTitle"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
	HasFile       bool   `json:"hasFile"`
}

func (p *SonarrPack) episodeTools() []*Tool {
	return []*Tool{
		{
			Name:        "sonarr_get_episodes",
			Description: "Get all episodes for a specific series.",
			InputSchema: objectSchema(map[string]any{
				"series_id": map[string]any{"type": "integer", "description": "The Sonarr series ID"},
			}, "series_id"),
			Handler: p.getEpisodes,
		},
		{
			Name:        "sonarr_get_episode_files",
			Description: "Get downloaded episode files for a series.",
			InputSchema: objectSchema(map[string]any{
				"series_id": map[string]any{"type": "integer", "description": "The Sonarr series ID"},
			}, "series_id"),
			Handler: p.getEpisodeFiles,
		},
		{
			Name:        "sonarr_get_calendar",
			Description: "Get upcoming episodes from the calendar.",
			InputSchema: objectSchema(map[string]any{
				"days":              map[string]any{"type": "integer", "description": "Number of days to look ahead (default: 7)"},
				"include_past_days": map[string]any{"type": "integer", "description": "Number of past days to include (default: 0)"},
			}),
			Handler: p.getCalendar,
		},
	}
}

func (p *SonarrPack) getEpisodes(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID int `json:"series_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	episodes, err := p.client.GetEpisodes(ctx, in.SeriesID)
	if err != nil {
		return nil, err
	}

	out := make([]EpisodeSummary, len(episodes))
	for i, e := range episodes {
		out[i] = EpisodeSummary{
			ID:            e.ID,
			SeasonNumber:  e.SeasonNumber,
			EpisodeNumber: e.EpisodeNumber,
			Title:         e.Title,
			AirDate:       e.AirDate,
			HasFile:       e.HasFile,
			Monitored:     e.Monitored,
		}
	}
	return out, nil
}

func (p *SonarrPack) getEpisodeFiles(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID int `json:"series_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return p.client.GetEpisodeFiles(ctx, in.SeriesID)
}

func (p *SonarrPack) getCalendar(ctx context.Context, args json.RawMessage) (any, error) {
	in := struct {
		Days            int `json:"days"`
		IncludePastDays int `json:"include_past_days"`
	}{Days: 7}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	now := p.now()
	start := now.AddDate(0, 0, -in.IncludePastDays).Format("2006-01-02")
	end := now.AddDate(0, 0, in.Days).Format("2006-01-02")

	calendar, err := p.client.GetCalendar(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]CalendarEntry, len(calendar))
	for i, e := range calendar {
		entry := CalendarEntry{
			SeasonNumber:  e.SeasonNumber,
			EpisodeNumber: e.EpisodeNumber,
			Title:         e.Title,
			AirDate:       e.AirDateUTC,
			HasFile:       e.HasFile,
		}
		if e.Series != nil {
			entry.SeriesTitle = e.Series.Title
		}
		out[i] = entry
	}
	return out, nil
}
