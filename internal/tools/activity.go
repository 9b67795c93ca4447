// ABOUTME: Download activity tools: queue, history, and wanted/missing.
// ABOUTME: Pagination is delegated to Sonarr's own paged endpoints.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// QueueItem is the projected view of a download queue entry.
type QueueItem struct {
	ID                    int     `json:"id"`
	SeriesTitle           string  `json:"seriesTitle"`
	EpisodeTitle          string  `json:"episodeTitle"`
	SeasonNumber          int     `json:"seasonNumber"`
	EpisodeNumber         int     `json:"episodeNumber"`
	Quality               string  `json:"quality"`
	Size                  float64 `json:"size"`
	SizeLeft              float64 `json:"sizeleft"`
	Status                string  `json:"status"`
	TrackedDownloadStatus string  `json:"trackedDownloadStatus"`
	DownloadClient        string  `json:"downloadClient"`
}

// QueueResult is a page of the download queue.
type QueueResult struct {
	TotalRecords int         `json:"totalRecords"`
	Records      []QueueItem `json:"records"`
}

// HistoryItem is the projected view of a history entry.
type HistoryItem struct {
	ID            int    `json:"id"`
	SeriesTitle   string `json:"seriesTitle"`
	EpisodeTitle  string `json:"episodeTitle"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Date          string `json:"date"`
	EventType     string `json:"eventType"`
	Quality       string `json:"quality"`
}

// HistoryResult is a page of download history.
type HistoryResult struct {
	TotalRecords int           `json:"totalRecords"`
	Records      []HistoryItem `json:"records"`
}

// MissingItem is the projected view of a wanted/missing episode.
type MissingItem struct {
	ID            int    `json:"id"`
	SeriesTitle   string `json:"seriesTitle"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
}

// MissingResult is a page of wanted/missing episodes.
type MissingResult struct {
	TotalRecords int           `json:"totalRecords"`
	Records      []MissingItem `json:"records"`
}

// pageArgs are the shared paging arguments for activity tools.
type pageArgs struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (a *pageArgs) normalize() {
	if a.Page < 1 {
		a.Page = 1
	}
	if a.PageSize < 1 {
		a.PageSize = 20
	}
}

func pagingSchema() json.RawMessage {
	return objectSchema(map[string]any{
		"page":      map[string]any{"type": "integer", "description": "Page number (default: 1)"},
		"page_size": map[string]any{"type": "integer", "description": "Items per page (default: 20)"},
	})
}

func (p *SonarrPack) activityTools() []*Tool {
	return []*Tool{
		{
			Name:        "sonarr_get_queue",
			Description: "Get the current download queue.",
			InputSchema: pagingSchema(),
			Handler:     p.getQueue,
		},
		{
			Name:        "sonarr_delete_queue_item",
			Description: "Remove an item from the download queue.",
			InputSchema: objectSchema(map[string]any{
				"queue_id":  map[string]any{"type": "integer", "description": "Queue item ID to remove"},
				"blocklist": map[string]any{"type": "boolean", "description": "Add the release to blocklist (default: false)"},
			}, "queue_id"),
			Handler: p.deleteQueueItem,
		},
		{
			Name:        "sonarr_get_history",
			Description: "Get download history, newest first.",
			InputSchema: pagingSchema(),
			Handler:     p.getHistory,
		},
		{
			Name:        "sonarr_get_missing_episodes",
			Description: "Get wanted/missing episodes.",
			InputSchema: pagingSchema(),
			Handler:     p.getMissingEpisodes,
		},
	}
}

func (p *SonarrPack) getQueue(ctx context.Context, args json.RawMessage) (any, error) {
	var in pageArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	in.normalize()

	queue, err := p.client.GetQueue(ctx, in.Page, in.PageSize)
	if err != nil {
		return nil, err
	}

	result := QueueResult{
		TotalRecords: queue.TotalRecords,
		Records:      make([]QueueItem, len(queue.Records)),
	}
	for i, r := range queue.Records {
		result.Records[i] = QueueItem{
			ID:                    r.ID,
			SeriesTitle:           r.Series.Title,
			EpisodeTitle:          r.Episode.Title,
			SeasonNumber:          r.Episode.SeasonNumber,
			EpisodeNumber:         r.Episode.EpisodeNumber,
			Quality:               r.Quality.Quality.Name,
			Size:                  r.Size,
			SizeLeft:              r.SizeLeft,
			Status:                r.Status,
			TrackedDownloadStatus: r.TrackedDownloadStatus,
			DownloadClient:        r.DownloadClient,
		}
	}
	return result, nil
}

func (p *SonarrPack) deleteQueueItem(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		QueueID   int  `json:"queue_id"`
		Blocklist bool `json:"blocklist"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := p.client.DeleteQueueItem(ctx, in.QueueID, in.Blocklist); err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Queue item %d removed", in.QueueID), 0), nil
}

func (p *SonarrPack) getHistory(ctx context.Context, args json.RawMessage) (any, error) {
	var in pageArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	in.normalize()

	history, err := p.client.GetHistory(ctx, in.Page, in.PageSize)
	if err != nil {
		return nil, err
	}

	result := HistoryResult{
		TotalRecords: history.TotalRecords,
		Records:      make([]HistoryItem, len(history.Records)),
	}
	for i, r := range history.Records {
		result.Records[i] = HistoryItem{
			ID:            r.ID,
			SeriesTitle:   r.Series.Title,
			EpisodeTitle:  r.Episode.Title,
			SeasonNumber:  r.Episode.SeasonNumber,
			EpisodeNumber: r.Episode.EpisodeNumber,
			Date:          r.Date,
			EventType:     r.EventType,
			Quality:       r.Quality.Quality.Name,
		}
	}
	return result, nil
}

func (p *SonarrPack) getMissingEpisodes(ctx context.Context, args json.RawMessage) (any, error) {
	var in pageArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	in.normalize()

	missing, err := p.client.GetWantedMissing(ctx, in.Page, in.PageSize)
	if err != nil {
		return nil, err
	}

	result := MissingResult{
		TotalRecords: missing.TotalRecords,
		Records:      make([]MissingItem, len(missing.Records)),
	}
	for i, r := range missing.Records {
		result.Records[i] = MissingItem{
			ID:            r.ID,
			SeriesTitle:   r.Series.Title,
			SeasonNumber:  r.SeasonNumber,
			EpisodeNumber: r.EpisodeNumber,
			Title:         r.Title,
			AirDate:       r.AirDate,
		}
	}
	return result, nil
}
