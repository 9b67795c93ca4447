// ABOUTME: Series library tools: listing, filtering, lookup, add, and delete.
// ABOUTME: Filtering, sorting, and pagination happen gateway-side over the full library.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ZakiZtraki/mcp-sonarr/internal/sonarr"
)

const maxPageSize = 500

// SeriesSummary is the projected view of a library series returned by the
// series listing tools.
type SeriesSummary struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Year             int     `json:"year"`
	Status           string  `json:"status"`
	Monitored        bool    `json:"monitored"`
	Seasons          int     `json:"seasons"`
	EpisodeCount     int     `json:"episodeCount"`
	EpisodeFileCount int     `json:"episodeFileCount"`
	PercentComplete  float64 `json:"percentComplete"`
	SizeOnDisk       int64   `json:"sizeOnDisk"`
	Added            string  `json:"added"`
}

// SeriesListResult wraps the full library listing.
type SeriesListResult struct {
	Items []SeriesSummary `json:"items"`
	Total int             `json:"total"`
}

// ListSeriesFilters echoes back which filters a listing applied.
type ListSeriesFilters struct {
	Status        *string `json:"status"`
	Monitored     *bool   `json:"monitored"`
	TitleContains *string `json:"title_contains"`
}

// ListSeriesResult is a filtered, sorted, paginated library listing.
type ListSeriesResult struct {
	Items      []SeriesSummary   `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Filters    ListSeriesFilters `json:"filters_applied"`
}

// LookupResult is the projected view of a TVDB/TMDB search result.
type LookupResult struct {
	TVDBID   int    `json:"tvdbId"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Overview string `json:"overview"`
	Status   string `json:"status"`
	Network  string `json:"network"`
	Seasons  int    `json:"seasons"`
}

func summarize(s sonarr.Series) SeriesSummary {
	return SeriesSummary{
		ID:               s.ID,
		Title:            s.Title,
		Year:             s.Year,
		Status:           s.Status,
		Monitored:        s.Monitored,
		Seasons:          len(s.Seasons),
		EpisodeCount:     s.Statistics.EpisodeCount,
		EpisodeFileCount: s.Statistics.EpisodeFileCount,
		PercentComplete:  s.Statistics.PercentOfEpisodes,
		SizeOnDisk:       s.Statistics.SizeOnDisk,
		Added:            s.Added,
	}
}

func (p *SonarrPack) seriesTools() []*Tool {
	return []*Tool{
		{
			Name:        "sonarr_get_all_series",
			Description: "Get all series in your Sonarr library. Returns an object with 'items' array containing all series and 'total' count.",
			InputSchema: objectSchema(map[string]any{}),
			Handler:     p.getAllSeries,
		},
		{
			Name:        "sonarr_list_series",
			Description: "List series with filtering, sorting, and pagination. Returns filtered results with metadata.",
			InputSchema: objectSchema(map[string]any{
				"status": map[string]any{
					"type":        "string",
					"description": "Filter by status: 'ended', 'continuing', 'upcoming', or 'deleted'",
				},
				"monitored": map[string]any{
					"type":        "boolean",
					"description": "Filter by monitored status",
				},
				"title_contains": map[string]any{
					"type":        "string",
					"description": "Filter by title containing this text (case-insensitive)",
				},
				"sort_by": map[string]any{
					"type":        "string",
					"description": "Sort field: 'title', 'year', 'added', 'sizeOnDisk' (default: title)",
				},
				"sort_order": map[string]any{
					"type":        "string",
					"description": "Sort order: 'asc' or 'desc' (default: asc)",
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, 1-indexed (default: 1)",
				},
				"page_size": map[string]any{
					"type":        "integer",
					"description": "Items per page (default: 50, max: 500)",
				},
			}),
			Handler: p.listSeries,
		},
		{
			Name:        "sonarr_get_series",
			Description: "Get detailed information about a specific series by its ID.",
			InputSchema: objectSchema(map[string]any{
				"series_id": map[string]any{"type": "integer", "description": "The Sonarr series ID"},
			}, "series_id"),
			Handler: p.getSeries,
		},
		{
			Name:        "sonarr_search_new_series",
			Description: "Search for new series to add (searches TVDB/TMDB). Use this to find series before adding them.",
			InputSchema: objectSchema(map[string]any{
				"term": map[string]any{
					"type":        "string",
					"description": "Search term (series name or TVDB ID with 'tvdb:' prefix)",
				},
			}, "term"),
			Handler: p.searchNewSeries,
		},
		{
			Name:        "sonarr_add_series",
			Description: "Add a new series to Sonarr. First use sonarr_search_new_series to find the TVDB ID.",
			InputSchema: objectSchema(map[string]any{
				"tvdb_id":            map[string]any{"type": "integer", "description": "TVDB ID of the series"},
				"quality_profile_id": map[string]any{"type": "integer", "description": "Quality profile ID"},
				"root_folder_path":   map[string]any{"type": "string", "description": "Root folder path"},
				"monitored":          map[string]any{"type": "boolean", "description": "Monitor the series for new episodes (default: true)"},
				"search_for_missing": map[string]any{"type": "boolean", "description": "Search for missing episodes after adding (default: true)"},
			}, "tvdb_id", "quality_profile_id", "root_folder_path"),
			Handler: p.addSeries,
		},
		{
			Name:        "sonarr_delete_series",
			Description: "Delete a series from Sonarr.",
			InputSchema: objectSchema(map[string]any{
				"series_id":    map[string]any{"type": "integer", "description": "The Sonarr series ID to delete"},
				"delete_files": map[string]any{"type": "boolean", "description": "Also delete the files on disk (default: false)"},
			}, "series_id"),
			Handler: p.deleteSeries,
		},
	}
}

func (p *SonarrPack) getAllSeries(ctx context.Context, _ json.RawMessage) (any, error) {
	series, err := p.client.GetAllSeries(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]SeriesSummary, len(series))
	for i, s := range series {
		items[i] = summarize(s)
	}
	return SeriesListResult{Items: items, Total: len(items)}, nil
}

func (p *SonarrPack) listSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Status        *string `json:"status"`
		Monitored     *bool   `json:"monitored"`
		TitleContains *string `json:"title_contains"`
		SortBy        string  `json:"sort_by"`
		SortOrder     string  `json:"sort_order"`
		Page          int     `json:"page"`
		PageSize      int     `json:"page_size"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	series, err := p.client.GetAllSeries(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]SeriesSummary, 0, len(series))
	for _, s := range series {
		item := summarize(s)
		if in.Status != nil && *in.Status != "" && item.Status != *in.Status {
			continue
		}
		if in.Monitored != nil && item.Monitored != *in.Monitored {
			continue
		}
		if in.TitleContains != nil && *in.TitleContains != "" &&
			!strings.Contains(strings.ToLower(item.Title), strings.ToLower(*in.TitleContains)) {
			continue
		}
		filtered = append(filtered, item)
	}

	desc := in.SortOrder == "desc"
	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = "title"
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if desc {
			a, b = b, a
		}
		switch sortBy {
		case "year":
			return a.Year < b.Year
		case "added":
			return a.Added < b.Added
		case "sizeOnDisk":
			return a.SizeOnDisk < b.SizeOnDisk
		default:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	})

	page := in.Page
	if page < 1 {
		page = 1
	}
	pageSize := in.PageSize
	if pageSize == 0 {
		pageSize = 50
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total := len(filtered)
	totalPages := 1
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return ListSeriesResult{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Filters: ListSeriesFilters{
			Status:        in.Status,
			Monitored:     in.Monitored,
			TitleContains: in.TitleContains,
		},
	}, nil
}

func (p *SonarrPack) getSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID int `json:"series_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return p.client.GetSeriesRaw(ctx, in.SeriesID)
}

func (p *SonarrPack) searchNewSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Term string `json:"term"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	results, err := p.client.Lookup(ctx, in.Term)
	if err != nil {
		return nil, err
	}

	out := make([]LookupResult, len(results))
	for i, r := range results {
		overview, _ := r["overview"].(string)
		if len(overview) > 200 {
			overview = overview[:200] + "..."
		}
		seasons, _ := r["seasons"].([]any)
		out[i] = LookupResult{
			TVDBID:   intField(r, "tvdbId"),
			Title:    stringField(r, "title"),
			Year:     intField(r, "year"),
			Overview: overview,
			Status:   stringField(r, "status"),
			Network:  stringField(r, "network"),
			Seasons:  len(seasons),
		}
	}
	return out, nil
}

func (p *SonarrPack) addSeries(ctx context.Context, args json.RawMessage) (any, error) {
	in := struct {
		TVDBID           int    `json:"tvdb_id"`
		QualityProfileID int    `json:"quality_profile_id"`
		RootFolderPath   string `json:"root_folder_path"`
		Monitored        *bool  `json:"monitored"`
		SearchForMissing *bool  `json:"search_for_missing"`
	}{}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	monitored := true
	if in.Monitored != nil {
		monitored = *in.Monitored
	}
	search := true
	if in.SearchForMissing != nil {
		search = *in.SearchForMissing
	}

	return p.client.AddSeries(ctx, sonarr.AddSeriesInput{
		TVDBID:           in.TVDBID,
		QualityProfileID: in.QualityProfileID,
		RootFolderPath:   in.RootFolderPath,
		Monitored:        monitored,
		SeasonFolder:     true,
		SearchForMissing: search,
	})
}

func (p *SonarrPack) deleteSeries(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		SeriesID    int  `json:"series_id"`
		DeleteFiles bool `json:"delete_files"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := p.client.DeleteSeries(ctx, in.SeriesID, in.DeleteFiles); err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Series %d deleted", in.SeriesID), 0), nil
}

func intField(m map[string]any, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
