// ABOUTME: HTTP client for the Sonarr v3 API
// ABOUTME: Handles authentication, JSON decoding, and typed upstream errors

package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the Sonarr connection settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// APIError is a non-2xx response from Sonarr.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sonarr: upstream returned %d: %s", e.StatusCode, e.Body)
}

// SeriesStatistics is the statistics block Sonarr attaches to a series.
type SeriesStatistics struct {
	EpisodeCount      int     `json:"episodeCount"`
	EpisodeFileCount  int     `json:"episodeFileCount"`
	TotalEpisodeCount int     `json:"totalEpisodeCount"`
	PercentOfEpisodes float64 `json:"percentOfEpisodes"`
	SizeOnDisk        int64   `json:"sizeOnDisk"`
}

// Series is a series in the Sonarr library. Only the fields the gateway
// projects are decoded; the raw document is available via GetSeriesRaw.
type Series struct {
	ID         int               `json:"id"`
	Title      string            `json:"title"`
	Year       int               `json:"year"`
	Status     string            `json:"status"`
	Monitored  bool              `json:"monitored"`
	Added      string            `json:"added"`
	Seasons    []json.RawMessage `json:"seasons"`
	Statistics SeriesStatistics  `json:"statistics"`
}

// Episode is an episode of a series.
type Episode struct {
	ID            int    `json:"id"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
	AirDateUTC    string `json:"airDateUtc"`
	HasFile       bool   `json:"hasFile"`
	Monitored     bool   `json:"monitored"`
	Series        *struct {
		Title string `json:"title"`
	} `json:"series,omitempty"`
}

// DiskSpace describes one root folder's disk usage.
type DiskSpace struct {
	Path       string `json:"path"`
	FreeSpace  int64  `json:"freeSpace"`
	TotalSpace int64  `json:"totalSpace"`
}

// quality is the nested quality descriptor on queue and history records.
type quality struct {
	Quality struct {
		Name string `json:"name"`
	} `json:"quality"`
}

// QueueRecord is one item in the download queue.
type QueueRecord struct {
	ID     int `json:"id"`
	Series struct {
		Title string `json:"title"`
	} `json:"series"`
	Episode struct {
		Title         string `json:"title"`
		SeasonNumber  int    `json:"seasonNumber"`
		EpisodeNumber int    `json:"episodeNumber"`
	} `json:"episode"`
	Quality               quality `json:"quality"`
	Size                  float64 `json:"size"`
	SizeLeft              float64 `json:"sizeleft"`
	Status                string  `json:"status"`
	TrackedDownloadStatus string  `json:"trackedDownloadStatus"`
	DownloadClient        string  `json:"downloadClient"`
}

// QueuePage is a page of the download queue.
type QueuePage struct {
	TotalRecords int           `json:"totalRecords"`
	Records      []QueueRecord `json:"records"`
}

// HistoryRecord is one download history entry.
type HistoryRecord struct {
	ID     int `json:"id"`
	Series struct {
		Title string `json:"title"`
	} `json:"series"`
	Episode struct {
		Title         string `json:"title"`
		SeasonNumber  int    `json:"seasonNumber"`
		EpisodeNumber int    `json:"episodeNumber"`
	} `json:"episode"`
	Date      string  `json:"date"`
	EventType string  `json:"eventType"`
	Quality   quality `json:"quality"`
}

// HistoryPage is a page of download history.
type HistoryPage struct {
	TotalRecords int             `json:"totalRecords"`
	Records      []HistoryRecord `json:"records"`
}

// WantedRecord is one wanted/missing episode.
type WantedRecord struct {
	ID     int `json:"id"`
	Series struct {
		Title string `json:"title"`
	} `json:"series"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
}

// WantedPage is a page of wanted/missing episodes.
type WantedPage struct {
	TotalRecords int            `json:"totalRecords"`
	Records      []WantedRecord `json:"records"`
}

// Command is Sonarr's response to a queued command.
type Command struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Client is a client for the Sonarr v3 API. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Sonarr client from the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// request performs one API call. A nil out skips response decoding.
func (c *Client) request(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	u := c.baseURL + "/api/v3/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling sonarr: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding sonarr response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	return c.request(ctx, http.MethodGet, endpoint, params, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.request(ctx, http.MethodPost, endpoint, nil, body, out)
}

// System

// SystemStatus returns Sonarr's version, OS, and runtime information.
func (c *Client) SystemStatus(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.get(ctx, "system/status", nil, &out)
	return out, err
}

// Health returns Sonarr's health check results.
func (c *Client) Health(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "health", nil, &out)
	return out, err
}

// GetDiskSpace returns disk usage for all root folders.
func (c *Client) GetDiskSpace(ctx context.Context) ([]DiskSpace, error) {
	var out []DiskSpace
	err := c.get(ctx, "diskspace", nil, &out)
	return out, err
}

// GetRootFolders returns the configured root folders.
func (c *Client) GetRootFolders(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "rootfolder", nil, &out)
	return out, err
}

// GetQualityProfiles returns the available quality profiles.
func (c *Client) GetQualityProfiles(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "qualityprofile", nil, &out)
	return out, err
}

// GetTags returns all configured tags.
func (c *Client) GetTags(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "tag", nil, &out)
	return out, err
}

// Series

// GetAllSeries returns every series in the library.
func (c *Client) GetAllSeries(ctx context.Context) ([]Series, error) {
	var out []Series
	err := c.get(ctx, "series", nil, &out)
	return out, err
}

// GetSeriesRaw returns the full Sonarr document for one series.
func (c *Client) GetSeriesRaw(ctx context.Context, seriesID int) (map[string]any, error) {
	var out map[string]any
	err := c.get(ctx, "series/"+strconv.Itoa(seriesID), nil, &out)
	return out, err
}

// Lookup searches TVDB/TMDB for series to add. Returns raw documents so a
// chosen result can be posted back unchanged by AddSeries.
func (c *Client) Lookup(ctx context.Context, term string) ([]map[string]any, error) {
	params := url.Values{"term": {term}}
	var out []map[string]any
	err := c.get(ctx, "series/lookup", params, &out)
	return out, err
}

// AddSeriesInput are the options for adding a series to the library.
type AddSeriesInput struct {
	TVDBID           int
	QualityProfileID int
	RootFolderPath   string
	Monitored        bool
	SeasonFolder     bool
	SearchForMissing bool
	Tags             []int
}

// AddSeries looks up the series by TVDB ID and adds it to the library.
func (c *Client) AddSeries(ctx context.Context, in AddSeriesInput) (map[string]any, error) {
	results, err := c.Lookup(ctx, "tvdb:"+strconv.Itoa(in.TVDBID))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("sonarr: series with TVDB ID %d not found", in.TVDBID)
	}

	doc := results[0]
	tags := in.Tags
	if tags == nil {
		tags = []int{}
	}
	doc["qualityProfileId"] = in.QualityProfileID
	doc["rootFolderPath"] = in.RootFolderPath
	doc["monitored"] = in.Monitored
	doc["seasonFolder"] = in.SeasonFolder
	doc["tags"] = tags
	doc["addOptions"] = map[string]any{
		"searchForMissingEpisodes": in.SearchForMissing,
	}

	var out map[string]any
	err = c.post(ctx, "series", doc, &out)
	return out, err
}

// DeleteSeries removes a series from the library, optionally deleting files.
func (c *Client) DeleteSeries(ctx context.Context, seriesID int, deleteFiles bool) error {
	params := url.Values{
		"deleteFiles":            {strconv.FormatBool(deleteFiles)},
		"addImportListExclusion": {"false"},
	}
	return c.request(ctx, http.MethodDelete, "series/"+strconv.Itoa(seriesID), params, nil, nil)
}

// Episodes

// GetEpisodes returns all episodes for a series.
func (c *Client) GetEpisodes(ctx context.Context, seriesID int) ([]Episode, error) {
	params := url.Values{"seriesId": {strconv.Itoa(seriesID)}}
	var out []Episode
	err := c.get(ctx, "episode", params, &out)
	return out, err
}

// GetEpisodeFiles returns the downloaded episode files for a series.
func (c *Client) GetEpisodeFiles(ctx context.Context, seriesID int) ([]map[string]any, error) {
	params := url.Values{"seriesId": {strconv.Itoa(seriesID)}}
	var out []map[string]any
	err := c.get(ctx, "episodefile", params, &out)
	return out, err
}

// Calendar

// GetCalendar returns episodes airing between the given dates (YYYY-MM-DD).
func (c *Client) GetCalendar(ctx context.Context, startDate, endDate string) ([]Episode, error) {
	params := url.Values{
		"start":              {startDate},
		"end":                {endDate},
		"includeSeries":      {"true"},
		"includeEpisodeFile": {"false"},
	}
	var out []Episode
	err := c.get(ctx, "calendar", params, &out)
	return out, err
}

// Queue

// GetQueue returns a page of the download queue.
func (c *Client) GetQueue(ctx context.Context, page, pageSize int) (*QueuePage, error) {
	params := url.Values{
		"page":           {strconv.Itoa(page)},
		"pageSize":       {strconv.Itoa(pageSize)},
		"includeSeries":  {"true"},
		"includeEpisode": {"true"},
	}
	var out QueuePage
	err := c.get(ctx, "queue", params, &out)
	return &out, err
}

// DeleteQueueItem removes an item from the download queue.
func (c *Client) DeleteQueueItem(ctx context.Context, queueID int, blocklist bool) error {
	params := url.Values{
		"removeFromClient": {"true"},
		"blocklist":        {strconv.FormatBool(blocklist)},
	}
	return c.request(ctx, http.MethodDelete, "queue/"+strconv.Itoa(queueID), params, nil, nil)
}

// History

// GetHistory returns a page of download history, newest first.
func (c *Client) GetHistory(ctx context.Context, page, pageSize int) (*HistoryPage, error) {
	params := url.Values{
		"page":           {strconv.Itoa(page)},
		"pageSize":       {strconv.Itoa(pageSize)},
		"sortKey":        {"date"},
		"sortDirection":  {"descending"},
		"includeSeries":  {"true"},
		"includeEpisode": {"true"},
	}
	var out HistoryPage
	err := c.get(ctx, "history", params, &out)
	return &out, err
}

// Wanted

// GetWantedMissing returns a page of monitored episodes with no file.
func (c *Client) GetWantedMissing(ctx context.Context, page, pageSize int) (*WantedPage, error) {
	params := url.Values{
		"page":          {strconv.Itoa(page)},
		"pageSize":      {strconv.Itoa(pageSize)},
		"includeSeries": {"true"},
		"monitored":     {"true"},
	}
	var out WantedPage
	err := c.get(ctx, "wanted/missing", params, &out)
	return &out, err
}

// Commands

func (c *Client) runCommand(ctx context.Context, body map[string]any) (*Command, error) {
	var out Command
	err := c.post(ctx, "command", body, &out)
	return &out, err
}

// SearchSeriesEpisodes triggers a search for all missing episodes of a series.
func (c *Client) SearchSeriesEpisodes(ctx context.Context, seriesID int) (*Command, error) {
	return c.runCommand(ctx, map[string]any{"name": "SeriesSearch", "seriesId": seriesID})
}

// SearchSeason triggers a search for all episodes of one season.
func (c *Client) SearchSeason(ctx context.Context, seriesID, seasonNumber int) (*Command, error) {
	return c.runCommand(ctx, map[string]any{
		"name":         "SeasonSearch",
		"seriesId":     seriesID,
		"seasonNumber": seasonNumber,
	})
}

// RefreshSeries refreshes series metadata. A zero seriesID refreshes all.
func (c *Client) RefreshSeries(ctx context.Context, seriesID int) (*Command, error) {
	body := map[string]any{"name": "RefreshSeries"}
	if seriesID != 0 {
		body["seriesId"] = seriesID
	}
	return c.runCommand(ctx, body)
}

// RescanSeries rescans disk for series files. A zero seriesID rescans all.
func (c *Client) RescanSeries(ctx context.Context, seriesID int) (*Command, error) {
	body := map[string]any{"name": "RescanSeries"}
	if seriesID != 0 {
		body["seriesId"] = seriesID
	}
	return c.runCommand(ctx, body)
}

// RSSSync triggers an RSS sync against the configured indexers.
func (c *Client) RSSSync(ctx context.Context) (*Command, error) {
	return c.runCommand(ctx, map[string]any{"name": "RssSync"})
}
