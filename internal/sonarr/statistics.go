// ABOUTME: Aggregated library statistics built from several Sonarr endpoints
// ABOUTME: Combines series counts, episode totals, disk usage, queue and wanted sizes

package sonarr

import "context"

// Statistics is an aggregate view of the Sonarr library.
type Statistics struct {
	TotalSeries        int     `json:"totalSeries"`
	MonitoredSeries    int     `json:"monitoredSeries"`
	EndedSeries        int     `json:"endedSeries"`
	ContinuingSeries   int     `json:"continuingSeries"`
	TotalEpisodes      int     `json:"totalEpisodes"`
	DownloadedEpisodes int     `json:"downloadedEpisodes"`
	SizeOnDisk         int64   `json:"sizeOnDisk"`
	FreeSpace          int64   `json:"freeSpace"`
	TotalSpace         int64   `json:"totalSpace"`
	QueueCount         int     `json:"queueCount"`
	MissingCount       int     `json:"missingCount"`
	PercentDownloaded  float64 `json:"percentDownloaded"`
}

// GetStatistics aggregates library-wide statistics. Queue and wanted counts
// are best-effort: failures there leave the counts at zero rather than
// failing the whole call.
func (c *Client) GetStatistics(ctx context.Context) (*Statistics, error) {
	series, err := c.GetAllSeries(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalSeries: len(series)}
	for _, s := range series {
		if s.Monitored {
			stats.MonitoredSeries++
		}
		switch s.Status {
		case "ended":
			stats.EndedSeries++
		case "continuing":
			stats.ContinuingSeries++
		}
		stats.TotalEpisodes += s.Statistics.EpisodeCount
		stats.DownloadedEpisodes += s.Statistics.EpisodeFileCount
		stats.SizeOnDisk += s.Statistics.SizeOnDisk
	}
	if stats.TotalEpisodes > 0 {
		stats.PercentDownloaded = float64(stats.DownloadedEpisodes) / float64(stats.TotalEpisodes) * 100
	}

	if disks, err := c.GetDiskSpace(ctx); err == nil {
		for _, d := range disks {
			stats.FreeSpace += d.FreeSpace
			stats.TotalSpace += d.TotalSpace
		}
	}
	if queue, err := c.GetQueue(ctx, 1, 1); err == nil {
		stats.QueueCount = queue.TotalRecords
	}
	if wanted, err := c.GetWantedMissing(ctx, 1, 1); err == nil {
		stats.MissingCount = wanted.TotalRecords
	}
	return stats, nil
}
