package arr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cryptiklemur/discordarr/src/types"
	"github.com/cryptiklemur/discordarr/src/webclient"
)

type SeriesStatistics struct {
	EpisodeFileCount  int   `json:"episodeFileCount"`
	EpisodeCount      int   `json:"episodeCount"`
	TotalEpisodeCount int   `json:"totalEpisodeCount"`
	SizeOnDisk        int64 `json:"sizeOnDisk"`
}

type SonarrSeries struct {
	ID         uint64            `json:"id"`
	Title      string            `json:"title"`
	Status     string            `json:"status"`
	Year       int               `json:"year"`
	TvdbID     uint64            `json:"tvdbId"`
	Monitored  bool              `json:"monitored"`
	Statistics *SeriesStatistics `json:"statistics"`
}

type SonarrEpisode struct {
	ID            uint64 `json:"id"`
	SeriesID      uint64 `json:"seriesId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDateUTC    string `json:"airDateUtc"`
	HasFile       bool   `json:"hasFile"`
}

type SonarrCalendarEntry struct {
	SonarrEpisode
	Series SonarrSeries `json:"series"`
}

type sonarrQueueRecord struct {
	ID           int64   `json:"id"`
	SeriesID     uint64  `json:"seriesId"`
	EpisodeID    uint64  `json:"episodeId"`
	SeasonNumber int     `json:"seasonNumber"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	Size         float64 `json:"size"`
	SizeLeft     float64 `json:"sizeleft"`
	TimeLeft     string  `json:"timeleft"`
	Quality      struct {
		Quality struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"quality"`
	} `json:"quality"`
	Series  *SonarrSeries  `json:"series"`
	Episode *SonarrEpisode `json:"episode"`
}

type sonarrQueueResponse struct {
	Page         int                 `json:"page"`
	PageSize     int                 `json:"pageSize"`
	TotalRecords int                 `json:"totalRecords"`
	Records      []sonarrQueueRecord `json:"records"`
}

// Sonarr is the tv download service. Queue records are keyed by the series'
// tvdb id, not the tmdb id the approval service uses.
type Sonarr struct {
	api *webclient.Client
}

func NewSonarr(baseURL, apiKey string) *Sonarr {
	return &Sonarr{api: webclient.New(baseURL, apiKey)}
}

func (s *Sonarr) Kind() string { return types.MediaTypeTV }

func (s *Sonarr) FetchQueue(ctx context.Context, page, pageSize int) ([]QueueItem, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("includeUnknownSeriesItems", "false")
	params.Set("includeSeries", "true")
	params.Set("includeEpisode", "true")

	var resp sonarrQueueResponse
	if err := s.api.Get(ctx, "/api/v3/queue", params, &resp); err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(resp.Records))
	for _, rec := range resp.Records {
		item := QueueItem{
			ID:       rec.ID,
			Title:    rec.Title,
			Size:     rec.Size,
			SizeLeft: rec.SizeLeft,
			TimeLeft: rec.TimeLeft,
			Quality:  rec.Quality.Quality.Name,
		}
		if rec.Series != nil {
			item.TvdbID = rec.Series.TvdbID
			if rec.Series.Title != "" {
				item.Title = rec.Series.Title
			}
		}
		if rec.Episode != nil {
			item.EpisodeKey = fmt.Sprintf("S%02dE%02d", rec.Episode.SeasonNumber, rec.Episode.EpisodeNumber)
		} else {
			item.EpisodeKey = fmt.Sprintf("queue-%d", rec.ID)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Sonarr) Matches(item QueueItem, req *types.TrackedRequest) bool {
	return req.TvdbID != nil && item.TvdbID != 0 && item.TvdbID == *req.TvdbID
}

// GetSeriesByTvdbID returns the series with its statistics, or nil when
// Sonarr does not know the series yet.
func (s *Sonarr) GetSeriesByTvdbID(ctx context.Context, tvdbID uint64) (*SonarrSeries, error) {
	params := url.Values{}
	params.Set("tvdbId", strconv.FormatUint(tvdbID, 10))
	var series []SonarrSeries
	if err := s.api.Get(ctx, "/api/v3/series", params, &series); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, nil
	}
	return &series[0], nil
}

func (s *Sonarr) RetryQueueItem(ctx context.Context, id int64) error {
	return s.api.Post(ctx, fmt.Sprintf("/api/v3/queue/grab/%d", id), nil, nil)
}

func (s *Sonarr) RemoveQueueItem(ctx context.Context, id int64, removeFromClient, blocklist bool) error {
	params := url.Values{}
	params.Set("removeFromClient", strconv.FormatBool(removeFromClient))
	params.Set("blocklist", strconv.FormatBool(blocklist))
	return s.api.Delete(ctx, fmt.Sprintf("/api/v3/queue/%d", id), params)
}

func (s *Sonarr) GetCalendar(ctx context.Context, start, end string) ([]SonarrCalendarEntry, error) {
	params := url.Values{}
	params.Set("start", start)
	params.Set("end", end)
	params.Set("includeSeries", "true")
	var entries []SonarrCalendarEntry
	if err := s.api.Get(ctx, "/api/v3/calendar", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Sonarr) SearchSeries(ctx context.Context, seriesID uint64) error {
	body := map[string]interface{}{"name": "SeriesSearch", "seriesId": seriesID}
	return s.api.Post(ctx, "/api/v3/command", body, nil)
}
