package arr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cryptiklemur/discordarr/src/types"
	"github.com/cryptiklemur/discordarr/src/webclient"
)

type RadarrMovie struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Year           int    `json:"year"`
	TmdbID         uint64 `json:"tmdbId"`
	Monitored      bool   `json:"monitored"`
	HasFile        bool   `json:"hasFile"`
	Status         string `json:"status"`
	SizeOnDisk     int64  `json:"sizeOnDisk"`
	InCinemas      string `json:"inCinemas"`
	DigitalRelease string `json:"digitalRelease"`
}

type radarrQueueRecord struct {
	ID       int64   `json:"id"`
	MovieID  uint64  `json:"movieId"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Size     float64 `json:"size"`
	SizeLeft float64 `json:"sizeleft"`
	TimeLeft string  `json:"timeleft"`
	Quality  struct {
		Quality struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"quality"`
	} `json:"quality"`
	Movie *RadarrMovie `json:"movie"`
}

type radarrQueueResponse struct {
	Page         int                 `json:"page"`
	PageSize     int                 `json:"pageSize"`
	TotalRecords int                 `json:"totalRecords"`
	Records      []radarrQueueRecord `json:"records"`
}

// Radarr is the movie download service.
type Radarr struct {
	api *webclient.Client
}

func NewRadarr(baseURL, apiKey string) *Radarr {
	return &Radarr{api: webclient.New(baseURL, apiKey)}
}

func (r *Radarr) Kind() string { return types.MediaTypeMovie }

func (r *Radarr) FetchQueue(ctx context.Context, page, pageSize int) ([]QueueItem, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("includeUnknownMovieItems", "false")
	params.Set("includeMovie", "true")

	var resp radarrQueueResponse
	if err := r.api.Get(ctx, "/api/v3/queue", params, &resp); err != nil {
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
		if rec.Movie != nil {
			item.TmdbID = rec.Movie.TmdbID
			if rec.Movie.Title != "" {
				item.Title = rec.Movie.Title
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Radarr) Matches(item QueueItem, req *types.TrackedRequest) bool {
	return item.TmdbID != 0 && item.TmdbID == req.TmdbID
}

func (r *Radarr) RetryQueueItem(ctx context.Context, id int64) error {
	return r.api.Post(ctx, fmt.Sprintf("/api/v3/queue/grab/%d", id), nil, nil)
}

func (r *Radarr) RemoveQueueItem(ctx context.Context, id int64, removeFromClient, blocklist bool) error {
	params := url.Values{}
	params.Set("removeFromClient", strconv.FormatBool(removeFromClient))
	params.Set("blocklist", strconv.FormatBool(blocklist))
	return r.api.Delete(ctx, fmt.Sprintf("/api/v3/queue/%d", id), params)
}

func (r *Radarr) GetCalendar(ctx context.Context, start, end string) ([]RadarrMovie, error) {
	params := url.Values{}
	params.Set("start", start)
	params.Set("end", end)
	params.Set("includeUnmonitored", "false")
	var movies []RadarrMovie
	if err := r.api.Get(ctx, "/api/v3/calendar", params, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *Radarr) SearchMovies(ctx context.Context, movieIDs []uint64) error {
	body := map[string]interface{}{"name": "MoviesSearch", "movieIds": movieIDs}
	return r.api.Post(ctx, "/api/v3/command", body, nil)
}
