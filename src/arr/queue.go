package arr

import (
	"context"

	"github.com/cryptiklemur/discordarr/src/types"
)

// QueueItem is the common shape of a Radarr or Sonarr queue record. TmdbID is
// set for movie items, TvdbID and EpisodeKey for tv items.
type QueueItem struct {
	ID         int64
	Title      string
	Size       float64
	SizeLeft   float64
	TimeLeft   string
	Quality    string
	TmdbID     uint64
	TvdbID     uint64
	EpisodeKey string
}

// Progress returns the item's completion percentage.
func (q QueueItem) Progress() float64 {
	if q.Size <= 0 {
		return 0
	}
	return (q.Size - q.SizeLeft) / q.Size * 100
}

// QueueService is one of the two download services. The two are structurally
// parallel but keyed differently: Radarr queue items carry a tmdb id, Sonarr
// items carry the series' tvdb id. Matches hides that difference from the
// queue poller.
type QueueService interface {
	Kind() string
	FetchQueue(ctx context.Context, page, pageSize int) ([]QueueItem, error)
	Matches(item QueueItem, req *types.TrackedRequest) bool
}
