package poller

import (
	"context"
	"fmt"
	"math"

	"github.com/cryptiklemur/discordarr/src/arr"
	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/types"
)

const queuePageSize = 100

// PollQueues is one cycle of the queue-progress loop. Each queue fetch is
// independent: if one service is down its queue is treated as empty for the
// cycle and the other still gets processed.
func (p *Poller) PollQueues(ctx context.Context) {
	tracked, err := p.store.ListTracked()
	if err != nil {
		p.logger.Printf("queue: list tracked: %v", err)
		return
	}
	if len(tracked) == 0 {
		return
	}

	snapshots := make(map[string][]arr.QueueItem, len(p.queues))
	for _, q := range p.queues {
		items, err := q.FetchQueue(ctx, 1, queuePageSize)
		if err != nil {
			p.logger.Printf("queue: fetch %s queue: %v", q.Kind(), err)
			items = nil
		}
		snapshots[q.Kind()] = items
	}

	for i := range tracked {
		p.reconcileQueueState(ctx, &tracked[i], snapshots)
	}
}

// reconcileQueueState matches queue items to one tracked request, infers
// per-episode completions from set transitions, detects the caught-up state
// and pushes a rate-limited progress update.
func (p *Poller) reconcileQueueState(ctx context.Context, req *types.TrackedRequest, snapshots map[string][]arr.QueueItem) {
	var matched []arr.QueueItem
	for _, q := range p.queues {
		if q.Kind() != req.MediaType {
			continue
		}
		for _, item := range snapshots[q.Kind()] {
			if !q.Matches(item, req) {
				continue
			}
			matched = append(matched, item)
			if req.MediaType == types.MediaTypeMovie {
				// one queue record per movie
				break
			}
		}
	}

	current := make(map[string]struct{}, len(matched))
	for _, item := range matched {
		current[itemKey(req.MediaType, item)] = struct{}{}
	}

	p.notifyCompletions(req, current)
	p.setDownloading(req.RequestID, current)

	if len(matched) == 0 {
		p.checkCaughtUp(ctx, req)
		return
	}

	p.pushProgress(req, matched)
}

func itemKey(mediaType string, item arr.QueueItem) string {
	if mediaType == types.MediaTypeTV && item.EpisodeKey != "" {
		return item.EpisodeKey
	}
	return fmt.Sprintf("item-%d", item.ID)
}

// notifyCompletions posts a one-time notice for every sub-item that was
// downloading last cycle and is gone now. The set transition itself is the
// guard: a key only disappears once.
func (p *Poller) notifyCompletions(req *types.TrackedRequest, current map[string]struct{}) {
	if req.MediaType != types.MediaTypeTV || req.ThreadID == "" {
		return
	}
	previous := p.downloadingSet(req.RequestID)
	for key := range previous {
		if _, still := current[key]; still {
			continue
		}
		content := fmt.Sprintf("✅ **%s** finished downloading.", key)
		if err := p.dispatcher.PostThreadMessage(req.ThreadID, content); err != nil {
			p.logger.Printf("queue: completion notice for %d/%s: %v", req.RequestID, key, err)
			continue
		}
		p.logger.Printf("queue: %s complete for request %d (%s)", key, req.RequestID, req.Title)
	}
}

// checkCaughtUp posts the one-shot "caught up" notice for a tv request with
// nothing downloading and every known episode on disk. The guard is
// persisted on the record so it survives restarts.
func (p *Poller) checkCaughtUp(ctx context.Context, req *types.TrackedRequest) {
	if req.MediaType != types.MediaTypeTV || req.CaughtUpNotified || req.TvdbID == nil {
		return
	}
	if req.ThreadID == "" {
		return
	}

	series, err := p.series.GetSeriesByTvdbID(ctx, *req.TvdbID)
	if err != nil {
		p.logger.Printf("queue: series stats for tvdb %d: %v", *req.TvdbID, err)
		return
	}
	if series == nil || series.Statistics == nil {
		return
	}
	stats := series.Statistics
	if stats.EpisodeCount == 0 || stats.EpisodeFileCount < stats.EpisodeCount {
		return
	}

	content := fmt.Sprintf("📺 **%s** is caught up: all %d episodes downloaded. Waiting for new episodes.", req.Title, stats.EpisodeFileCount)
	if err := p.dispatcher.PostThreadMessage(req.ThreadID, content); err != nil {
		p.logger.Printf("queue: caught-up notice for %d: %v", req.RequestID, err)
		return
	}
	if err := p.store.MarkCaughtUpNotified(req.RequestID); err != nil {
		p.logger.Printf("queue: persist caught-up guard for %d: %v", req.RequestID, err)
	}
}

// pushProgress aggregates the matched items (multiple episodes can download
// at once) and updates the thread embed, suppressing changes under the
// threshold.
func (p *Poller) pushProgress(req *types.TrackedRequest, matched []arr.QueueItem) {
	var size, sizeLeft float64
	var eta, quality string
	for _, item := range matched {
		size += item.Size
		sizeLeft += item.SizeLeft
		if eta == "" {
			eta = item.TimeLeft
		}
		if quality == "" {
			quality = item.Quality
		}
	}

	var progress float64
	if size > 0 {
		progress = (size - sizeLeft) / size * 100
	}

	if req.LastProgress != nil && math.Abs(progress-*req.LastProgress) < progressThreshold {
		return
	}

	if err := p.store.UpdateTrackedProgress(req.RequestID, progress); err != nil {
		p.logger.Printf("queue: store progress for %d: %v", req.RequestID, err)
	}

	msgID, err := p.dispatcher.UpdateThreadProgress(req, notify.StatusInfo{
		Title:      req.Title,
		PosterPath: req.PosterPath,
		Status:     "downloading",
		Progress:   &progress,
		Size:       size,
		SizeLeft:   sizeLeft,
		Eta:        eta,
		Quality:    quality,
	})
	if err != nil {
		p.logger.Printf("queue: progress update for %d: %v", req.RequestID, err)
		return
	}
	if msgID != "" && msgID != req.LastThreadMessageID {
		if err := p.store.UpdateTrackedThreadMessage(req.RequestID, msgID); err != nil {
			p.logger.Printf("queue: store thread message for %d: %v", req.RequestID, err)
		}
	}
}
