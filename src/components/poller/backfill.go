package poller

import (
	"context"

	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/cryptiklemur/discordarr/src/types"
)

// BackfillTvdbIDs resolves the Sonarr-side series id for tv requests that
// were tracked before the id was known. The id comes from the media details
// endpoint, which may lag behind request creation.
func (p *Poller) BackfillTvdbIDs(ctx context.Context) {
	missing, err := p.store.ListTrackedMissingTvdbID()
	if err != nil {
		p.logger.Printf("backfill: list missing tvdb ids: %v", err)
		return
	}

	for i := range missing {
		req := &missing[i]
		tv, err := p.approvals.GetTv(ctx, req.TmdbID)
		if err != nil {
			p.logger.Printf("backfill: tv %d: %v", req.TmdbID, err)
			continue
		}
		if tv.ExternalIDs.TvdbID == nil {
			continue
		}
		if err := p.store.UpdateTrackedTvdbID(req.RequestID, *tv.ExternalIDs.TvdbID); err != nil {
			p.logger.Printf("backfill: update tvdb id for %d: %v", req.RequestID, err)
			continue
		}
		p.logger.Printf("backfill: resolved tvdb id %d for request %d (%s)", *tv.ExternalIDs.TvdbID, req.RequestID, req.Title)
	}
}

// Hydrate seeds the store from the approval service's open requests at
// startup. Approved requests unknown to the store are tracked without
// message locations; the discovery loop posts their announcements on its
// first cycle. Runs the tvdb backfill once at the end.
func (p *Poller) Hydrate(ctx context.Context) error {
	requests, err := p.approvals.ListRequests(ctx, 100, 0, "all", "added")
	if err != nil {
		return err
	}

	hydrated := 0
	for i := range requests {
		req := &requests[i]
		if req.Status != overseerr.RequestApproved {
			continue
		}
		if req.Media.Status == overseerr.MediaAvailable {
			continue
		}

		existing, err := p.store.GetTracked(req.ID)
		if err != nil {
			p.logger.Printf("hydrate: read tracked %d: %v", req.ID, err)
			continue
		}
		if existing != nil {
			continue
		}

		discordID := p.resolveDiscordID(ctx, req)
		tracked := &types.TrackedRequest{
			RequestID:     req.ID,
			TmdbID:        req.Media.TmdbID,
			MediaType:     req.Type,
			DiscordUserID: discordID,
			Is4K:          req.Is4K,
			Title:         "Unknown",
		}
		if media, tvdbID, err := p.fetchMediaSummary(ctx, req.Type, req.Media.TmdbID); err == nil {
			tracked.Title = media.Title
			tracked.PosterPath = media.PosterPath
			tracked.TvdbID = tvdbID
		}

		if err := p.store.UpsertTracked(tracked); err != nil {
			p.logger.Printf("hydrate: store tracked %d: %v", req.ID, err)
			continue
		}
		hydrated++
	}

	p.BackfillTvdbIDs(ctx)
	p.logger.Printf("hydrate: request store hydrated, %d new tracked requests", hydrated)
	return nil
}
