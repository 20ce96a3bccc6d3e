package poller

import (
	"context"

	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/cryptiklemur/discordarr/src/types"
)

const discoveryPageSize = 50

// PollRequests is one cycle of the new-request discovery loop: scan the
// approval service for requests the store does not know yet, then post any
// pending prompts deferred from earlier scans, then backfill missing tvdb
// ids. Nothing here is fatal; every failure is logged and retried on the
// next tick.
func (p *Poller) PollRequests(ctx context.Context) {
	p.discoverRequests(ctx)
	p.postUnpostedPending(ctx)
	p.BackfillTvdbIDs(ctx)
}

func (p *Poller) discoverRequests(ctx context.Context) {
	requests, err := p.approvals.ListRequests(ctx, discoveryPageSize, 0, "all", "added")
	if err != nil {
		p.logger.Printf("discovery: list requests: %v", err)
		return
	}

	for i := range requests {
		req := &requests[i]
		if req.Status == overseerr.RequestDeclined || req.Media.Status == overseerr.MediaAvailable {
			continue
		}

		// Duplicate suppression. The external list changes between short
		// poll cycles; the store is what keeps us from posting twice.
		tracked, err := p.store.GetTracked(req.ID)
		if err != nil {
			p.logger.Printf("discovery: read tracked %d: %v", req.ID, err)
			continue
		}
		if tracked != nil && tracked.MessageID != "" {
			continue
		}
		pending, err := p.store.FindPendingByOverseerrID(req.ID)
		if err != nil {
			p.logger.Printf("discovery: read pending %d: %v", req.ID, err)
			continue
		}
		if pending != nil {
			continue
		}

		discordID := p.resolveDiscordID(ctx, req)

		media, tvdbID, err := p.fetchMediaSummary(ctx, req.Type, req.Media.TmdbID)
		if err != nil {
			p.logger.Printf("discovery: media %s/%d: %v", req.Type, req.Media.TmdbID, err)
			continue
		}

		switch req.Status {
		case overseerr.RequestApproved:
			p.trackApprovedRequest(req, media, tvdbID, discordID)
		case overseerr.RequestPending:
			p.createPendingRecord(req, media, discordID)
		}
	}
}

// resolveDiscordID pulls the requester's Discord id off the request, falling
// back to the notification settings lookup. A missing id is fine; the
// request is still posted.
func (p *Poller) resolveDiscordID(ctx context.Context, req *overseerr.Request) string {
	if req.RequestedBy.Settings != nil && req.RequestedBy.Settings.DiscordID != "" {
		return req.RequestedBy.Settings.DiscordID
	}
	settings, err := p.approvals.GetUserNotificationSettings(ctx, req.RequestedBy.ID)
	if err != nil {
		return ""
	}
	return settings.DiscordID
}

func (p *Poller) fetchMediaSummary(ctx context.Context, mediaType string, tmdbID uint64) (notify.MediaSummary, *uint64, error) {
	if mediaType == types.MediaTypeMovie {
		movie, err := p.approvals.GetMovie(ctx, tmdbID)
		if err != nil {
			return notify.MediaSummary{}, nil, err
		}
		return notify.MediaSummary{
			Title:       movie.Title,
			Overview:    movie.Overview,
			PosterPath:  movie.PosterPath,
			ReleaseDate: movie.ReleaseDate,
			VoteAverage: movie.VoteAverage,
		}, nil, nil
	}

	tv, err := p.approvals.GetTv(ctx, tmdbID)
	if err != nil {
		return notify.MediaSummary{}, nil, err
	}
	return notify.MediaSummary{
		Title:       tv.Name,
		Overview:    tv.Overview,
		PosterPath:  tv.PosterPath,
		ReleaseDate: tv.FirstAirDate,
		VoteAverage: tv.VoteAverage,
	}, tv.ExternalIDs.TvdbID, nil
}

// trackApprovedRequest handles a request approved outside the bot, e.g. in
// the Overseerr UI. The announcement is best-effort: if the channel is
// unreachable the request is tracked anyway so fulfillment still mirrors.
func (p *Poller) trackApprovedRequest(req *overseerr.Request, media notify.MediaSummary, tvdbID *uint64, discordID string) {
	tracked := &types.TrackedRequest{
		RequestID:     req.ID,
		TmdbID:        req.Media.TmdbID,
		TvdbID:        tvdbID,
		MediaType:     req.Type,
		DiscordUserID: discordID,
		Title:         media.Title,
		PosterPath:    media.PosterPath,
		Is4K:          req.Is4K,
	}

	seasons := make([]int, 0, len(req.Seasons))
	for _, s := range req.Seasons {
		seasons = append(seasons, s.SeasonNumber)
	}

	result, err := p.dispatcher.PostAutoApproved(tracked, media, seasons, req.RequestedBy.DisplayName)
	if err != nil {
		p.logger.Printf("discovery: auto-approved announcement for %d failed, tracking anyway: %v", req.ID, err)
	} else {
		tracked.ChannelID = result.ChannelID
		tracked.MessageID = result.MessageID
		tracked.ThreadID = result.ThreadID
	}

	if err := p.store.UpsertTracked(tracked); err != nil {
		p.logger.Printf("discovery: store tracked %d: %v", req.ID, err)
		return
	}
	p.logger.Printf("discovery: tracking approved request %d (%s)", req.ID, media.Title)
}

// createPendingRecord stores the pending request unposted. Posting happens
// in postUnpostedPending so display-name resolution never blocks the scan.
func (p *Poller) createPendingRecord(req *overseerr.Request, media notify.MediaSummary, discordID string) {
	seasons := make([]int, 0, len(req.Seasons))
	for _, s := range req.Seasons {
		seasons = append(seasons, s.SeasonNumber)
	}

	requestID := req.ID
	pending := &types.PendingRequest{
		OverseerrRequestID: &requestID,
		TmdbID:             req.Media.TmdbID,
		MediaType:          req.Type,
		DiscordUserID:      discordID,
		OverseerrUserID:    req.RequestedBy.ID,
		Is4K:               req.Is4K,
		Seasons:            types.EncodeSeasons(seasons),
		Title:              media.Title,
		PosterPath:         media.PosterPath,
		Phase:              types.PhaseUnposted,
	}

	id, err := p.store.CreatePending(pending)
	if err != nil {
		p.logger.Printf("discovery: store pending for request %d: %v", req.ID, err)
		return
	}
	p.logger.Printf("discovery: created pending record %d for request %d (%s)", id, req.ID, media.Title)
}

// postUnpostedPending is the catch-up poster: it sends the admin prompt for
// every pending record that has none yet. Transient media failures leave the
// record in place for the next cycle.
func (p *Poller) postUnpostedPending(ctx context.Context) {
	unposted, err := p.store.ListUnpostedPending()
	if err != nil {
		p.logger.Printf("pending poster: list unposted: %v", err)
		return
	}

	for i := range unposted {
		pending := &unposted[i]

		media, _, err := p.fetchMediaSummary(ctx, pending.MediaType, pending.TmdbID)
		if err != nil {
			p.logger.Printf("pending poster: media for pending %d (tmdb %d): %v", pending.ID, pending.TmdbID, err)
			continue
		}

		displayName := p.resolveDisplayName(ctx, pending)

		result, err := p.dispatcher.PostAdminPrompt(pending, media, displayName)
		if err != nil {
			p.logger.Printf("pending poster: prompt for pending %d: %v", pending.ID, err)
			continue
		}

		if err := p.store.MarkPendingPosted(pending.ID, result.ChannelID, result.MessageID, result.ThreadID, "", ""); err != nil {
			p.logger.Printf("pending poster: mark posted %d: %v", pending.ID, err)
			continue
		}
		p.logger.Printf("pending poster: posted prompt for %s (pending %d)", pending.Title, pending.ID)
	}
}

func (p *Poller) resolveDisplayName(ctx context.Context, pending *types.PendingRequest) string {
	if pending.DiscordUserID != "" {
		name, err := p.dispatcher.ResolveDisplayName(pending.DiscordUserID)
		if err == nil && name != "" {
			return name
		}
		return pending.DiscordUserID
	}
	user, err := p.approvals.GetUser(ctx, pending.OverseerrUserID)
	if err == nil && user.DisplayName != "" {
		return user.DisplayName
	}
	return "Unknown User"
}
