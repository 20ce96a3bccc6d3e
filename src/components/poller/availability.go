package poller

import (
	"context"
	"fmt"

	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/cryptiklemur/discordarr/src/types"
	"github.com/cryptiklemur/discordarr/src/webclient"
)

// CheckAvailability is one cycle of the availability loop. Terminal
// transitions happen here: fully-available requests get their notices and
// are removed; requests declined after approval are removed quietly.
// Failures on one request never block the rest of the cycle.
func (p *Poller) CheckAvailability(ctx context.Context) {
	tracked, err := p.store.ListTracked()
	if err != nil {
		p.logger.Printf("availability: list tracked: %v", err)
		return
	}

	for i := range tracked {
		p.checkOne(ctx, &tracked[i])
	}
}

func (p *Poller) checkOne(ctx context.Context, req *types.TrackedRequest) {
	current, err := p.approvals.GetRequest(ctx, req.RequestID)
	if webclient.IsNotFound(err) {
		// request deleted upstream, nothing left to mirror
		if err := p.store.RemoveTracked(req.RequestID); err != nil {
			p.logger.Printf("availability: remove deleted %d: %v", req.RequestID, err)
			return
		}
		p.forgetDownloading(req.RequestID)
		p.logger.Printf("availability: request %d deleted upstream, dropped", req.RequestID)
		return
	}
	if err != nil {
		p.logger.Printf("availability: request %d: %v", req.RequestID, err)
		return
	}

	if current.Status == overseerr.RequestDeclined {
		if err := p.store.RemoveTracked(req.RequestID); err != nil {
			p.logger.Printf("availability: remove declined %d: %v", req.RequestID, err)
			return
		}
		p.forgetDownloading(req.RequestID)
		p.logger.Printf("availability: request %d declined externally, dropped", req.RequestID)
		return
	}

	// Check the availability flag matching the request's own 4K flag.
	status := current.Media.Status
	if req.Is4K {
		status = current.Media.Status4K
	}
	if status != overseerr.MediaAvailable {
		return
	}

	p.logger.Printf("availability: %s (request %d) is now available", req.Title, req.RequestID)

	if req.ThreadID != "" {
		content := fmt.Sprintf("🎉 **%s** is now available!", req.Title)
		if err := p.dispatcher.PostThreadMessage(req.ThreadID, content); err != nil {
			p.logger.Printf("availability: thread notice for %d: %v", req.RequestID, err)
		}
	}

	if req.ChannelID != "" && req.MessageID != "" {
		if err := p.dispatcher.MarkMessageAvailable(req); err != nil {
			p.logger.Printf("availability: embed update for %d: %v", req.RequestID, err)
		}
	}

	if req.DiscordUserID != "" {
		if err := p.dispatcher.SendAvailableDM(req.DiscordUserID, req.Title, req.PosterPath); err != nil {
			p.logger.Printf("availability: dm for %d: %v", req.RequestID, err)
		}
	}

	if err := p.store.RemoveTracked(req.RequestID); err != nil {
		p.logger.Printf("availability: remove %d: %v", req.RequestID, err)
		return
	}
	p.forgetDownloading(req.RequestID)
}
