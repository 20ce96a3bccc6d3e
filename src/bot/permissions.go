package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/cryptiklemur/discordarr/src/types"
)

// resolvePermissions returns the Overseerr permission bits for a Discord
// user, going through the redis cache. A user with no linked Overseerr
// account resolves to zero permissions.
func (b *Bot) resolvePermissions(ctx context.Context, discordUserID string) (int64, error) {
	perms, hit, err := data.GetCachedPermissions(ctx, b.rdb, discordUserID)
	if err == nil && hit {
		return perms, nil
	}

	user, err := b.overseerr.GetUserByDiscordID(ctx, discordUserID)
	if err != nil {
		return 0, fmt.Errorf("resolve permissions for %s: %w", discordUserID, err)
	}
	if user == nil {
		return 0, nil
	}

	if err := data.CachePermissions(ctx, b.rdb, discordUserID, user.Permissions); err != nil {
		// cache miss next time, nothing else lost
		log.Printf("bot: cache permissions for %s: %v", discordUserID, err)
	}
	return user.Permissions, nil
}

func canManageRequests(perms int64) bool {
	return overseerr.HasPermission(perms, overseerr.PermManageRequests)
}

// canAutoApprove reports whether a request by this user skips the pending
// approval flow entirely.
func canAutoApprove(perms int64, mediaType string, is4k bool) bool {
	if is4k {
		if overseerr.HasPermission(perms, overseerr.PermAutoApprove4K) {
			return true
		}
		if mediaType == types.MediaTypeMovie {
			return overseerr.HasPermission(perms, overseerr.PermAutoApprove4KMov)
		}
		return overseerr.HasPermission(perms, overseerr.PermAutoApprove4KTV)
	}
	if overseerr.HasPermission(perms, overseerr.PermAutoApprove) {
		return true
	}
	if mediaType == types.MediaTypeMovie {
		return overseerr.HasPermission(perms, overseerr.PermAutoApproveMovie)
	}
	return overseerr.HasPermission(perms, overseerr.PermAutoApproveTV)
}
