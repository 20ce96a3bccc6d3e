package bot

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/cryptiklemur/discordarr/src/auth"
	"github.com/cryptiklemur/discordarr/src/data"
)

// handleLink opens the account-link handshake: a one-shot redis session plus
// a signed URL the user finishes in the browser.
func (b *Bot) handleLink(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	existing, err := b.overseerr.GetUserByDiscordID(ctx, userID)
	if err == nil && existing != nil {
		respondEphemeral(s, i, "Your Overseerr account is already linked.")
		return
	}

	sessionID := uuid.NewString()
	if err := data.SetLinkSession(ctx, b.rdb, sessionID, userID); err != nil {
		log.Printf("bot: store link session for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}

	token, err := auth.IssueLinkToken(auth.LinkClaims{SessionID: sessionID, DiscordUserID: userID}, []byte(b.cfg.JWTSecret))
	if err != nil {
		log.Printf("bot: issue link token for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}

	link := fmt.Sprintf("%s/link?token=%s", b.cfg.PublicURL, url.QueryEscape(token))
	respondEphemeral(s, i, fmt.Sprintf("Visit %s to link your Overseerr account. The link expires in 10 minutes.", link))
}
