package notify

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/cryptiklemur/discordarr/src/logging"
	"github.com/cryptiklemur/discordarr/src/types"
)

const threadAutoArchiveMinutes = 1440

// Channels is the announcement channel routing. Movie/TV/Pending fall back
// to Request when unset.
type Channels struct {
	Request string
	Movie   string
	TV      string
	Pending string
}

func (c Channels) forMedia(mediaType string) string {
	if mediaType == types.MediaTypeMovie && c.Movie != "" {
		return c.Movie
	}
	if mediaType == types.MediaTypeTV && c.TV != "" {
		return c.TV
	}
	return c.Request
}

func (c Channels) forPending(mediaType string) string {
	if c.Pending != "" {
		return c.Pending
	}
	return c.forMedia(mediaType)
}

// DiscordDispatcher is the production Dispatcher over a discordgo session.
type DiscordDispatcher struct {
	session  *discordgo.Session
	channels Channels
	logger   *log.Logger
}

func NewDiscordDispatcher(session *discordgo.Session, channels Channels, logger *log.Logger) *DiscordDispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &DiscordDispatcher{session: session, channels: channels, logger: logger}
}

func (d *DiscordDispatcher) PostAdminPrompt(req *types.PendingRequest, media MediaSummary, displayName string) (PostResult, error) {
	channelID := d.channels.forPending(req.MediaType)

	embed := buildRequestEmbed(media, displayName, req.MediaType, req.Is4K, types.DecodeSeasons(req.Seasons), "Pending Approval", colorPending)
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("admin_approve:%d", req.ID),
				},
				discordgo.Button{
					Label:    "Deny",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("admin_deny:%d", req.ID),
				},
			},
		},
	}

	msg, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return PostResult{}, err
	}

	result := PostResult{ChannelID: channelID, MessageID: msg.ID}
	result.ThreadID = d.openThread(channelID, msg.ID, media.Title)
	return result, nil
}

func (d *DiscordDispatcher) PostAutoApproved(req *types.TrackedRequest, media MediaSummary, seasons []int, requestedBy string) (PostResult, error) {
	channelID := d.channels.forMedia(req.MediaType)

	embed := buildRequestEmbed(media, requestedBy, req.MediaType, req.Is4K, seasons, "Approved", colorApproved)
	msg, err := d.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return PostResult{}, err
	}

	result := PostResult{ChannelID: channelID, MessageID: msg.ID}
	result.ThreadID = d.openThread(channelID, msg.ID, media.Title)
	return result, nil
}

func (d *DiscordDispatcher) openThread(channelID, messageID, title string) string {
	thread, err := d.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                fmt.Sprintf("%s - Request", title),
		AutoArchiveDuration: threadAutoArchiveMinutes,
	})
	if err != nil {
		d.logger.Printf("notify: thread for %q not created: %v", title, err)
		return ""
	}
	return thread.ID
}

func (d *DiscordDispatcher) UpdateThreadProgress(req *types.TrackedRequest, info StatusInfo) (string, error) {
	if req.ThreadID == "" {
		return "", nil
	}

	embed := buildProgressEmbed(info)

	if req.LastThreadMessageID != "" {
		_, err := d.session.ChannelMessageEditEmbed(req.ThreadID, req.LastThreadMessageID, embed)
		if err == nil {
			return req.LastThreadMessageID, nil
		}
		if !logging.IsUnknownTarget(err) {
			return "", err
		}
		// message was deleted, send a fresh one
	}

	msg, err := d.session.ChannelMessageSendEmbed(req.ThreadID, embed)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (d *DiscordDispatcher) PostThreadMessage(threadID, content string) error {
	_, err := d.session.ChannelMessageSend(threadID, content)
	return err
}

func (d *DiscordDispatcher) MarkMessageAvailable(req *types.TrackedRequest) error {
	embed := buildAvailableEmbed(req.Title, req.PosterPath, req.MediaType, req.Is4K)
	empty := []discordgo.MessageComponent{}
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    req.ChannelID,
		ID:         req.MessageID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &empty,
	})
	return err
}

func (d *DiscordDispatcher) SendAvailableDM(discordUserID, title, posterPath string) error {
	channel, err := d.session.UserChannelCreate(discordUserID)
	if err != nil {
		return err
	}
	_, err = d.session.ChannelMessageSendEmbed(channel.ID, buildAvailableDMEmbed(title, posterPath))
	return err
}

func (d *DiscordDispatcher) ResolveDisplayName(discordUserID string) (string, error) {
	user, err := d.session.User(discordUserID)
	if err != nil {
		return "", err
	}
	if user.GlobalName != "" {
		return user.GlobalName, nil
	}
	return user.Username, nil
}
