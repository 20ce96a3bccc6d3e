package bot

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cryptiklemur/discordarr/src/arr"
	"github.com/cryptiklemur/discordarr/src/config"
	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/redis/go-redis/v9"
)

const interactionTimeout = 30 * time.Second

// Bot owns the Discord session and the interaction surface: slash commands,
// admin approve/deny buttons, search and season selects. The reconciliation
// engine runs separately; the bot only writes the store records it reacts to.
type Bot struct {
	session    *discordgo.Session
	store      *data.Store
	rdb        *redis.Client
	cfg        config.Config
	overseerr  *overseerr.Client
	radarr     *arr.Radarr
	sonarr     *arr.Sonarr
	dispatcher notify.Dispatcher
}

func New(cfg config.Config, store *data.Store, rdb *redis.Client, ov *overseerr.Client, radarr *arr.Radarr, sonarr *arr.Sonarr) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		session:   dg,
		store:     store,
		rdb:       rdb,
		cfg:       cfg,
		overseerr: ov,
		radarr:    radarr,
		sonarr:    sonarr,
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleInteraction)

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return b, nil
}

// Session exposes the underlying session so the presentation dispatcher can
// share it.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// SetDispatcher wires the dispatcher used for announcement posts triggered
// by interactions. Must be called before Start.
func (b *Bot) SetDispatcher(d notify.Dispatcher) {
	b.dispatcher = d
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.Printf("bot: close session: %v", err)
	}
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("bot: logged in as %s", event.User.Username)

	if err := RegisterSlashCommands(s, b.cfg.ClientID, b.cfg.GuildID); err != nil {
		log.Printf("bot: register slash commands: %v", err)
	}
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(ctx, s, i)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// respondEphemeral is the degraded-path reply for handler failures and
// simple acknowledgements.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("bot: ephemeral respond: %v", err)
	}
}
