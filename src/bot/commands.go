package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandSearch  = "search"
	CommandRequest = "request"
	CommandStatus  = "status"
	CommandLink    = "link"
	CommandRadarr  = "radarr"
	CommandSonarr  = "sonarr"
)

var mediaTypeChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Movie", Value: "movie"},
	{Name: "TV Show", Value: "tv"},
}

var queueItemIDOption = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: "Queue item id (from the queue view)",
		Required:    true,
	},
}

var searchIDOption = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: "Movie or series id in the download service",
		Required:    true,
	},
}

var queueRemoveOptions = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: "Queue item id (from the queue view)",
		Required:    true,
	},
	{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "blocklist",
		Description: "Blocklist the release so it is not grabbed again",
	},
}

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandSearch: {
		Name:        CommandSearch,
		Description: "Search for a movie or TV show",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Title to search for",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Restrict results to one media type",
				Choices:     mediaTypeChoices,
			},
		},
	},
	CommandRequest: {
		Name:        CommandRequest,
		Description: "Request a movie or TV show",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Media type",
				Required:    true,
				Choices:     mediaTypeChoices,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Title to request",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "4k",
				Description: "Request the 4K version",
			},
		},
	},
	CommandStatus: {
		Name:        CommandStatus,
		Description: "Show your open requests and their download progress",
	},
	CommandLink: {
		Name:        CommandLink,
		Description: "Link your Discord account to your Overseerr account",
	},
	CommandRadarr: {
		Name:        CommandRadarr,
		Description: "Radarr admin views",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "queue",
				Description: "Show the Radarr download queue",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "calendar",
				Description: "Show upcoming movie releases",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "retry",
				Description: "Retry a stuck queue item",
				Options:     queueItemIDOption,
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove a queue item",
				Options:     queueRemoveOptions,
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "search",
				Description: "Trigger a new release search",
				Options:     searchIDOption,
			},
		},
	},
	CommandSonarr: {
		Name:        CommandSonarr,
		Description: "Sonarr admin views",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "queue",
				Description: "Show the Sonarr download queue",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "calendar",
				Description: "Show upcoming episodes",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "retry",
				Description: "Retry a stuck queue item",
				Options:     queueItemIDOption,
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove a queue item",
				Options:     queueRemoveOptions,
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "search",
				Description: "Trigger a new release search",
				Options:     searchIDOption,
			},
		},
	},
}

var defaultCommandOrder = []string{
	CommandSearch,
	CommandRequest,
	CommandStatus,
	CommandLink,
	CommandRadarr,
	CommandSonarr,
}

// RegisterSlashCommands registers the bot's commands. With a guild id the
// commands appear immediately; without one they register globally and take
// up to an hour to propagate.
func RegisterSlashCommands(s *discordgo.Session, appID, guildID string) error {
	var failures []string
	for _, name := range defaultCommandOrder {
		definition := commandDefinitions[name]
		if _, err := s.ApplicationCommandCreate(appID, guildID, definition); err != nil {
			log.Printf("bot: register command %q: %v", name, err)
			failures = append(failures, name)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("bot: %d slash commands failed to register", len(failures))
	}
	return nil
}
