package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cryptiklemur/discordarr/src/arr"
	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/cryptiklemur/discordarr/src/types"
)

// Component custom id prefixes. The part after the first colon is the
// handler payload.
const (
	idSearchSelect  = "search_select"
	idRequestSelect = "request_select"
	idSeasonSelect  = "season_select"
	idAdminApprove  = "admin_approve"
	idAdminDeny     = "admin_deny"
	idDenyReason    = "deny_reason"
)

func (b *Bot) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case CommandSearch:
		b.handleSearch(ctx, s, i)
	case CommandRequest:
		b.handleRequest(ctx, s, i)
	case CommandStatus:
		b.handleStatus(ctx, s, i)
	case CommandLink:
		b.handleLink(ctx, s, i)
	case CommandRadarr:
		b.handleRadarr(ctx, s, i)
	case CommandSonarr:
		b.handleSonarr(ctx, s, i)
	default:
		respondEphemeral(s, i, "Unknown command.")
	}
}

func (b *Bot) handleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	prefix, payload := splitCustomID(customID)

	switch prefix {
	case idSearchSelect, idRequestSelect:
		b.handleMediaSelect(ctx, s, i, prefix, payload)
	case idSeasonSelect:
		b.handleSeasonSelect(ctx, s, i, payload)
	case idAdminApprove:
		b.handleAdminApprove(ctx, s, i, payload)
	case idAdminDeny:
		b.handleAdminDeny(s, i, payload)
	default:
		log.Printf("bot: unhandled component %q", customID)
	}
}

func (b *Bot) handleModal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID
	prefix, payload := splitCustomID(customID)
	if prefix == idDenyReason {
		b.handleDenyReason(ctx, s, i, payload)
	}
}

func splitCustomID(customID string) (prefix, payload string) {
	idx := strings.Index(customID, ":")
	if idx < 0 {
		return customID, ""
	}
	return customID[:idx], customID[idx+1:]
}

func commandOptions(data discordgo.ApplicationCommandInteractionData) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		opts[opt.Name] = opt
	}
	return opts
}

// --- search and request submission ---

func (b *Bot) handleSearch(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := commandOptions(i.ApplicationCommandData())
	query := opts["query"].StringValue()
	mediaType := types.MediaTypeMovie
	if opt, ok := opts["type"]; ok {
		mediaType = opt.StringValue()
	}

	b.sendResultMenu(ctx, s, i, mediaType, query, idSearchSelect+":0")
}

func (b *Bot) handleRequest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := commandOptions(i.ApplicationCommandData())
	mediaType := opts["type"].StringValue()
	query := opts["query"].StringValue()
	is4k := "0"
	if opt, ok := opts["4k"]; ok && opt.BoolValue() {
		is4k = "1"
	}

	b.sendResultMenu(ctx, s, i, mediaType, query, idRequestSelect+":"+is4k)
}

// sendResultMenu runs the search and replies with a select menu whose values
// carry "mediaType:tmdbID".
func (b *Bot) sendResultMenu(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, mediaType, query, customID string) {
	results, err := b.overseerr.SearchByType(ctx, query, mediaType, b.cfg.MaxSearchResults)
	if err != nil {
		log.Printf("bot: search %q: %v", query, err)
		respondEphemeral(s, i, "Search failed. Please try again.")
		return
	}
	if len(results) == 0 {
		respondEphemeral(s, i, fmt.Sprintf("No results for **%s**.", query))
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, len(results))
	for _, r := range results {
		label := r.DisplayTitle()
		if year := releaseYear(r); year != "" {
			label = fmt.Sprintf("%s (%s)", label, year)
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       clamp(label, 100),
			Value:       fmt.Sprintf("%s:%d", mediaType, r.ID),
			Description: clamp(r.Overview, 100),
		})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Results for **%s**:", query),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    customID,
							Placeholder: "Pick a result",
							Options:     options,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("bot: search respond: %v", err)
	}
}

func releaseYear(r overseerr.SearchResult) string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// handleMediaSelect routes a picked search result. Movies submit directly;
// tv shows go through the season picker first.
func (b *Bot) handleMediaSelect(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, prefix, payload string) {
	is4k := payload == "1"
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	mediaType, tmdbID, ok := parseMediaValue(values[0])
	if !ok {
		respondEphemeral(s, i, "Invalid selection.")
		return
	}

	if mediaType == types.MediaTypeTV {
		b.sendSeasonMenu(ctx, s, i, tmdbID, is4k)
		return
	}
	b.submitRequest(ctx, s, i, mediaType, tmdbID, is4k, nil)
}

func parseMediaValue(value string) (mediaType string, tmdbID uint64, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	if parts[0] != types.MediaTypeMovie && parts[0] != types.MediaTypeTV {
		return "", 0, false
	}
	return parts[0], id, true
}

func (b *Bot) sendSeasonMenu(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, tmdbID uint64, is4k bool) {
	tv, err := b.overseerr.GetTv(ctx, tmdbID)
	if err != nil {
		log.Printf("bot: tv %d: %v", tmdbID, err)
		respondEphemeral(s, i, "Failed to load season list.")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, len(tv.Seasons)+1)
	options = append(options, discordgo.SelectMenuOption{Label: "All seasons", Value: "all"})
	for _, season := range tv.Seasons {
		if season.SeasonNumber == 0 || len(options) >= 25 {
			continue
		}
		options = append(options, discordgo.SelectMenuOption{
			Label: fmt.Sprintf("Season %d (%d episodes)", season.SeasonNumber, season.EpisodeCount),
			Value: strconv.Itoa(season.SeasonNumber),
		})
	}

	maxValues := len(options)
	fourK := "0"
	if is4k {
		fourK = "1"
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Which seasons of **%s**?", tv.Name),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:  fmt.Sprintf("%s:%d:%s", idSeasonSelect, tmdbID, fourK),
							MaxValues: maxValues,
							Options:   options,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("bot: season menu respond: %v", err)
	}
}

func (b *Bot) handleSeasonSelect(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, payload string) {
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		respondEphemeral(s, i, "Invalid selection.")
		return
	}
	tmdbID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		respondEphemeral(s, i, "Invalid selection.")
		return
	}
	is4k := parts[1] == "1"

	var seasons []int
	for _, v := range i.MessageComponentData().Values {
		if v == "all" {
			seasons = nil
			break
		}
		if n, err := strconv.Atoi(v); err == nil {
			seasons = append(seasons, n)
		}
	}

	b.submitRequest(ctx, s, i, types.MediaTypeTV, tmdbID, is4k, seasons)
}

// submitRequest pushes a request into Overseerr. Auto-approve users get the
// request created (and approved) immediately; everyone else gets a
// PendingRequest row that the pending poster turns into an admin prompt.
func (b *Bot) submitRequest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, mediaType string, tmdbID uint64, is4k bool, seasons []int) {
	userID := interactionUserID(i)

	user, err := b.overseerr.GetUserByDiscordID(ctx, userID)
	if err != nil {
		log.Printf("bot: resolve user %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	if user == nil {
		respondEphemeral(s, i, "Please use `/link` to connect your Overseerr account first.")
		return
	}

	media, _, err := b.fetchMediaSummary(ctx, mediaType, tmdbID)
	if err != nil {
		log.Printf("bot: media %s/%d: %v", mediaType, tmdbID, err)
		respondEphemeral(s, i, "Failed to load media details.")
		return
	}

	if mediaType == types.MediaTypeTV && seasons == nil {
		tv, err := b.overseerr.GetTv(ctx, tmdbID)
		if err == nil {
			for _, season := range tv.Seasons {
				if season.SeasonNumber > 0 {
					seasons = append(seasons, season.SeasonNumber)
				}
			}
		}
	}

	if canAutoApprove(user.Permissions, mediaType, is4k) {
		created, err := b.overseerr.CreateRequest(ctx, overseerr.CreateRequestBody{
			MediaType: mediaType,
			MediaID:   tmdbID,
			Is4K:      is4k,
			Seasons:   seasons,
		})
		if err != nil {
			log.Printf("bot: create request %s/%d: %v", mediaType, tmdbID, err)
			respondEphemeral(s, i, "Failed to create request. Please try again.")
			return
		}
		if created.Status == overseerr.RequestPending {
			if _, err := b.overseerr.ApproveRequest(ctx, created.ID); err != nil {
				log.Printf("bot: approve auto request %d: %v", created.ID, err)
			}
		}
		respondEphemeral(s, i, fmt.Sprintf("**%s** requested and approved. Download starting soon.", media.Title))
		return
	}

	pending := &types.PendingRequest{
		TmdbID:          tmdbID,
		MediaType:       mediaType,
		DiscordUserID:   userID,
		OverseerrUserID: user.ID,
		Is4K:            is4k,
		Seasons:         types.EncodeSeasons(seasons),
		Title:           media.Title,
		PosterPath:      media.PosterPath,
		Phase:           types.PhaseUnposted,
	}
	if _, err := b.store.CreatePending(pending); err != nil {
		log.Printf("bot: store pending %s/%d: %v", mediaType, tmdbID, err)
		respondEphemeral(s, i, "Failed to create request. Please try again.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("**%s** requested. An admin will review it shortly.", media.Title))
}

func (b *Bot) fetchMediaSummary(ctx context.Context, mediaType string, tmdbID uint64) (notify.MediaSummary, *uint64, error) {
	if mediaType == types.MediaTypeMovie {
		movie, err := b.overseerr.GetMovie(ctx, tmdbID)
		if err != nil {
			return notify.MediaSummary{}, nil, err
		}
		return notify.MediaSummary{
			Title:       movie.Title,
			Overview:    movie.Overview,
			PosterPath:  movie.PosterPath,
			ReleaseDate: movie.ReleaseDate,
		}, nil, nil
	}
	tv, err := b.overseerr.GetTv(ctx, tmdbID)
	if err != nil {
		return notify.MediaSummary{}, nil, err
	}
	return notify.MediaSummary{
		Title:       tv.Name,
		Overview:    tv.Overview,
		PosterPath:  tv.PosterPath,
		ReleaseDate: tv.FirstAirDate,
	}, tv.ExternalIDs.TvdbID, nil
}

// --- admin approve / deny ---

func (b *Bot) requireManager(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	perms, err := b.resolvePermissions(ctx, interactionUserID(i))
	if err != nil {
		log.Printf("bot: %v", err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return false
	}
	if !canManageRequests(perms) {
		respondEphemeral(s, i, "You don't have permission to manage requests.")
		return false
	}
	return true
}

func (b *Bot) handleAdminApprove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, payload string) {
	pendingID, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "Invalid request.")
		return
	}
	if !b.requireManager(ctx, s, i) {
		return
	}

	pending, err := b.store.GetPending(pendingID)
	if err != nil {
		log.Printf("bot: read pending %d: %v", pendingID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	if pending == nil {
		respondEphemeral(s, i, "This request is no longer pending.")
		return
	}

	// Bot-created pendings have no Overseerr request yet; create it now.
	requestID := uint64(0)
	if pending.OverseerrRequestID != nil {
		requestID = *pending.OverseerrRequestID
		if _, err := b.overseerr.ApproveRequest(ctx, requestID); err != nil {
			log.Printf("bot: approve request %d: %v", requestID, err)
			respondEphemeral(s, i, "Failed to approve request.")
			return
		}
	} else {
		created, err := b.overseerr.CreateRequest(ctx, overseerr.CreateRequestBody{
			MediaType: pending.MediaType,
			MediaID:   pending.TmdbID,
			Is4K:      pending.Is4K,
			Seasons:   types.DecodeSeasons(pending.Seasons),
		})
		if err != nil {
			log.Printf("bot: create request for pending %d: %v", pendingID, err)
			respondEphemeral(s, i, "Failed to approve request.")
			return
		}
		requestID = created.ID
		if created.Status == overseerr.RequestPending {
			if _, err := b.overseerr.ApproveRequest(ctx, requestID); err != nil {
				log.Printf("bot: approve request %d: %v", requestID, err)
			}
		}
	}

	// The prompt message becomes the tracked status message.
	tracked := &types.TrackedRequest{
		RequestID:     requestID,
		TmdbID:        pending.TmdbID,
		MediaType:     pending.MediaType,
		DiscordUserID: pending.DiscordUserID,
		ChannelID:     pending.ChannelID,
		MessageID:     pending.MessageID,
		ThreadID:      pending.ThreadID,
		Title:         pending.Title,
		PosterPath:    pending.PosterPath,
		Is4K:          pending.Is4K,
	}
	if err := b.store.UpsertTracked(tracked); err != nil {
		log.Printf("bot: store tracked %d: %v", requestID, err)
	}
	if err := b.store.RemovePending(pendingID); err != nil {
		log.Printf("bot: remove pending %d: %v", pendingID, err)
	}

	admin := interactionUserID(i)
	b.repaintPrompt(s, i, "Approved", 0x2ecc71)

	if pending.ThreadID != "" {
		if err := b.dispatcher.PostThreadMessage(pending.ThreadID, fmt.Sprintf("Request approved by <@%s>.", admin)); err != nil {
			log.Printf("bot: approval thread note: %v", err)
		}
	}
	log.Printf("bot: request %d approved (pending %d)", requestID, pendingID)
}

func (b *Bot) handleAdminDeny(s *discordgo.Session, i *discordgo.InteractionCreate, payload string) {
	// Reason collected via modal; permission check happens on submit.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: idDenyReason + ":" + payload,
			Title:    "Deny Request",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "reason",
							Label:       "Reason (optional)",
							Style:       discordgo.TextInputShort,
							Placeholder: "Why is this request being denied?",
							Required:    false,
							MaxLength:   200,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("bot: deny modal: %v", err)
	}
}

func (b *Bot) handleDenyReason(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, payload string) {
	pendingID, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "Invalid request.")
		return
	}
	if !b.requireManager(ctx, s, i) {
		return
	}

	pending, err := b.store.GetPending(pendingID)
	if err != nil {
		log.Printf("bot: read pending %d: %v", pendingID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	if pending == nil {
		respondEphemeral(s, i, "This request is no longer pending.")
		return
	}

	var reason string
	for _, row := range i.ModalSubmitData().Components {
		if ar, ok := row.(*discordgo.ActionsRow); ok {
			for _, comp := range ar.Components {
				if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == "reason" {
					reason = strings.TrimSpace(input.Value)
				}
			}
		}
	}

	if pending.OverseerrRequestID != nil {
		if _, err := b.overseerr.DeclineRequest(ctx, *pending.OverseerrRequestID); err != nil {
			log.Printf("bot: decline request %d: %v", *pending.OverseerrRequestID, err)
		}
	}

	if err := b.store.RemovePending(pendingID); err != nil {
		log.Printf("bot: remove pending %d: %v", pendingID, err)
	}

	admin := interactionUserID(i)
	b.repaintPrompt(s, i, "Denied", 0xe74c3c)

	if pending.ThreadID != "" {
		note := fmt.Sprintf("Request denied by <@%s>.", admin)
		if reason != "" {
			note += " Reason: " + reason
		}
		if pending.DiscordUserID != "" {
			note = fmt.Sprintf("<@%s> %s", pending.DiscordUserID, note)
		}
		if err := b.dispatcher.PostThreadMessage(pending.ThreadID, note); err != nil {
			log.Printf("bot: denial thread note: %v", err)
		}
	}
	log.Printf("bot: pending %d denied (reason %q)", pendingID, reason)
}

// repaintPrompt rewrites the admin prompt's status field and strips its
// buttons once a decision lands.
func (b *Bot) repaintPrompt(s *discordgo.Session, i *discordgo.InteractionCreate, status string, color int) {
	if i.Message == nil || len(i.Message.Embeds) == 0 {
		respondEphemeral(s, i, status+".")
		return
	}

	embed := i.Message.Embeds[0]
	embed.Color = color
	for _, field := range embed.Fields {
		if field.Name == "Status" {
			field.Value = status
		}
	}

	empty := []discordgo.MessageComponent{}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: empty,
		},
	})
	if err != nil {
		log.Printf("bot: repaint prompt: %v", err)
	}
}

// --- status, link, admin views ---

func (b *Bot) handleStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	tracked, err := b.store.ListTrackedByUser(userID)
	if err != nil {
		log.Printf("bot: list tracked for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	if len(tracked) == 0 {
		respondEphemeral(s, i, "You have no open requests.")
		return
	}

	var sb strings.Builder
	for _, req := range tracked {
		line := fmt.Sprintf("• **%s** (%s)", req.Title, req.MediaType)
		if req.LastProgress != nil {
			line += fmt.Sprintf(": %.0f%% downloaded", *req.LastProgress)
		} else {
			line += ": waiting for download"
		}
		sb.WriteString(line + "\n")
	}
	respondEphemeral(s, i, sb.String())
}

// subOptions maps the options of the invoked subcommand by name.
func subOptions(sub *discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		opts[opt.Name] = opt
	}
	return opts
}

func (b *Bot) handleRadarr(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(ctx, s, i) {
		return
	}
	sub := i.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "queue":
		items, err := b.radarr.FetchQueue(ctx, 1, 25)
		if err != nil {
			log.Printf("bot: radarr queue: %v", err)
			respondEphemeral(s, i, "Failed to fetch the Radarr queue.")
			return
		}
		respondEphemeral(s, i, formatQueue("Radarr", items))
	case "calendar":
		start := time.Now().Format("2006-01-02")
		end := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		movies, err := b.radarr.GetCalendar(ctx, start, end)
		if err != nil {
			log.Printf("bot: radarr calendar: %v", err)
			respondEphemeral(s, i, "Failed to fetch the Radarr calendar.")
			return
		}
		if len(movies) == 0 {
			respondEphemeral(s, i, "No movie releases in the next 7 days.")
			return
		}
		var sb strings.Builder
		sb.WriteString("Upcoming movies:\n")
		for _, m := range movies {
			sb.WriteString(fmt.Sprintf("• **%s** (%d)\n", m.Title, m.Year))
		}
		respondEphemeral(s, i, sb.String())
	case "retry":
		id := subOptions(sub)["id"].IntValue()
		if err := b.radarr.RetryQueueItem(ctx, id); err != nil {
			log.Printf("bot: radarr retry %d: %v", id, err)
			respondEphemeral(s, i, "Failed to retry the queue item.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Retry triggered for queue item %d.", id))
	case "remove":
		opts := subOptions(sub)
		id := opts["id"].IntValue()
		blocklist := false
		if opt, ok := opts["blocklist"]; ok {
			blocklist = opt.BoolValue()
		}
		if err := b.radarr.RemoveQueueItem(ctx, id, true, blocklist); err != nil {
			log.Printf("bot: radarr remove %d: %v", id, err)
			respondEphemeral(s, i, "Failed to remove the queue item.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Removed queue item %d.", id))
	case "search":
		id := uint64(subOptions(sub)["id"].IntValue())
		if err := b.radarr.SearchMovies(ctx, []uint64{id}); err != nil {
			log.Printf("bot: radarr search %d: %v", id, err)
			respondEphemeral(s, i, "Failed to trigger the search.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Search triggered for movie %d.", id))
	}
}

func (b *Bot) handleSonarr(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(ctx, s, i) {
		return
	}
	sub := i.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "queue":
		items, err := b.sonarr.FetchQueue(ctx, 1, 25)
		if err != nil {
			log.Printf("bot: sonarr queue: %v", err)
			respondEphemeral(s, i, "Failed to fetch the Sonarr queue.")
			return
		}
		respondEphemeral(s, i, formatQueue("Sonarr", items))
	case "calendar":
		start := time.Now().Format("2006-01-02")
		end := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		entries, err := b.sonarr.GetCalendar(ctx, start, end)
		if err != nil {
			log.Printf("bot: sonarr calendar: %v", err)
			respondEphemeral(s, i, "Failed to fetch the Sonarr calendar.")
			return
		}
		if len(entries) == 0 {
			respondEphemeral(s, i, "No episodes airing in the next 7 days.")
			return
		}
		var sb strings.Builder
		sb.WriteString("Upcoming episodes:\n")
		for _, e := range entries {
			sb.WriteString(fmt.Sprintf("• **%s** S%02dE%02d %s\n", e.Series.Title, e.SeasonNumber, e.EpisodeNumber, e.Title))
		}
		respondEphemeral(s, i, sb.String())
	case "retry":
		id := subOptions(sub)["id"].IntValue()
		if err := b.sonarr.RetryQueueItem(ctx, id); err != nil {
			log.Printf("bot: sonarr retry %d: %v", id, err)
			respondEphemeral(s, i, "Failed to retry the queue item.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Retry triggered for queue item %d.", id))
	case "remove":
		opts := subOptions(sub)
		id := opts["id"].IntValue()
		blocklist := false
		if opt, ok := opts["blocklist"]; ok {
			blocklist = opt.BoolValue()
		}
		if err := b.sonarr.RemoveQueueItem(ctx, id, true, blocklist); err != nil {
			log.Printf("bot: sonarr remove %d: %v", id, err)
			respondEphemeral(s, i, "Failed to remove the queue item.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Removed queue item %d.", id))
	case "search":
		id := uint64(subOptions(sub)["id"].IntValue())
		if err := b.sonarr.SearchSeries(ctx, id); err != nil {
			log.Printf("bot: sonarr search %d: %v", id, err)
			respondEphemeral(s, i, "Failed to trigger the search.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Search triggered for series %d.", id))
	}
}

func formatQueue(name string, items []arr.QueueItem) string {
	if len(items) == 0 {
		return name + " queue is empty."
	}
	var sb strings.Builder
	sb.WriteString(name + " queue:\n")
	for _, item := range items {
		line := fmt.Sprintf("• `#%d` **%s** %.0f%%", item.ID, item.Title, item.Progress())
		if item.TimeLeft != "" {
			line += " (ETA " + item.TimeLeft + ")"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func clamp(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
