package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cryptiklemur/discordarr/src/types"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

const (
	colorPending     = 0xf39c12
	colorApproved    = 0x3498db
	colorDownloading = 0x9b59b6
	colorAvailable   = 0x2ecc71
)

func posterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return posterBaseURL + posterPath
}

func mediaTypeLabel(mediaType string, is4k bool) string {
	label := "Movie"
	if mediaType == types.MediaTypeTV {
		label = "TV Show"
	}
	if is4k {
		label += " (4K)"
	}
	return label
}

func buildRequestEmbed(media MediaSummary, requestedBy, mediaType string, is4k bool, seasons []int, status string, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       media.Title,
		Description: truncateOverview(media.Overview),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Requested By", Value: orDash(requestedBy), Inline: true},
			{Name: "Type", Value: mediaTypeLabel(mediaType, is4k), Inline: true},
			{Name: "Status", Value: status, Inline: true},
		},
	}
	if len(seasons) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Seasons", Value: formatSeasons(seasons), Inline: true,
		})
	}
	if media.ReleaseDate != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Release", Value: media.ReleaseDate, Inline: true,
		})
	}
	if url := posterURL(media.PosterPath); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func buildProgressEmbed(info StatusInfo) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s - Downloading", info.Title),
		Color: colorDownloading,
	}
	if info.Progress != nil {
		embed.Description = fmt.Sprintf("%s %.1f%%", progressBar(*info.Progress), *info.Progress)
	}
	var fields []*discordgo.MessageEmbedField
	if info.Size > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Size", Value: fmt.Sprintf("%s / %s", formatBytes(info.Size-info.SizeLeft), formatBytes(info.Size)), Inline: true,
		})
	}
	if info.Eta != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "ETA", Value: info.Eta, Inline: true})
	}
	if info.Quality != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Quality", Value: info.Quality, Inline: true})
	}
	embed.Fields = fields
	if url := posterURL(info.PosterPath); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func buildAvailableEmbed(title, posterPath, mediaType string, is4k bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: colorAvailable,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: mediaTypeLabel(mediaType, is4k), Inline: true},
			{Name: "Status", Value: "Available", Inline: true},
		},
	}
	if url := posterURL(posterPath); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func buildAvailableDMEmbed(title, posterPath string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s is ready to watch!", title),
		Description: "Your request has finished downloading and is now available.",
		Color:       colorAvailable,
	}
	if url := posterURL(posterPath); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func progressBar(percent float64) string {
	const width = 12
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatBytes(n float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}

func formatSeasons(seasons []int) string {
	parts := make([]string, 0, len(seasons))
	for _, s := range seasons {
		parts = append(parts, fmt.Sprintf("%d", s))
	}
	return strings.Join(parts, ", ")
}

func truncateOverview(overview string) string {
	if len(overview) <= 300 {
		return overview
	}
	return overview[:297] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "Unknown User"
	}
	return s
}
