package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░░░]", progressBar(0))
	assert.Equal(t, "[████████████]", progressBar(100))
	assert.Equal(t, "[██████░░░░░░]", progressBar(50))
	// out-of-range values are clamped
	assert.Equal(t, "[░░░░░░░░░░░░]", progressBar(-5))
	assert.Equal(t, "[████████████]", progressBar(150))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512.0 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 GB", formatBytes(1.5*1024*1024*1024))
}

func TestBuildRequestEmbed(t *testing.T) {
	media := MediaSummary{Title: "Fight Club", Overview: "An insomniac...", PosterPath: "/fc.jpg", ReleaseDate: "1999-10-15"}
	embed := buildRequestEmbed(media, "alice", "movie", false, nil, "Pending Approval", colorPending)

	assert.Equal(t, "Fight Club", embed.Title)
	assert.Equal(t, colorPending, embed.Color)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, posterBaseURL+"/fc.jpg", embed.Thumbnail.URL)

	var status, typ string
	for _, f := range embed.Fields {
		switch f.Name {
		case "Status":
			status = f.Value
		case "Type":
			typ = f.Value
		}
	}
	assert.Equal(t, "Pending Approval", status)
	assert.Equal(t, "Movie", typ)
}

func TestBuildRequestEmbedSeasons(t *testing.T) {
	embed := buildRequestEmbed(MediaSummary{Title: "GoT"}, "", "tv", true, []int{1, 2, 3}, "Approved", colorApproved)

	var seasons, typ, requestedBy string
	for _, f := range embed.Fields {
		switch f.Name {
		case "Seasons":
			seasons = f.Value
		case "Type":
			typ = f.Value
		case "Requested By":
			requestedBy = f.Value
		}
	}
	assert.Equal(t, "1, 2, 3", seasons)
	assert.Equal(t, "TV Show (4K)", typ)
	assert.Equal(t, "Unknown User", requestedBy)
}

func TestTruncateOverview(t *testing.T) {
	short := "short overview"
	assert.Equal(t, short, truncateOverview(short))

	long := strings.Repeat("a", 400)
	got := truncateOverview(long)
	assert.Len(t, got, 300)
	assert.True(t, strings.HasSuffix(got, "..."))
}
