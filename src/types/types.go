package types

import (
	"strconv"
	"strings"
	"time"
)

// Media kinds
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// Pending request phases
const (
	PhaseUnposted = "unposted"
	PhasePosted   = "posted"
)

// PendingRequest is a request waiting on an admin approve/deny decision.
// At most one row exists per Overseerr request id.
type PendingRequest struct {
	ID                 uint64  `gorm:"primaryKey;autoIncrement"`
	OverseerrRequestID *uint64 `gorm:"uniqueIndex"`
	TmdbID             uint64  `gorm:"not null"`
	MediaType          string  `gorm:"size:8;not null"`
	DiscordUserID      string  `gorm:"size:64"`
	OverseerrUserID    uint64  `gorm:"not null"`
	Is4K               bool    `gorm:"default:false"`
	Seasons            string  `gorm:"size:256"`
	Title              string  `gorm:"size:256"`
	PosterPath         string  `gorm:"size:256"`
	Phase              string  `gorm:"size:16;not null;default:unposted"`
	ChannelID          string  `gorm:"size:64"`
	MessageID          string  `gorm:"size:64"`
	ThreadID           string  `gorm:"size:64"`
	PendingChannelID   string  `gorm:"size:64"`
	PendingMessageID   string  `gorm:"size:64"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TrackedRequest is an approved request awaiting fulfillment. Keyed by the
// Overseerr request id. TvdbID is resolved lazily for tv requests because it
// comes from a different service than the one that creates the row.
type TrackedRequest struct {
	RequestID           uint64  `gorm:"primaryKey"`
	TmdbID              uint64  `gorm:"not null;index"`
	TvdbID              *uint64 `gorm:"index"`
	MediaType           string  `gorm:"size:8;not null"`
	DiscordUserID       string  `gorm:"size:64"`
	ChannelID           string  `gorm:"size:64"`
	MessageID           string  `gorm:"size:64"`
	ThreadID            string  `gorm:"size:64"`
	LastThreadMessageID string  `gorm:"size:64"`
	LastProgress        *float64
	Title               string `gorm:"size:256"`
	PosterPath          string `gorm:"size:256"`
	Is4K                bool   `gorm:"default:false"`
	CaughtUpNotified    bool   `gorm:"default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EncodeSeasons renders a season list as the comma form stored on
// PendingRequest.Seasons.
func EncodeSeasons(seasons []int) string {
	if len(seasons) == 0 {
		return ""
	}
	parts := make([]string, 0, len(seasons))
	for _, s := range seasons {
		parts = append(parts, strconv.Itoa(s))
	}
	return strings.Join(parts, ",")
}

// DecodeSeasons parses the stored season list.
func DecodeSeasons(encoded string) []int {
	if encoded == "" {
		return nil
	}
	var seasons []int
	for _, part := range strings.Split(encoded, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		seasons = append(seasons, n)
	}
	return seasons
}
