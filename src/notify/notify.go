package notify

import (
	"github.com/cryptiklemur/discordarr/src/types"
)

// MediaSummary carries the display fields the dispatcher needs to render a
// request announcement.
type MediaSummary struct {
	Title       string
	Overview    string
	PosterPath  string
	ReleaseDate string
	VoteAverage float64
}

// PostResult reports where an announcement landed.
type PostResult struct {
	ChannelID string
	MessageID string
	ThreadID  string
}

// StatusInfo is a progress snapshot for a tracked request's thread message.
type StatusInfo struct {
	Title      string
	PosterPath string
	Status     string
	Progress   *float64
	Size       float64
	SizeLeft   float64
	Eta        string
	Quality    string
}

// Dispatcher turns reconciliation decisions into Discord side effects. Every
// operation is best-effort: callers log failures and move on, they never
// propagate them as reconciliation failures.
type Dispatcher interface {
	// PostAdminPrompt sends the approve/deny prompt for a pending request
	// and opens its discussion thread.
	PostAdminPrompt(req *types.PendingRequest, media MediaSummary, displayName string) (PostResult, error)
	// PostAutoApproved announces a request approved outside the bot.
	PostAutoApproved(req *types.TrackedRequest, media MediaSummary, seasons []int, requestedBy string) (PostResult, error)
	// UpdateThreadProgress edits the request's progress message in its
	// thread, sending a fresh one if the old message is gone. Returns the id
	// of the message now holding the progress embed.
	UpdateThreadProgress(req *types.TrackedRequest, info StatusInfo) (string, error)
	// PostThreadMessage drops a one-off line into a thread.
	PostThreadMessage(threadID, content string) error
	// MarkMessageAvailable repaints a status message for the terminal
	// available state and strips its components.
	MarkMessageAvailable(req *types.TrackedRequest) error
	// SendAvailableDM notifies the requester directly.
	SendAvailableDM(discordUserID, title, posterPath string) error
	// ResolveDisplayName looks up a Discord user's display name.
	ResolveDisplayName(discordUserID string) (string, error)
}
