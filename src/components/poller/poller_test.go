package poller_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/cryptiklemur/discordarr/src/arr"
	"github.com/cryptiklemur/discordarr/src/components/poller"
	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/overseerr"
	"github.com/cryptiklemur/discordarr/src/types"
	"github.com/cryptiklemur/discordarr/src/webclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApprovals struct {
	requests []overseerr.Request
	movies   map[uint64]*overseerr.Movie
	tvs      map[uint64]*overseerr.Tv
	users    map[uint64]*overseerr.User
	settings map[uint64]*overseerr.NotificationSettings
}

func (f *fakeApprovals) ListRequests(ctx context.Context, take, skip int, filter, sort string) ([]overseerr.Request, error) {
	return f.requests, nil
}

func (f *fakeApprovals) GetRequest(ctx context.Context, requestID uint64) (*overseerr.Request, error) {
	for i := range f.requests {
		if f.requests[i].ID == requestID {
			return &f.requests[i], nil
		}
	}
	return nil, &webclient.StatusError{Method: "GET", Path: fmt.Sprintf("/api/v1/request/%d", requestID), Status: 404}
}

func (f *fakeApprovals) GetMovie(ctx context.Context, tmdbID uint64) (*overseerr.Movie, error) {
	if m, ok := f.movies[tmdbID]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("movie %d not found", tmdbID)
}

func (f *fakeApprovals) GetTv(ctx context.Context, tmdbID uint64) (*overseerr.Tv, error) {
	if tv, ok := f.tvs[tmdbID]; ok {
		return tv, nil
	}
	return nil, fmt.Errorf("tv %d not found", tmdbID)
}

func (f *fakeApprovals) GetUser(ctx context.Context, userID uint64) (*overseerr.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d not found", userID)
}

func (f *fakeApprovals) GetUserNotificationSettings(ctx context.Context, userID uint64) (*overseerr.NotificationSettings, error) {
	if s, ok := f.settings[userID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("settings for user %d not found", userID)
}

type fakeQueue struct {
	kind  string
	items []arr.QueueItem
	err   error
}

func (f *fakeQueue) Kind() string { return f.kind }

func (f *fakeQueue) FetchQueue(ctx context.Context, page, pageSize int) ([]arr.QueueItem, error) {
	return f.items, f.err
}

func (f *fakeQueue) Matches(item arr.QueueItem, req *types.TrackedRequest) bool {
	if f.kind == types.MediaTypeMovie {
		return item.TmdbID != 0 && item.TmdbID == req.TmdbID
	}
	return req.TvdbID != nil && item.TvdbID != 0 && item.TvdbID == *req.TvdbID
}

type fakeSeries struct {
	series map[uint64]*arr.SonarrSeries
}

func (f *fakeSeries) GetSeriesByTvdbID(ctx context.Context, tvdbID uint64) (*arr.SonarrSeries, error) {
	return f.series[tvdbID], nil
}

type fakeDispatcher struct {
	adminPrompts    int
	autoApproved    int
	threadMessages  []string
	progressUpdates []notify.StatusInfo
	availableMarks  int
	dms             int
}

func (f *fakeDispatcher) PostAdminPrompt(req *types.PendingRequest, media notify.MediaSummary, displayName string) (notify.PostResult, error) {
	f.adminPrompts++
	return notify.PostResult{ChannelID: "chan", MessageID: "msg", ThreadID: "thread"}, nil
}

func (f *fakeDispatcher) PostAutoApproved(req *types.TrackedRequest, media notify.MediaSummary, seasons []int, requestedBy string) (notify.PostResult, error) {
	f.autoApproved++
	return notify.PostResult{ChannelID: "chan", MessageID: "msg", ThreadID: "thread"}, nil
}

func (f *fakeDispatcher) UpdateThreadProgress(req *types.TrackedRequest, info notify.StatusInfo) (string, error) {
	f.progressUpdates = append(f.progressUpdates, info)
	return "progress-msg", nil
}

func (f *fakeDispatcher) PostThreadMessage(threadID, content string) error {
	f.threadMessages = append(f.threadMessages, content)
	return nil
}

func (f *fakeDispatcher) MarkMessageAvailable(req *types.TrackedRequest) error {
	f.availableMarks++
	return nil
}

func (f *fakeDispatcher) SendAvailableDM(discordUserID, title, posterPath string) error {
	f.dms++
	return nil
}

func (f *fakeDispatcher) ResolveDisplayName(discordUserID string) (string, error) {
	return "Tester", nil
}

type harness struct {
	poller     *poller.Poller
	store      *data.Store
	approvals  *fakeApprovals
	dispatcher *fakeDispatcher
	movieQueue *fakeQueue
	tvQueue    *fakeQueue
	series     *fakeSeries
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := data.ConnectSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))

	h := &harness{
		store: data.NewStore(db),
		approvals: &fakeApprovals{
			movies:   map[uint64]*overseerr.Movie{},
			tvs:      map[uint64]*overseerr.Tv{},
			users:    map[uint64]*overseerr.User{},
			settings: map[uint64]*overseerr.NotificationSettings{},
		},
		dispatcher: &fakeDispatcher{},
		movieQueue: &fakeQueue{kind: types.MediaTypeMovie},
		tvQueue:    &fakeQueue{kind: types.MediaTypeTV},
		series:     &fakeSeries{series: map[uint64]*arr.SonarrSeries{}},
	}
	h.poller = poller.New(
		h.store,
		h.approvals,
		[]arr.QueueService{h.movieQueue, h.tvQueue},
		h.series,
		h.dispatcher,
		log.New(io.Discard, "", 0),
	)
	return h
}

func movieRequest(id uint64, status int, tmdbID uint64) overseerr.Request {
	return overseerr.Request{
		ID:     id,
		Status: status,
		Type:   types.MediaTypeMovie,
		Media:  overseerr.Media{TmdbID: tmdbID, Status: overseerr.MediaProcessing},
		RequestedBy: overseerr.User{
			ID:          1,
			DisplayName: "alice",
			Settings:    &overseerr.UserSettings{DiscordID: "discord-alice"},
		},
	}
}

func TestDiscoveryPostsPendingPromptOnce(t *testing.T) {
	h := newHarness(t)
	h.approvals.requests = []overseerr.Request{movieRequest(42, overseerr.RequestPending, 550)}
	h.approvals.movies[550] = &overseerr.Movie{Title: "Fight Club", PosterPath: "/fc.jpg"}

	ctx := context.Background()
	h.poller.PollRequests(ctx)

	assert.Equal(t, 1, h.dispatcher.adminPrompts)
	pending, err := h.store.FindPendingByOverseerrID(42)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, types.PhasePosted, pending.Phase)
	assert.Equal(t, "msg", pending.MessageID)
	assert.Equal(t, "discord-alice", pending.DiscordUserID)

	// a second cycle sees the stored record and posts nothing
	h.poller.PollRequests(ctx)
	assert.Equal(t, 1, h.dispatcher.adminPrompts)
}

func TestDiscoveryTracksExternallyApproved(t *testing.T) {
	h := newHarness(t)
	h.approvals.requests = []overseerr.Request{movieRequest(43, overseerr.RequestApproved, 550)}
	h.approvals.movies[550] = &overseerr.Movie{Title: "Fight Club"}

	ctx := context.Background()
	h.poller.PollRequests(ctx)

	assert.Equal(t, 1, h.dispatcher.autoApproved)
	tracked, err := h.store.GetTracked(43)
	require.NoError(t, err)
	require.NotNil(t, tracked)
	assert.Equal(t, "msg", tracked.MessageID)
	assert.Equal(t, "thread", tracked.ThreadID)
	assert.Equal(t, "Fight Club", tracked.Title)

	h.poller.PollRequests(ctx)
	assert.Equal(t, 1, h.dispatcher.autoApproved)
}

func TestDiscoverySkipsDeclinedAndAvailable(t *testing.T) {
	h := newHarness(t)
	declined := movieRequest(1, overseerr.RequestDeclined, 100)
	available := movieRequest(2, overseerr.RequestApproved, 200)
	available.Media.Status = overseerr.MediaAvailable
	h.approvals.requests = []overseerr.Request{declined, available}

	h.poller.PollRequests(context.Background())

	assert.Zero(t, h.dispatcher.adminPrompts)
	assert.Zero(t, h.dispatcher.autoApproved)
	all, err := h.store.ListTracked()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func seedTrackedMovie(t *testing.T, h *harness, lastProgress *float64) {
	t.Helper()
	require.NoError(t, h.store.UpsertTracked(&types.TrackedRequest{
		RequestID:     10,
		TmdbID:        550,
		MediaType:     types.MediaTypeMovie,
		DiscordUserID: "discord-alice",
		ChannelID:     "chan",
		MessageID:     "msg",
		ThreadID:      "thread",
		Title:         "Fight Club",
		LastProgress:  lastProgress,
	}))
}

func TestProgressUpdateSuppressedUnderThreshold(t *testing.T) {
	h := newHarness(t)
	last := 40.0
	seedTrackedMovie(t, h, &last)

	// 43% complete: a 3 point change stays quiet
	h.movieQueue.items = []arr.QueueItem{{ID: 1, TmdbID: 550, Size: 100, SizeLeft: 57}}
	h.poller.PollQueues(context.Background())
	assert.Empty(t, h.dispatcher.progressUpdates)

	tracked, err := h.store.GetTracked(10)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, *tracked.LastProgress, 0.001)
}

func TestProgressUpdatePushedOverThreshold(t *testing.T) {
	h := newHarness(t)
	last := 40.0
	seedTrackedMovie(t, h, &last)

	h.movieQueue.items = []arr.QueueItem{{ID: 1, TmdbID: 550, Size: 100, SizeLeft: 54, TimeLeft: "00:10:00", Quality: "WEBDL-1080p"}}
	h.poller.PollQueues(context.Background())

	require.Len(t, h.dispatcher.progressUpdates, 1)
	info := h.dispatcher.progressUpdates[0]
	require.NotNil(t, info.Progress)
	assert.InDelta(t, 46.0, *info.Progress, 0.001)
	assert.Equal(t, "WEBDL-1080p", info.Quality)

	tracked, err := h.store.GetTracked(10)
	require.NoError(t, err)
	assert.InDelta(t, 46.0, *tracked.LastProgress, 0.001)
	assert.Equal(t, "progress-msg", tracked.LastThreadMessageID)
}

func seedTrackedSeries(t *testing.T, h *harness, tvdbID uint64) {
	t.Helper()
	require.NoError(t, h.store.UpsertTracked(&types.TrackedRequest{
		RequestID:     20,
		TmdbID:        1399,
		TvdbID:        &tvdbID,
		MediaType:     types.MediaTypeTV,
		DiscordUserID: "discord-alice",
		ChannelID:     "chan",
		MessageID:     "msg",
		ThreadID:      "thread",
		Title:         "Game of Thrones",
	}))
}

func episodeItem(id int64, tvdbID uint64, key string, sizeLeft float64) arr.QueueItem {
	return arr.QueueItem{ID: id, TvdbID: tvdbID, EpisodeKey: key, Size: 100, SizeLeft: sizeLeft}
}

func TestEpisodeCompletionNoticeFiresOnce(t *testing.T) {
	h := newHarness(t)
	seedTrackedSeries(t, h, 121361)

	ctx := context.Background()

	h.tvQueue.items = []arr.QueueItem{
		episodeItem(1, 121361, "S01E01", 10),
		episodeItem(2, 121361, "S01E02", 80),
	}
	h.poller.PollQueues(ctx)
	assert.Empty(t, h.dispatcher.threadMessages)

	// S01E01 left the queue
	h.tvQueue.items = []arr.QueueItem{episodeItem(2, 121361, "S01E02", 60)}
	h.poller.PollQueues(ctx)

	require.Len(t, h.dispatcher.threadMessages, 1)
	assert.Contains(t, h.dispatcher.threadMessages[0], "S01E01")

	// steady state: no repeat notice
	h.poller.PollQueues(ctx)
	assert.Len(t, h.dispatcher.threadMessages, 1)
}

func TestEpisodeProgressAggregatesItems(t *testing.T) {
	h := newHarness(t)
	seedTrackedSeries(t, h, 121361)

	h.tvQueue.items = []arr.QueueItem{
		episodeItem(1, 121361, "S01E01", 50),
		episodeItem(2, 121361, "S01E02", 30),
	}
	h.poller.PollQueues(context.Background())

	require.Len(t, h.dispatcher.progressUpdates, 1)
	info := h.dispatcher.progressUpdates[0]
	assert.InDelta(t, 200.0, info.Size, 0.001)
	assert.InDelta(t, 80.0, info.SizeLeft, 0.001)
	require.NotNil(t, info.Progress)
	assert.InDelta(t, 60.0, *info.Progress, 0.001)
}

func TestCaughtUpNoticeFiresOnce(t *testing.T) {
	h := newHarness(t)
	seedTrackedSeries(t, h, 121361)
	h.series.series[121361] = &arr.SonarrSeries{
		TvdbID:     121361,
		Statistics: &arr.SeriesStatistics{EpisodeFileCount: 8, EpisodeCount: 8},
	}

	ctx := context.Background()
	h.poller.PollQueues(ctx)

	require.Len(t, h.dispatcher.threadMessages, 1)
	assert.Contains(t, h.dispatcher.threadMessages[0], "caught up")

	tracked, err := h.store.GetTracked(20)
	require.NoError(t, err)
	assert.True(t, tracked.CaughtUpNotified)

	// guard is persisted, not in-memory
	h.poller.PollQueues(ctx)
	assert.Len(t, h.dispatcher.threadMessages, 1)
}

func TestCaughtUpWaitsForAllEpisodes(t *testing.T) {
	h := newHarness(t)
	seedTrackedSeries(t, h, 121361)
	h.series.series[121361] = &arr.SonarrSeries{
		TvdbID:     121361,
		Statistics: &arr.SeriesStatistics{EpisodeFileCount: 5, EpisodeCount: 8},
	}

	h.poller.PollQueues(context.Background())
	assert.Empty(t, h.dispatcher.threadMessages)
}

func TestAvailabilityTerminalTransition(t *testing.T) {
	h := newHarness(t)
	seedTrackedMovie(t, h, nil)
	req := movieRequest(10, overseerr.RequestApproved, 550)
	req.Media.Status = overseerr.MediaAvailable
	h.approvals.requests = []overseerr.Request{req}

	h.poller.CheckAvailability(context.Background())

	require.Len(t, h.dispatcher.threadMessages, 1)
	assert.Contains(t, h.dispatcher.threadMessages[0], "available")
	assert.Equal(t, 1, h.dispatcher.availableMarks)
	assert.Equal(t, 1, h.dispatcher.dms)

	tracked, err := h.store.GetTracked(10)
	require.NoError(t, err)
	assert.Nil(t, tracked)
}

func TestAvailabilityChecks4KStatusFor4KRequests(t *testing.T) {
	h := newHarness(t)
	tracked := &types.TrackedRequest{
		RequestID: 10, TmdbID: 550, MediaType: types.MediaTypeMovie,
		ChannelID: "chan", MessageID: "msg", Is4K: true, Title: "Fight Club",
	}
	require.NoError(t, h.store.UpsertTracked(tracked))

	// standard copy available, 4K copy still processing
	req := movieRequest(10, overseerr.RequestApproved, 550)
	req.Media.Status = overseerr.MediaAvailable
	req.Media.Status4K = overseerr.MediaProcessing
	h.approvals.requests = []overseerr.Request{req}

	h.poller.CheckAvailability(context.Background())

	got, err := h.store.GetTracked(10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Zero(t, h.dispatcher.dms)
}

func TestExternallyDeclinedDroppedQuietly(t *testing.T) {
	h := newHarness(t)
	seedTrackedMovie(t, h, nil)
	req := movieRequest(10, overseerr.RequestDeclined, 550)
	h.approvals.requests = []overseerr.Request{req}

	h.poller.CheckAvailability(context.Background())

	tracked, err := h.store.GetTracked(10)
	require.NoError(t, err)
	assert.Nil(t, tracked)
	assert.Empty(t, h.dispatcher.threadMessages)
	assert.Zero(t, h.dispatcher.dms)
}

func TestDeletedUpstreamDroppedQuietly(t *testing.T) {
	h := newHarness(t)
	seedTrackedMovie(t, h, nil)
	// approvals knows nothing about request 10, so the lookup 404s

	h.poller.CheckAvailability(context.Background())

	tracked, err := h.store.GetTracked(10)
	require.NoError(t, err)
	assert.Nil(t, tracked)
	assert.Empty(t, h.dispatcher.threadMessages)
	assert.Zero(t, h.dispatcher.dms)
}

func TestBackfillResolvesTvdbID(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.UpsertTracked(&types.TrackedRequest{
		RequestID: 30, TmdbID: 1399, MediaType: types.MediaTypeTV, Title: "Game of Thrones",
	}))
	tvdb := uint64(121361)
	h.approvals.tvs[1399] = &overseerr.Tv{Name: "Game of Thrones", ExternalIDs: overseerr.ExternalIDs{TvdbID: &tvdb}}

	h.poller.BackfillTvdbIDs(context.Background())

	tracked, err := h.store.GetTracked(30)
	require.NoError(t, err)
	require.NotNil(t, tracked.TvdbID)
	assert.Equal(t, tvdb, *tracked.TvdbID)
}

func TestHydrateSeedsOnlyOpenApproved(t *testing.T) {
	h := newHarness(t)
	approved := movieRequest(1, overseerr.RequestApproved, 100)
	pending := movieRequest(2, overseerr.RequestPending, 200)
	done := movieRequest(3, overseerr.RequestApproved, 300)
	done.Media.Status = overseerr.MediaAvailable
	h.approvals.requests = []overseerr.Request{approved, pending, done}
	h.approvals.movies[100] = &overseerr.Movie{Title: "Tracked Movie"}

	require.NoError(t, h.poller.Hydrate(context.Background()))

	all, err := h.store.ListTracked()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint64(1), all[0].RequestID)
	assert.Equal(t, "Tracked Movie", all[0].Title)
	// hydration never posts announcements
	assert.Zero(t, h.dispatcher.autoApproved)
}

func TestQueueFetchFailureTreatedAsEmpty(t *testing.T) {
	h := newHarness(t)
	last := 40.0
	seedTrackedMovie(t, h, &last)
	h.movieQueue.err = fmt.Errorf("connection refused")

	// must not panic or mark anything complete
	h.poller.PollQueues(context.Background())
	assert.Empty(t, h.dispatcher.progressUpdates)
	assert.Empty(t, h.dispatcher.threadMessages)
}
